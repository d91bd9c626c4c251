package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/service"
	"timenest/backend/pkg/response"
)

// PlanHandler 周期性安排模块 HTTP 处理器
type PlanHandler struct {
	planSvc service.PlanService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc}
}

// ListPlans 获取安排列表
// GET /api/v1/plans?course_id=
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var req dto.PlanListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	plans, err := h.planSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": plans})
}

// GetPlan 获取安排详情
// GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "安排ID不能为空")
		return
	}

	plan, err := h.planSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// CreatePlan 创建安排
// POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	plan, err := h.planSvc.Create(c.Request.Context(), &req, operatorID(c))
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.Created(c, plan)
}

// UpdatePlan 更新安排
// PUT /api/v1/plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "安排ID不能为空")
		return
	}

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	plan, err := h.planSvc.Update(c.Request.Context(), id, &req, operatorID(c))
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// DeletePlan 删除安排
// DELETE /api/v1/plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "安排ID不能为空")
		return
	}

	if err := h.planSvc.Delete(c.Request.Context(), id, operatorID(c)); err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePlanError 安排模块业务错误 → HTTP 响应。
// 冲突错误以 409 返回并携带冲突明细，客户端可提示用户后携带 force 重试。
func (h *PlanHandler) handlePlanError(c *gin.Context, err error) {
	var cerr *service.ConflictError
	switch {
	case errors.As(err, &cerr):
		response.Conflict(c, 30003, err.Error(), gin.H{"conflicts": cerr.Conflicts})
	case errors.Is(err, service.ErrPlanNotFound):
		response.NotFound(c, 30001, err.Error())
	case errors.Is(err, service.ErrPlanDateInvalid):
		response.BadRequest(c, 30002, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrNoActiveTerm):
		response.BadRequest(c, 60002, err.Error())
	default:
		response.InternalError(c)
	}
}
