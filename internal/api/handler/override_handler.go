package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/service"
	"timenest/backend/pkg/response"
)

// OverrideHandler 调课/停课模块 HTTP 处理器
type OverrideHandler struct {
	overrideSvc service.OverrideService
}

// NewOverrideHandler 创建 OverrideHandler
func NewOverrideHandler(overrideSvc service.OverrideService) *OverrideHandler {
	return &OverrideHandler{overrideSvc: overrideSvc}
}

// ListOverrides 获取调课记录列表
// GET /api/v1/overrides?date=
func (h *OverrideHandler) ListOverrides(c *gin.Context) {
	var req dto.OverrideListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	overrides, err := h.overrideSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, gin.H{"list": overrides})
}

// GetOverride 获取调课记录详情
// GET /api/v1/overrides/:id
func (h *OverrideHandler) GetOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	override, err := h.overrideSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, override)
}

// CreateOverride 创建调课/停课记录
// POST /api/v1/overrides
func (h *OverrideHandler) CreateOverride(c *gin.Context) {
	var req dto.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	override, err := h.overrideSvc.Create(c.Request.Context(), &req, operatorID(c))
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.Created(c, override)
}

// UpdateOverride 更新调课记录
// PUT /api/v1/overrides/:id
func (h *OverrideHandler) UpdateOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.UpdateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	override, err := h.overrideSvc.Update(c.Request.Context(), id, &req, operatorID(c))
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, override)
}

// DeleteOverride 删除调课记录
// DELETE /api/v1/overrides/:id
func (h *OverrideHandler) DeleteOverride(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	if err := h.overrideSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, nil)
}

// SweepOverrides 标记过期调课记录
// POST /api/v1/overrides/sweep
func (h *OverrideHandler) SweepOverrides(c *gin.Context) {
	result, err := h.overrideSvc.SweepConsumed(c.Request.Context(), time.Now())
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, result)
}

// handleOverrideError 调课模块业务错误 → HTTP 响应
func (h *OverrideHandler) handleOverrideError(c *gin.Context, err error) {
	var cerr *service.ConflictError
	switch {
	case errors.As(err, &cerr):
		response.Conflict(c, 50004, err.Error(), gin.H{"conflicts": cerr.Conflicts})
	case errors.Is(err, service.ErrOverrideNotFound):
		response.NotFound(c, 50001, err.Error())
	case errors.Is(err, service.ErrOverrideDateInvalid),
		errors.Is(err, service.ErrOverrideEmpty):
		response.BadRequest(c, 50002, err.Error())
	case errors.Is(err, service.ErrOverrideConflicted):
		response.Conflict(c, 50003, err.Error(), nil)
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrNoActiveTerm):
		response.BadRequest(c, 60002, err.Error())
	default:
		response.InternalError(c)
	}
}
