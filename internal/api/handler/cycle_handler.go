package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/service"
	"timenest/backend/pkg/response"
)

// CycleHandler 轮换模板模块 HTTP 处理器
type CycleHandler struct {
	cycleSvc service.CycleService
}

// NewCycleHandler 创建 CycleHandler
func NewCycleHandler(cycleSvc service.CycleService) *CycleHandler {
	return &CycleHandler{cycleSvc: cycleSvc}
}

// ListPatterns 获取模板列表
// GET /api/v1/cycle-patterns
func (h *CycleHandler) ListPatterns(c *gin.Context) {
	patterns, err := h.cycleSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": patterns})
}

// GetPattern 获取模板详情
// GET /api/v1/cycle-patterns/:id
func (h *CycleHandler) GetPattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	pattern, err := h.cycleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, pattern)
}

// CreatePattern 创建模板
// POST /api/v1/cycle-patterns
func (h *CycleHandler) CreatePattern(c *gin.Context) {
	var req dto.CreateCyclePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	pattern, err := h.cycleSvc.Create(c.Request.Context(), &req, operatorID(c))
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.Created(c, pattern)
}

// UpdatePattern 更新模板
// PUT /api/v1/cycle-patterns/:id
func (h *CycleHandler) UpdatePattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	var req dto.UpdateCyclePatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	pattern, err := h.cycleSvc.Update(c.Request.Context(), id, &req, operatorID(c))
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, pattern)
}

// DeletePattern 删除模板
// DELETE /api/v1/cycle-patterns/:id
func (h *CycleHandler) DeletePattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	if err := h.cycleSvc.Delete(c.Request.Context(), id, operatorID(c)); err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.OK(c, nil)
}

// CommitPattern 将模板物化为周期性安排
// POST /api/v1/cycle-patterns/:id/commit
func (h *CycleHandler) CommitPattern(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "模板ID不能为空")
		return
	}

	var req dto.CommitCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.cycleSvc.Commit(c.Request.Context(), id, &req, operatorID(c))
	if err != nil {
		h.handleCycleError(c, err)
		return
	}

	response.Created(c, result)
}

// handleCycleError 轮换模板模块业务错误 → HTTP 响应
func (h *CycleHandler) handleCycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPatternNotFound):
		response.NotFound(c, 40001, err.Error())
	case errors.Is(err, service.ErrPatternInvalid),
		errors.Is(err, service.ErrPatternDateInvalid):
		response.BadRequest(c, 40002, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, err.Error())
	default:
		response.InternalError(c)
	}
}
