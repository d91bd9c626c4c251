package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/service"
	"timenest/backend/pkg/response"
)

// TermHandler 学期模块 HTTP 处理器
type TermHandler struct {
	termSvc service.TermService
}

// NewTermHandler 创建 TermHandler
func NewTermHandler(termSvc service.TermService) *TermHandler {
	return &TermHandler{termSvc: termSvc}
}

// ListTerms 获取学期列表
// GET /api/v1/terms
func (h *TermHandler) ListTerms(c *gin.Context) {
	terms, err := h.termSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": terms})
}

// GetActiveTerm 获取当前激活学期
// GET /api/v1/terms/active
func (h *TermHandler) GetActiveTerm(c *gin.Context) {
	term, err := h.termSvc.GetActive(c.Request.Context())
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// GetTerm 获取学期详情
// GET /api/v1/terms/:id
func (h *TermHandler) GetTerm(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	term, err := h.termSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// CreateTerm 创建学期
// POST /api/v1/terms
func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	term, err := h.termSvc.Create(c.Request.Context(), &req, operatorID(c))
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.Created(c, term)
}

// UpdateTerm 更新学期
// PUT /api/v1/terms/:id
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	term, err := h.termSvc.Update(c.Request.Context(), id, &req, operatorID(c))
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, term)
}

// ActivateTerm 激活学期（设为单双周锚点来源）
// PUT /api/v1/terms/:id/activate
func (h *TermHandler) ActivateTerm(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	if err := h.termSvc.Activate(c.Request.Context(), id, operatorID(c)); err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteTerm 删除学期
// DELETE /api/v1/terms/:id
func (h *TermHandler) DeleteTerm(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	if err := h.termSvc.Delete(c.Request.Context(), id, operatorID(c)); err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleTermError 学期模块业务错误 → HTTP 响应
func (h *TermHandler) handleTermError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 60001, err.Error())
	case errors.Is(err, service.ErrNoActiveTerm):
		response.NotFound(c, 60002, err.Error())
	case errors.Is(err, service.ErrTermDateInvalid):
		response.BadRequest(c, 60003, err.Error())
	default:
		response.InternalError(c)
	}
}
