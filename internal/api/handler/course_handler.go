package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/service"
	"timenest/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 获取课程列表
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GetCourse 获取课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, operatorID(c))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), id, &req, operatorID(c))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), id, operatorID(c)); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleCourseError 课程模块业务错误 → HTTP 响应
func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrCourseTimeInvalid):
		response.BadRequest(c, 20002, err.Error())
	case errors.Is(err, service.ErrCourseReferenced):
		response.Conflict(c, 20003, err.Error(), nil)
	default:
		response.InternalError(c)
	}
}
