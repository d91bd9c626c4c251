package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/service"
	"timenest/backend/pkg/response"
)

// TimetableHandler 课表解析模块 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// GetDay 获取单日课表
// GET /api/v1/timetable/day/:date
func (h *TimetableHandler) GetDay(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		response.BadRequest(c, 10001, "日期不能为空")
		return
	}

	day, err := h.timetableSvc.GetDay(c.Request.Context(), date)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, day)
}

// GetWeek 获取整周课表（返回 date 所在的周一至周日）
// GET /api/v1/timetable/week/:date
func (h *TimetableHandler) GetWeek(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		response.BadRequest(c, 10001, "日期不能为空")
		return
	}

	week, err := h.timetableSvc.GetWeek(c.Request.Context(), date)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, week)
}

// CheckConflicts 冲突检测
// POST /api/v1/timetable/check-conflicts
func (h *TimetableHandler) CheckConflicts(c *gin.Context) {
	var req dto.CheckConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Date == "" && (req.ValidFrom == "" || req.ValidTo == "" || req.DayOfWeek == 0) {
		response.BadRequest(c, 10001, "必须指定 date 或 day_of_week + valid_from + valid_to")
		return
	}

	result, err := h.timetableSvc.CheckConflicts(c.Request.Context(), &req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, result)
}

// ImportICS 导入 ICS 文件
// POST /api/v1/timetable/import-ics  （请求体为 ICS 文本）
func (h *TimetableHandler) ImportICS(c *gin.Context) {
	result, err := h.timetableSvc.ImportICS(c.Request.Context(), c.Request.Body, operatorID(c))
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.Created(c, result)
}

// ExportICS 导出日期范围内的课表为 ICS
// GET /api/v1/timetable/export-ics?from=&to=
func (h *TimetableHandler) ExportICS(c *gin.Context) {
	var req dto.ExportICSRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	data, filename, err := h.timetableSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(200, "text/calendar; charset=utf-8", data)
}

// ExportWeekExcel 导出整周课表为 Excel
// GET /api/v1/timetable/export-excel/:date
func (h *TimetableHandler) ExportWeekExcel(c *gin.Context) {
	date := c.Param("date")
	if date == "" {
		response.BadRequest(c, 10001, "日期不能为空")
		return
	}

	buf, filename, err := h.timetableSvc.ExportWeekExcel(c.Request.Context(), date)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	// 中文文件名需要 RFC 5987 编码
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleTimetableError 课表模块业务错误 → HTTP 响应
func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableDateInvalid),
		errors.Is(err, service.ErrTimetableRangeInvalid),
		errors.Is(err, service.ErrImportNoEvents):
		response.BadRequest(c, 70001, err.Error())
	case errors.Is(err, service.ErrNoActiveTerm):
		response.BadRequest(c, 60002, err.Error())
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, err.Error())
	default:
		response.InternalError(c)
	}
}
