package dto

import "timenest/backend/internal/schedule"

// ── 课表解析 DTO ──

// DayScheduleResponse 单日课表响应
type DayScheduleResponse struct {
	Date        string                `json:"date"` // YYYY-MM-DD
	DayOfWeek   int                   `json:"day_of_week"`
	WeekParity  string                `json:"week_parity"`
	Occurrences []schedule.Occurrence `json:"occurrences"`
}

// WeekScheduleResponse 整周课表响应（周一至周日）
type WeekScheduleResponse struct {
	WeekStart string                `json:"week_start"` // 周一日期
	Days      []DayScheduleResponse `json:"days"`
}

// ── 冲突检测 DTO ──

// CheckConflictRequest 冲突检测请求。
// date 非空时为单日候选，否则按 day_of_week + week_type 在有效期内展开。
type CheckConflictRequest struct {
	CourseID  string `json:"course_id"   binding:"omitempty,uuid"`
	StartTime string `json:"start_time"  binding:"required"`
	EndTime   string `json:"end_time"    binding:"required"`
	DayOfWeek int    `json:"day_of_week" binding:"omitempty,min=1,max=7"`
	WeekType  string `json:"week_type"   binding:"omitempty,oneof=all odd even"`
	ValidFrom string `json:"valid_from"  binding:"omitempty"` // YYYY-MM-DD
	ValidTo   string `json:"valid_to"    binding:"omitempty"` // YYYY-MM-DD
	Date      string `json:"date"        binding:"omitempty"` // YYYY-MM-DD
	ExcludeID string `json:"exclude_id"  binding:"omitempty"`
}

// CheckConflictResponse 冲突检测响应
type CheckConflictResponse struct {
	HasConflict bool                      `json:"has_conflict"`
	Conflicts   []schedule.ConflictReport `json:"conflicts"`
}

// ── ICS 导入导出 DTO ──

// ImportICSResponse ICS 导入响应
type ImportICSResponse struct {
	ImportedCourses int `json:"imported_courses"`
	ImportedPlans   int `json:"imported_plans"`
}

// ExportICSRequest ICS 导出查询参数
type ExportICSRequest struct {
	From string `form:"from" binding:"required"` // YYYY-MM-DD
	To   string `form:"to"   binding:"required"` // YYYY-MM-DD
}
