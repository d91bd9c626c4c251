package dto

// ── 调课/停课模块 DTO ──

// CreateOverrideRequest 创建调课记录请求
//
// new_course_id 为空表示当日停课；original_plan_id 为空表示无目标的临时插课。
type CreateOverrideRequest struct {
	OriginalPlanID string  `json:"original_plan_id" binding:"omitempty,max=120"`
	NewCourseID    *string `json:"new_course_id"    binding:"omitempty,uuid"`
	Date           string  `json:"date"             binding:"required"` // YYYY-MM-DD
	Force          bool    `json:"force"`
}

// UpdateOverrideRequest 更新调课记录请求
type UpdateOverrideRequest struct {
	NewCourseID *string `json:"new_course_id" binding:"omitempty,uuid"`
	Date        *string `json:"date"          binding:"omitempty"`
	Version     int     `json:"version"       binding:"required,min=1"`
	Force       bool    `json:"force"`
}

// OverrideResponse 调课记录响应
type OverrideResponse struct {
	ID             string          `json:"id"`
	OriginalPlanID string          `json:"original_plan_id,omitempty"`
	NewCourseID    *string         `json:"new_course_id,omitempty"`
	NewCourse      *CourseResponse `json:"new_course,omitempty"`
	Date           string          `json:"date"`
	Consumed       bool            `json:"consumed"`
	Version        int             `json:"version"`
}

// OverrideListRequest 调课记录列表查询参数
type OverrideListRequest struct {
	Date string `form:"date" binding:"omitempty"` // YYYY-MM-DD，按日期过滤
}

// SweepOverridesResponse 过期调课记录清理结果
type SweepOverridesResponse struct {
	MarkedCount int `json:"marked_count"`
}
