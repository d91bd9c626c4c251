package dto

// ── 周期性安排模块 DTO ──

// CreatePlanRequest 创建周期性安排请求
type CreatePlanRequest struct {
	CourseID  string `json:"course_id"  binding:"required,uuid"`
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	WeekType  string `json:"week_type"  binding:"omitempty,oneof=all odd even"`
	ValidFrom string `json:"valid_from" binding:"required"` // YYYY-MM-DD
	ValidTo   string `json:"valid_to"   binding:"required"` // YYYY-MM-DD
	// Force 为 true 时忽略冲突检测结果强制创建
	Force bool `json:"force"`
}

// UpdatePlanRequest 更新周期性安排请求
type UpdatePlanRequest struct {
	CourseID  *string `json:"course_id"  binding:"omitempty,uuid"`
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=1,max=7"`
	WeekType  *string `json:"week_type"  binding:"omitempty,oneof=all odd even"`
	ValidFrom *string `json:"valid_from" binding:"omitempty"`
	ValidTo   *string `json:"valid_to"   binding:"omitempty"`
	Force     bool    `json:"force"`
}

// PlanResponse 周期性安排响应
type PlanResponse struct {
	ID        string          `json:"id"`
	CourseID  string          `json:"course_id"`
	Course    *CourseResponse `json:"course,omitempty"`
	DayOfWeek int             `json:"day_of_week"`
	WeekType  string          `json:"week_type"`
	ValidFrom string          `json:"valid_from"`
	ValidTo   string          `json:"valid_to"`
}

// PlanListRequest 周期性安排列表查询参数
type PlanListRequest struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
}
