package dto

// ── 循环模式模块 DTO ──

// CycleEntryPayload 循环模式中的单个条目
type CycleEntryPayload struct {
	WeekIndex int    `json:"week_index" binding:"min=0"`
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	CourseID  string `json:"course_id"  binding:"required,uuid"`
}

// CreateCyclePatternRequest 创建循环模式请求
type CreateCyclePatternRequest struct {
	Name        string              `json:"name"         binding:"required,min=1,max=100"`
	CycleLength int                 `json:"cycle_length" binding:"required,min=1"`
	StartDate   string              `json:"start_date"   binding:"required"` // YYYY-MM-DD
	Entries     []CycleEntryPayload `json:"entries"      binding:"required,min=1,dive"`
}

// UpdateCyclePatternRequest 更新循环模式请求
type UpdateCyclePatternRequest struct {
	Name        *string             `json:"name"         binding:"omitempty,min=1,max=100"`
	CycleLength *int                `json:"cycle_length" binding:"omitempty,min=1"`
	StartDate   *string             `json:"start_date"   binding:"omitempty"`
	Entries     []CycleEntryPayload `json:"entries"      binding:"omitempty,min=1,dive"`
}

// CyclePatternResponse 循环模式响应
type CyclePatternResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	CycleLength int                 `json:"cycle_length"`
	StartDate   string              `json:"start_date"`
	Entries     []CycleEntryPayload `json:"entries"`
}

// CommitCycleRequest 将循环模式物化为周期性安排的请求
type CommitCycleRequest struct {
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	WeekCount int    `json:"week_count" binding:"required,min=1"`
}

// CommitCycleResponse 物化结果响应
type CommitCycleResponse struct {
	CreatedCount int            `json:"created_count"`
	Plans        []PlanResponse `json:"plans"`
}
