package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Name       string `json:"name"       binding:"required,min=1,max=100"`
	Instructor string `json:"instructor" binding:"omitempty,max=50"`
	Location   string `json:"location"   binding:"omitempty,max=100"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time"   binding:"required"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=1,max=100"`
	Instructor *string `json:"instructor" binding:"omitempty,max=50"`
	Location   *string `json:"location"   binding:"omitempty,max=100"`
	StartTime  *string `json:"start_time" binding:"omitempty"`
	EndTime    *string `json:"end_time"   binding:"omitempty"`
}

// CourseResponse 课程响应
type CourseResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Instructor string `json:"instructor,omitempty"`
	Location   string `json:"location,omitempty"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}
