package dto

// ── 学期模块 DTO ──

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	Name       string `json:"name"        binding:"required,min=1,max=100"`
	AnchorDate string `json:"anchor_date" binding:"required"` // YYYY-MM-DD
	IsActive   bool   `json:"is_active"`
}

// UpdateTermRequest 更新学期请求
type UpdateTermRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=1,max=100"`
	AnchorDate *string `json:"anchor_date" binding:"omitempty"`
	IsActive   *bool   `json:"is_active"`
}

// TermResponse 学期响应
type TermResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AnchorDate string `json:"anchor_date"`
	IsActive   bool   `json:"is_active"`
}
