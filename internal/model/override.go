package model

import "time"

// Override 调课/停课记录表 — 对应 overrides
//
// 针对单个具体日期的例外：替换（NewCourseID 非空）或取消（NewCourseID 为空）
// OriginalPlanID 指向的安排在当日的发生。OriginalPlanID 为空串时表示
// 无目标的临时插课。同一 (original_plan_id, date) 至多一条记录。
type Override struct {
	OverrideID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"override_id"`
	OriginalPlanID string    `gorm:"type:varchar(120);not null;default:''"          json:"original_plan_id"`
	NewCourseID    *string   `gorm:"type:uuid"                                      json:"new_course_id,omitempty"` // nil = 当日停课
	Date           time.Time `gorm:"type:date;not null"                             json:"date"`
	Consumed       bool      `gorm:"not null;default:false"                         json:"consumed"` // 仅作历史标记，不影响解析
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	NewCourse *Course `gorm:"foreignKey:NewCourseID;references:CourseID" json:"new_course,omitempty"`
}

// TableName 指定表名
func (Override) TableName() string { return "overrides" }
