package model

import "time"

// RecurringPlan 周期性课程安排表 — 对应 recurring_plans
//
// 表示"该课程在有效期内每个匹配 星期几+单双周 的日期发生一次"。
// WeekType 以学期锚点日期为基准划分单双周：all | odd | even。
type RecurringPlan struct {
	PlanID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"plan_id"`
	CourseID  string    `gorm:"type:uuid;not null"                             json:"course_id"`
	DayOfWeek int       `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	WeekType  string    `gorm:"type:varchar(10);not null;default:'all'"        json:"week_type"`   // all | odd | even
	ValidFrom time.Time `gorm:"type:date;not null"                             json:"valid_from"`
	ValidTo   time.Time `gorm:"type:date;not null"                             json:"valid_to"`
	VersionedModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (RecurringPlan) TableName() string { return "recurring_plans" }
