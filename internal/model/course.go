package model

// Course 课程表 — 对应 courses
//
// 课程持有自身的时间段与地点；所有安排仅按 ID 引用课程，
// 修改课程时间/地点无须改写任何安排记录。
type Course struct {
	CourseID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	Instructor string `gorm:"type:varchar(100);not null;default:''"          json:"instructor"`
	Location   string `gorm:"type:varchar(200);not null;default:''"          json:"location"`
	StartTime  string `gorm:"type:time;not null"                             json:"start_time"` // HH:MM
	EndTime    string `gorm:"type:time;not null"                             json:"end_time"`   // HH:MM
	VersionedModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
