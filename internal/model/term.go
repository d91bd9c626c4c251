package model

import "time"

// Term 学期表 — 对应 terms
//
// AnchorDate 是单双周划分的基准日期：包含锚点的那一周为第 0 周（双周）。
type Term struct {
	TermID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"term_id"`
	Name       string    `gorm:"type:varchar(100);not null"                     json:"name"`
	AnchorDate time.Time `gorm:"type:date;not null"                             json:"anchor_date"`
	IsActive   bool      `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Term) TableName() string { return "terms" }
