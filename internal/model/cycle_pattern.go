package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CycleEntry 轮换模板中的单条安排：第 weekIndex 周的某个星期几上某门课
type CycleEntry struct {
	WeekIndex int    `json:"week_index"` // 0 .. cycle_length-1
	DayOfWeek int    `json:"day_of_week"`
	CourseID  string `json:"course_id"`
}

// CycleEntryList 对应 PostgreSQL JSONB 列，实现 GORM Scanner/Valuer 接口
type CycleEntryList []CycleEntry

// Scan 将 JSONB 字节解析为 []CycleEntry
func (l *CycleEntryList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("CycleEntryList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(data, l)
}

// Value 将 []CycleEntry 序列化为 JSONB
func (l CycleEntryList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("CycleEntryList.Value: %w", err)
	}
	return string(data), nil
}

// CyclePattern 多周轮换模板表 — 对应 cycle_patterns
//
// 以 StartDate 为锚点、CycleLength 周为一轮循环的课程模板。
// 日期 D 的活动周序号为 floor(daysBetween(StartDate, D) / 7) mod CycleLength。
type CyclePattern struct {
	PatternID   string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pattern_id"`
	Name        string         `gorm:"type:varchar(100);not null"                     json:"name"`
	CycleLength int            `gorm:"type:smallint;not null"                         json:"cycle_length"`
	StartDate   time.Time      `gorm:"type:date;not null"                             json:"start_date"`
	Entries     CycleEntryList `gorm:"type:jsonb;not null;default:'[]'"               json:"entries"`
	VersionedModel
}

// TableName 指定表名
func (CyclePattern) TableName() string { return "cycle_patterns" }
