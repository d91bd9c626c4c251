package schedule

import (
	"fmt"
	"time"
)

// WeekParity 单双周类型（沿用持久层的 week_type 取值）
type WeekParity string

const (
	ParityOdd  WeekParity = "odd"
	ParityEven WeekParity = "even"
	ParityAll  WeekParity = "all"
)

// SourceKind 发生记录的来源种类（封闭枚举，解析逻辑穷举匹配）
type SourceKind string

const (
	SourceRecurring SourceKind = "recurring"
	SourceCycle     SourceKind = "cycle"
	SourceOverride  SourceKind = "override"
)

// TimeInterval 一天内的时间段，分钟精度，"HH:MM" 形式。
// 零填充格式下字典序与时间序一致，可直接用字符串比较。
type TimeInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate 校验格式与起止顺序
func (i TimeInterval) Validate() error {
	for _, v := range []string{i.Start, i.End} {
		if _, err := time.Parse("15:04", v); err != nil {
			return fmt.Errorf("时间格式必须为 HH:MM, 实际 %q: %w", v, ErrValidation)
		}
	}
	if i.Start >= i.End {
		return fmt.Errorf("时间段起始必须早于结束 (%s >= %s): %w", i.Start, i.End, ErrValidation)
	}
	return nil
}

// Overlaps 半开区间重叠判定：首尾相接不算重叠
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Occurrence 某个具体日期上一次课程发生（解析输出，不持久化，逐次重算）
type Occurrence struct {
	Date       time.Time    `json:"date"`
	CourseID   string       `json:"course_id"`
	CourseName string       `json:"course_name"`
	Instructor string       `json:"instructor"`
	Location   string       `json:"location"`
	Interval   TimeInterval `json:"interval"`
	SourceKind SourceKind   `json:"source_kind"`
	SourceID   string       `json:"source_id"`
}

// ConflictReason 冲突原因标签
type ConflictReason string

const (
	ReasonTeacher  ConflictReason = "time_overlap_teacher"
	ReasonLocation ConflictReason = "time_overlap_location"
	ReasonBoth     ConflictReason = "time_overlap_both"
)

// ConflictReport 单条冲突报告：与谁、在哪天、因为什么
type ConflictReport struct {
	Date       time.Time      `json:"date"`
	SourceID   string         `json:"source_id"`
	SourceKind SourceKind     `json:"source_kind"`
	CourseID   string         `json:"course_id"`
	CourseName string         `json:"course_name"`
	Interval   TimeInterval   `json:"interval"`
	Reason     ConflictReason `json:"reason"`
}

// Candidate 待校验的候选安排。
// Date 非空时视为单日候选（调课场景），忽略周期字段；
// 否则按 DayOfWeek+WeekType 在 [ValidFrom, ValidTo] 内展开。
// ExcludeIDs 标识正在编辑的既有记录，避免新版本与旧版本自我冲突；
// 调课编辑场景下既有的安排发生与调课发生都需要排除，故为列表。
type Candidate struct {
	CourseID   string
	Instructor string
	Location   string
	Interval   TimeInterval
	DayOfWeek  int
	WeekType   string
	ValidFrom  time.Time
	ValidTo    time.Time
	Date       *time.Time
	ExcludeIDs []string
}

// excludes 判断来源 ID 是否在排除列表中
func (c Candidate) excludes(sourceID string) bool {
	for _, id := range c.ExcludeIDs {
		if id != "" && id == sourceID {
			return true
		}
	}
	return false
}
