package schedule

import (
	"fmt"
	"time"

	"timenest/backend/internal/model"
)

// Snapshot 底层存储数据的不可变视图。
//
// 引擎不直接读库：调用方（Service 层）在一次解析/校验开始前取出
// 一致的数据快照传入，避免解析过程中数据被写入导致隐性脏读。
// 构建完成后快照只读，可被多个并发解析共用。
type Snapshot struct {
	anchor    time.Time
	courses   map[string]model.Course
	plans     []model.RecurringPlan
	patterns  []model.CyclePattern
	overrides map[string][]model.Override // key: "2006-01-02"
}

const dateKeyLayout = "2006-01-02"

// NewSnapshot 构建快照。anchor 为学期单双周锚点日期。
func NewSnapshot(
	anchor time.Time,
	courses []model.Course,
	plans []model.RecurringPlan,
	patterns []model.CyclePattern,
	overrides []model.Override,
) *Snapshot {
	courseMap := make(map[string]model.Course, len(courses))
	for _, c := range courses {
		courseMap[c.CourseID] = c
	}
	overrideMap := make(map[string][]model.Override)
	for _, o := range overrides {
		key := Midnight(o.Date).Format(dateKeyLayout)
		overrideMap[key] = append(overrideMap[key], o)
	}
	return &Snapshot{
		anchor:    Midnight(anchor),
		courses:   courseMap,
		plans:     plans,
		patterns:  patterns,
		overrides: overrideMap,
	}
}

// Anchor 学期单双周锚点
func (s *Snapshot) Anchor() time.Time { return s.anchor }

// Course 按 ID 查课程；悬空引用返回 ErrNotFound
func (s *Snapshot) Course(id string) (model.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return model.Course{}, fmt.Errorf("课程 %s: %w", id, ErrNotFound)
	}
	return c, nil
}

// RecurringPlans 全部周期性安排
func (s *Snapshot) RecurringPlans() []model.RecurringPlan { return s.plans }

// CyclePatterns 全部轮换模板
func (s *Snapshot) CyclePatterns() []model.CyclePattern { return s.patterns }

// Overrides 指定日期的全部调课记录
func (s *Snapshot) Overrides(date time.Time) []model.Override {
	return s.overrides[Midnight(date).Format(dateKeyLayout)]
}
