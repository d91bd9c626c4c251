package schedule

import (
	"fmt"
	"sort"
	"time"

	"timenest/backend/internal/model"
)

// ── 发生记录解析器 ──────────────────────────────────────────
//
// 三类来源（周期性安排 / 轮换模板 / 调课记录）各有形状，解析时
// 合并为一条一致的时间线：
//   1. 周期性安排按 有效期+星期+单双周 过滤
//   2. 轮换模板按锚点推算活动周后展开
//   3. 调课记录按 original_plan_id 替换/取消对应发生，
//      无目标的调课作为当日临时插课
// 周期性安排与轮换模板在同一天撞出相同课程时两条都保留——
// 静默合并会掩盖录入错误，这类巧合应当以冲突形式暴露出来。
// ─────────────────────────────────────────────────────────────

const defaultScanWeeks = 54

// Resolver 基于单个快照的只读解析器
type Resolver struct {
	snap      *Snapshot
	scanWeeks int
}

// NewResolver 创建解析器。scanWeeks 为冲突检测的最大扫描周数，
// 传 0 使用默认值。
func NewResolver(snap *Snapshot, scanWeeks int) *Resolver {
	if scanWeeks <= 0 {
		scanWeeks = defaultScanWeeks
	}
	return &Resolver{snap: snap, scanWeeks: scanWeeks}
}

// occurrenceOf 由课程记录构造一条发生记录
func occurrenceOf(day time.Time, course model.Course, kind SourceKind, sourceID string) Occurrence {
	return Occurrence{
		Date:       day,
		CourseID:   course.CourseID,
		CourseName: course.Name,
		Instructor: course.Instructor,
		Location:   course.Location,
		Interval:   TimeInterval{Start: course.StartTime, End: course.EndTime},
		SourceKind: kind,
		SourceID:   sourceID,
	}
}

// ResolveForDate 解析指定日期的全部发生记录，
// 按开始时间排序，同时刻按 SourceID 升序保证结果确定。
// 任何悬空课程引用都会中止整次解析并返回 ErrNotFound。
func (r *Resolver) ResolveForDate(date time.Time) ([]Occurrence, error) {
	day := Midnight(date)
	wd := WeekdayOf(day)
	parity := WeekParityOf(day, r.snap.Anchor())

	// 1. 周期性安排候选
	var candidates []Occurrence
	for _, p := range r.snap.RecurringPlans() {
		if day.Before(Midnight(p.ValidFrom)) || day.After(Midnight(p.ValidTo)) {
			continue
		}
		if p.DayOfWeek != wd || !parityMatches(p.WeekType, parity) {
			continue
		}
		course, err := r.snap.Course(p.CourseID)
		if err != nil {
			return nil, fmt.Errorf("周期性安排 %s: %w", p.PlanID, err)
		}
		candidates = append(candidates, occurrenceOf(day, course, SourceRecurring, p.PlanID))
	}

	// 2. 轮换模板候选
	for _, pat := range r.snap.CyclePatterns() {
		occs, err := r.ResolveCycle(pat, day)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, occs...)
	}

	// 3. 当日调课记录，按目标安排索引
	overrides := r.snap.Overrides(day)
	byTarget := make(map[string]model.Override, len(overrides))
	for _, o := range overrides {
		if o.OriginalPlanID != "" {
			byTarget[o.OriginalPlanID] = o
		}
	}

	// 4. 替换/取消：命中目标的调课覆盖原发生
	applied := make(map[string]bool, len(byTarget))
	result := make([]Occurrence, 0, len(candidates))
	for _, c := range candidates {
		o, ok := byTarget[c.SourceID]
		if !ok {
			result = append(result, c)
			continue
		}
		applied[o.OverrideID] = true
		if o.NewCourseID == nil {
			continue // 当日停课
		}
		course, err := r.snap.Course(*o.NewCourseID)
		if err != nil {
			return nil, fmt.Errorf("调课记录 %s: %w", o.OverrideID, err)
		}
		result = append(result, occurrenceOf(day, course, SourceOverride, o.OverrideID))
	}

	// 5. 未命中目标的调课作为临时插课（取消无目标时无事发生）
	for _, o := range overrides {
		if applied[o.OverrideID] || o.NewCourseID == nil {
			continue
		}
		course, err := r.snap.Course(*o.NewCourseID)
		if err != nil {
			return nil, fmt.Errorf("调课记录 %s: %w", o.OverrideID, err)
		}
		result = append(result, occurrenceOf(day, course, SourceOverride, o.OverrideID))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Interval.Start != result[j].Interval.Start {
			return result[i].Interval.Start < result[j].Interval.Start
		}
		return result[i].SourceID < result[j].SourceID
	})
	return result, nil
}
