package schedule

import (
	"errors"
	"testing"
	"time"

	"timenest/backend/internal/model"
)

// ── 测试固件 ──

var testCourses = []model.Course{
	{CourseID: "math101", Name: "高等数学", Instructor: "张教授", Location: "A101", StartTime: "08:00", EndTime: "09:30"},
	{CourseID: "eng101", Name: "大学英语", Instructor: "李老师", Location: "B202", StartTime: "10:00", EndTime: "11:30"},
	{CourseID: "phys201", Name: "大学物理", Instructor: "王老师", Location: "C303", StartTime: "14:00", EndTime: "15:30"},
}

func strPtr(s string) *string { return &s }

func newTestResolver(plans []model.RecurringPlan, patterns []model.CyclePattern, overrides []model.Override) *Resolver {
	snap := NewSnapshot(date(2024, 9, 2), testCourses, plans, patterns, overrides)
	return NewResolver(snap, 0)
}

// ── 周期性安排解析 ──

func TestResolveForDate_RecurringBasic(t *testing.T) {
	plans := []model.RecurringPlan{
		{PlanID: "plan-1", CourseID: "math101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
	}
	r := newTestResolver(plans, nil, nil)

	// 有效期内的周一命中
	occs, err := r.ResolveForDate(date(2024, 10, 14))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("期望 1 条发生记录, 实际 %d", len(occs))
	}
	if occs[0].CourseID != "math101" || occs[0].SourceKind != SourceRecurring || occs[0].SourceID != "plan-1" {
		t.Errorf("发生记录内容不符: %+v", occs[0])
	}
	if occs[0].Interval.Start != "08:00" || occs[0].Location != "A101" {
		t.Errorf("时间/地点应来自课程记录: %+v", occs[0])
	}

	// 周二不命中
	occs, err = r.ResolveForDate(date(2024, 10, 15))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("周二期望 0 条记录, 实际 %d", len(occs))
	}
}

func TestResolveForDate_ValidityBoundaries(t *testing.T) {
	// 有效期首尾都是周一：边界日期必须包含（闭区间）
	plans := []model.RecurringPlan{
		{PlanID: "plan-1", CourseID: "math101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 2), ValidTo: date(2024, 9, 16)},
	}
	r := newTestResolver(plans, nil, nil)

	for _, d := range []time.Time{date(2024, 9, 2), date(2024, 9, 9), date(2024, 9, 16)} {
		occs, err := r.ResolveForDate(d)
		if err != nil {
			t.Fatalf("ResolveForDate(%s) 失败: %v", d.Format("2006-01-02"), err)
		}
		if len(occs) != 1 {
			t.Errorf("%s 期望命中, 实际 %d 条", d.Format("2006-01-02"), len(occs))
		}
	}

	// 有效期外不命中
	for _, d := range []time.Time{date(2024, 8, 26), date(2024, 9, 23)} {
		occs, _ := r.ResolveForDate(d)
		if len(occs) != 0 {
			t.Errorf("%s 在有效期外期望 0 条, 实际 %d", d.Format("2006-01-02"), len(occs))
		}
	}
}

func TestResolveForDate_WeekParity(t *testing.T) {
	// 锚点 2024-09-02：第 0 周为双周
	plans := []model.RecurringPlan{
		{PlanID: "plan-even", CourseID: "math101", DayOfWeek: 1, WeekType: "even",
			ValidFrom: date(2024, 9, 2), ValidTo: date(2024, 12, 31)},
		{PlanID: "plan-odd", CourseID: "eng101", DayOfWeek: 1, WeekType: "odd",
			ValidFrom: date(2024, 9, 2), ValidTo: date(2024, 12, 31)},
	}
	r := newTestResolver(plans, nil, nil)

	cases := []struct {
		d    time.Time
		want string
	}{
		{date(2024, 9, 2), "math101"},  // 第0周 双周
		{date(2024, 9, 9), "eng101"},   // 第1周 单周
		{date(2024, 9, 16), "math101"}, // 第2周 双周
		{date(2024, 9, 23), "eng101"},
	}
	for _, c := range cases {
		occs, err := r.ResolveForDate(c.d)
		if err != nil {
			t.Fatalf("ResolveForDate(%s) 失败: %v", c.d.Format("2006-01-02"), err)
		}
		if len(occs) != 1 {
			t.Fatalf("%s 期望恰好 1 条记录, 实际 %d", c.d.Format("2006-01-02"), len(occs))
		}
		if occs[0].CourseID != c.want {
			t.Errorf("%s 期望 %s, 实际 %s", c.d.Format("2006-01-02"), c.want, occs[0].CourseID)
		}
	}
}

// ── 轮换模板解析 ──

func TestResolveCycle_Alternation(t *testing.T) {
	// 两周轮换：第0周周一高数, 第1周周一英语, 锚点 2024-09-02(周一)
	pattern := model.CyclePattern{
		PatternID: "pat-1", Name: "双周轮换", CycleLength: 2, StartDate: date(2024, 9, 2),
		Entries: model.CycleEntryList{
			{WeekIndex: 0, DayOfWeek: 1, CourseID: "math101"},
			{WeekIndex: 1, DayOfWeek: 1, CourseID: "eng101"},
		},
	}
	r := newTestResolver(nil, []model.CyclePattern{pattern}, nil)

	cases := []struct {
		d    time.Time
		want string
	}{
		{date(2024, 9, 2), "math101"},
		{date(2024, 9, 9), "eng101"},
		{date(2024, 9, 16), "math101"},
	}
	for _, c := range cases {
		occs, err := r.ResolveForDate(c.d)
		if err != nil {
			t.Fatalf("ResolveForDate(%s) 失败: %v", c.d.Format("2006-01-02"), err)
		}
		if len(occs) != 1 {
			t.Fatalf("%s 期望 1 条记录, 实际 %d", c.d.Format("2006-01-02"), len(occs))
		}
		if occs[0].CourseID != c.want || occs[0].SourceKind != SourceCycle {
			t.Errorf("%s 期望轮换来源 %s, 实际 %+v", c.d.Format("2006-01-02"), c.want, occs[0])
		}
	}
}

func TestResolveCycle_BeforeAnchorIsEmpty(t *testing.T) {
	pattern := model.CyclePattern{
		PatternID: "pat-1", CycleLength: 2, StartDate: date(2024, 9, 2),
		Entries: model.CycleEntryList{{WeekIndex: 0, DayOfWeek: 1, CourseID: "math101"}},
	}
	r := newTestResolver(nil, []model.CyclePattern{pattern}, nil)

	// 早于锚点：空列表而非错误
	occs, err := r.ResolveForDate(date(2024, 8, 26))
	if err != nil {
		t.Fatalf("早于锚点不应报错: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("早于锚点期望 0 条记录, 实际 %d", len(occs))
	}
}

func TestResolveCycle_DanglingCourse(t *testing.T) {
	pattern := model.CyclePattern{
		PatternID: "pat-1", CycleLength: 1, StartDate: date(2024, 9, 2),
		Entries: model.CycleEntryList{{WeekIndex: 0, DayOfWeek: 1, CourseID: "ghost"}},
	}
	r := newTestResolver(nil, []model.CyclePattern{pattern}, nil)

	_, err := r.ResolveForDate(date(2024, 9, 2))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("悬空课程引用期望 ErrNotFound, 实际 %v", err)
	}
}

// ── 调课记录优先级 ──

func TestResolveForDate_OverrideCancellation(t *testing.T) {
	plans := []model.RecurringPlan{
		{PlanID: "plan-1", CourseID: "math101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
	}
	overrides := []model.Override{
		{OverrideID: "ov-1", OriginalPlanID: "plan-1", NewCourseID: nil, Date: date(2024, 10, 14)},
	}
	r := newTestResolver(plans, nil, overrides)

	// 停课当日不出现
	occs, err := r.ResolveForDate(date(2024, 10, 14))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("停课当日期望 0 条记录, 实际 %d: %+v", len(occs), occs)
	}

	// 其他日期不受影响
	occs, err = r.ResolveForDate(date(2024, 10, 21))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 1 || occs[0].CourseID != "math101" {
		t.Errorf("停课不得影响其他日期: %+v", occs)
	}
}

func TestResolveForDate_OverrideReplacement(t *testing.T) {
	plans := []model.RecurringPlan{
		{PlanID: "plan-1", CourseID: "math101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
	}
	overrides := []model.Override{
		{OverrideID: "ov-1", OriginalPlanID: "plan-1", NewCourseID: strPtr("eng101"), Date: date(2024, 10, 14)},
	}
	r := newTestResolver(plans, nil, overrides)

	occs, err := r.ResolveForDate(date(2024, 10, 14))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("期望 1 条记录, 实际 %d", len(occs))
	}
	if occs[0].CourseID != "eng101" || occs[0].SourceKind != SourceOverride || occs[0].SourceID != "ov-1" {
		t.Errorf("替换后的发生记录不符: %+v", occs[0])
	}
}

func TestResolveForDate_OverrideAdHocInsertion(t *testing.T) {
	// 没有命中任何目标的调课记录视为当日临时插课
	overrides := []model.Override{
		{OverrideID: "ov-1", OriginalPlanID: "plan-gone", NewCourseID: strPtr("phys201"), Date: date(2024, 10, 14)},
	}
	r := newTestResolver(nil, nil, overrides)

	occs, err := r.ResolveForDate(date(2024, 10, 14))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 1 || occs[0].CourseID != "phys201" || occs[0].SourceKind != SourceOverride {
		t.Errorf("临时插课未生效: %+v", occs)
	}

	// 无目标的停课什么都不发生
	r = newTestResolver(nil, nil, []model.Override{
		{OverrideID: "ov-2", OriginalPlanID: "plan-gone", NewCourseID: nil, Date: date(2024, 10, 14)},
	})
	occs, err = r.ResolveForDate(date(2024, 10, 14))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("无目标停课期望 0 条记录, 实际 %d", len(occs))
	}
}

// ── 合并语义 ──

func TestResolveForDate_CoincidingSourcesKeptDistinct(t *testing.T) {
	// 周期性安排与轮换模板在同一天产出同一门课：两条都保留
	plans := []model.RecurringPlan{
		{PlanID: "plan-1", CourseID: "math101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
	}
	pattern := model.CyclePattern{
		PatternID: "pat-1", CycleLength: 1, StartDate: date(2024, 9, 2),
		Entries: model.CycleEntryList{{WeekIndex: 0, DayOfWeek: 1, CourseID: "math101"}},
	}
	r := newTestResolver(plans, []model.CyclePattern{pattern}, nil)

	occs, err := r.ResolveForDate(date(2024, 9, 9))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("巧合来源不得静默合并, 期望 2 条记录, 实际 %d", len(occs))
	}
	kinds := map[SourceKind]bool{occs[0].SourceKind: true, occs[1].SourceKind: true}
	if !kinds[SourceRecurring] || !kinds[SourceCycle] {
		t.Errorf("期望同时保留 recurring 与 cycle 来源: %+v", occs)
	}
}

func TestResolveForDate_DeterministicOrdering(t *testing.T) {
	plans := []model.RecurringPlan{
		{PlanID: "plan-b", CourseID: "math101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
		{PlanID: "plan-a", CourseID: "math101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
		{PlanID: "plan-c", CourseID: "eng101", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
	}
	r := newTestResolver(plans, nil, nil)

	first, err := r.ResolveForDate(date(2024, 9, 9))
	if err != nil {
		t.Fatalf("ResolveForDate 失败: %v", err)
	}
	// 按开始时间排序，同时刻按 SourceID 升序
	wantOrder := []string{"plan-a", "plan-b", "plan-c"}
	for i, want := range wantOrder {
		if first[i].SourceID != want {
			t.Fatalf("排序位置 %d 期望 %s, 实际 %s", i, want, first[i].SourceID)
		}
	}

	// 幂等：重复调用结果逐项一致
	for n := 0; n < 5; n++ {
		again, err := r.ResolveForDate(date(2024, 9, 9))
		if err != nil {
			t.Fatalf("ResolveForDate 失败: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("重复调用结果长度不一致")
		}
		for i := range again {
			if again[i] != first[i] {
				t.Fatalf("重复调用结果不一致: %+v != %+v", again[i], first[i])
			}
		}
	}
}

func TestResolveForDate_DanglingPlanCourse(t *testing.T) {
	plans := []model.RecurringPlan{
		{PlanID: "plan-1", CourseID: "ghost", DayOfWeek: 1, WeekType: "all",
			ValidFrom: date(2024, 9, 1), ValidTo: date(2024, 12, 31)},
	}
	r := newTestResolver(plans, nil, nil)

	_, err := r.ResolveForDate(date(2024, 9, 9))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("悬空引用必须中止整次解析, 期望 ErrNotFound, 实际 %v", err)
	}
}

func TestResolveForDate_DanglingOverrideCourse(t *testing.T) {
	overrides := []model.Override{
		{OverrideID: "ov-1", OriginalPlanID: "", NewCourseID: strPtr("ghost"), Date: date(2024, 10, 14)},
	}
	r := newTestResolver(nil, nil, overrides)

	_, err := r.ResolveForDate(date(2024, 10, 14))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("调课引用悬空课程期望 ErrNotFound, 实际 %v", err)
	}
}

func TestValidatePattern(t *testing.T) {
	ok := model.CyclePattern{
		CycleLength: 2,
		Entries: model.CycleEntryList{
			{WeekIndex: 0, DayOfWeek: 1, CourseID: "math101"},
			{WeekIndex: 1, DayOfWeek: 1, CourseID: "eng101"},
		},
	}
	if err := ValidatePattern(ok); err != nil {
		t.Errorf("合法模板不应报错: %v", err)
	}

	cases := []struct {
		name string
		p    model.CyclePattern
	}{
		{"轮换周数为0", model.CyclePattern{CycleLength: 0}},
		{"周序号越界", model.CyclePattern{CycleLength: 2,
			Entries: model.CycleEntryList{{WeekIndex: 2, DayOfWeek: 1, CourseID: "math101"}}}},
		{"星期非法", model.CyclePattern{CycleLength: 1,
			Entries: model.CycleEntryList{{WeekIndex: 0, DayOfWeek: 8, CourseID: "math101"}}}},
		{"同周同星期两门课", model.CyclePattern{CycleLength: 1,
			Entries: model.CycleEntryList{
				{WeekIndex: 0, DayOfWeek: 1, CourseID: "math101"},
				{WeekIndex: 0, DayOfWeek: 1, CourseID: "eng101"},
			}}},
		{"完全重复的条目", model.CyclePattern{CycleLength: 1,
			Entries: model.CycleEntryList{
				{WeekIndex: 0, DayOfWeek: 1, CourseID: "math101"},
				{WeekIndex: 0, DayOfWeek: 1, CourseID: "math101"},
			}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := ValidatePattern(c.p); !errors.Is(err, ErrValidation) {
				t.Errorf("期望 ErrValidation, 实际 %v", err)
			}
		})
	}
}
