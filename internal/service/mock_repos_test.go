package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"timenest/backend/internal/model"
	pkgerrors "timenest/backend/pkg/errors"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	seq     int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.seq++
		course.CourseID = fmt.Sprintf("course-%d", m.seq)
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CourseID < result[j].CourseID })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock PlanRepository ──

type mockPlanRepo struct {
	plans map[string]*model.RecurringPlan
	seq   int
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[string]*model.RecurringPlan)}
}

func (m *mockPlanRepo) Create(_ context.Context, plan *model.RecurringPlan) error {
	if plan.PlanID == "" {
		m.seq++
		plan.PlanID = fmt.Sprintf("plan-%d", m.seq)
	}
	m.plans[plan.PlanID] = plan
	return nil
}

func (m *mockPlanRepo) BatchCreate(ctx context.Context, plans []model.RecurringPlan) error {
	for i := range plans {
		if err := m.Create(ctx, &plans[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id string) (*model.RecurringPlan, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPlanRepo) List(_ context.Context) ([]model.RecurringPlan, error) {
	var result []model.RecurringPlan
	for _, p := range m.plans {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PlanID < result[j].PlanID })
	return result, nil
}

func (m *mockPlanRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	var count int64
	for _, p := range m.plans {
		if p.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (m *mockPlanRepo) Update(_ context.Context, plan *model.RecurringPlan) error {
	m.plans[plan.PlanID] = plan
	return nil
}

func (m *mockPlanRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.plans, id)
	return nil
}

// ── Mock CyclePatternRepository ──

type mockCyclePatternRepo struct {
	patterns map[string]*model.CyclePattern
	seq      int
}

func newMockCyclePatternRepo() *mockCyclePatternRepo {
	return &mockCyclePatternRepo{patterns: make(map[string]*model.CyclePattern)}
}

func (m *mockCyclePatternRepo) Create(_ context.Context, pattern *model.CyclePattern) error {
	if pattern.PatternID == "" {
		m.seq++
		pattern.PatternID = fmt.Sprintf("pattern-%d", m.seq)
	}
	m.patterns[pattern.PatternID] = pattern
	return nil
}

func (m *mockCyclePatternRepo) GetByID(_ context.Context, id string) (*model.CyclePattern, error) {
	if p, ok := m.patterns[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCyclePatternRepo) List(_ context.Context) ([]model.CyclePattern, error) {
	var result []model.CyclePattern
	for _, p := range m.patterns {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PatternID < result[j].PatternID })
	return result, nil
}

func (m *mockCyclePatternRepo) Update(_ context.Context, pattern *model.CyclePattern) error {
	m.patterns[pattern.PatternID] = pattern
	return nil
}

func (m *mockCyclePatternRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.patterns, id)
	return nil
}

// ── Mock OverrideRepository ──

type mockOverrideRepo struct {
	overrides map[string]*model.Override
	seq       int
}

func newMockOverrideRepo() *mockOverrideRepo {
	return &mockOverrideRepo{overrides: make(map[string]*model.Override)}
}

func (m *mockOverrideRepo) Create(_ context.Context, override *model.Override) error {
	if override.OverrideID == "" {
		m.seq++
		override.OverrideID = fmt.Sprintf("override-%d", m.seq)
	}
	m.overrides[override.OverrideID] = override
	return nil
}

// GetByID 返回副本，模拟真实仓储中读取与存储互不共享内存
func (m *mockOverrideRepo) GetByID(_ context.Context, id string) (*model.Override, error) {
	if o, ok := m.overrides[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOverrideRepo) GetByPlanAndDate(_ context.Context, planID string, date time.Time) (*model.Override, error) {
	for _, o := range m.overrides {
		if o.OriginalPlanID == planID && o.Date.Equal(date) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOverrideRepo) ListByDate(_ context.Context, date time.Time) ([]model.Override, error) {
	var result []model.Override
	for _, o := range m.overrides {
		if o.Date.Equal(date) {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OverrideID < result[j].OverrideID })
	return result, nil
}

func (m *mockOverrideRepo) List(_ context.Context) ([]model.Override, error) {
	var result []model.Override
	for _, o := range m.overrides {
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OverrideID < result[j].OverrideID })
	return result, nil
}

func (m *mockOverrideRepo) ListExpiredUnconsumed(_ context.Context, before time.Time) ([]model.Override, error) {
	var result []model.Override
	for _, o := range m.overrides {
		if o.Date.Before(before) && !o.Consumed {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OverrideID < result[j].OverrideID })
	return result, nil
}

func (m *mockOverrideRepo) Update(_ context.Context, override *model.Override) error {
	existing, ok := m.overrides[override.OverrideID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if existing.Version != override.Version {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *override
	cp.Version = existing.Version + 1
	m.overrides[override.OverrideID] = &cp
	return nil
}

func (m *mockOverrideRepo) MarkConsumed(_ context.Context, ids []string) error {
	for _, id := range ids {
		if o, ok := m.overrides[id]; ok {
			o.Consumed = true
		}
	}
	return nil
}

func (m *mockOverrideRepo) Delete(_ context.Context, id string) error {
	delete(m.overrides, id)
	return nil
}

// ── Mock TermRepository ──

type mockTermRepo struct {
	terms map[string]*model.Term
	seq   int
}

func newMockTermRepo() *mockTermRepo {
	return &mockTermRepo{terms: make(map[string]*model.Term)}
}

func (m *mockTermRepo) Create(_ context.Context, term *model.Term) error {
	if term.TermID == "" {
		m.seq++
		term.TermID = fmt.Sprintf("term-%d", m.seq)
	}
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) GetByID(_ context.Context, id string) (*model.Term, error) {
	if t, ok := m.terms[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetActive(_ context.Context) (*model.Term, error) {
	for _, t := range m.terms {
		if t.IsActive {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) List(_ context.Context) ([]model.Term, error) {
	var result []model.Term
	for _, t := range m.terms {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TermID < result[j].TermID })
	return result, nil
}

func (m *mockTermRepo) Update(_ context.Context, term *model.Term) error {
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) ClearActive(_ context.Context) error {
	for _, t := range m.terms {
		t.IsActive = false
	}
	return nil
}

func (m *mockTermRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.terms, id)
	return nil
}
