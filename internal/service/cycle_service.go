package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/model"
	"timenest/backend/internal/repository"
	"timenest/backend/internal/schedule"
	"timenest/backend/pkg/redis"
)

// ── 轮换模板模块业务错误 ──

var (
	ErrPatternNotFound    = errors.New("轮换模板不存在")
	ErrPatternInvalid     = errors.New("轮换模板定义非法")
	ErrPatternDateInvalid = errors.New("日期格式非法")
)

// CycleService 轮换模板业务接口
type CycleService interface {
	Create(ctx context.Context, req *dto.CreateCyclePatternRequest, callerID string) (*dto.CyclePatternResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CyclePatternResponse, error)
	List(ctx context.Context) ([]dto.CyclePatternResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCyclePatternRequest, callerID string) (*dto.CyclePatternResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Commit 将模板物化为周期性安排并落盘
	Commit(ctx context.Context, id string, req *dto.CommitCycleRequest, callerID string) (*dto.CommitCycleResponse, error)
}

type cycleService struct {
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewCycleService 创建 CycleService 实例
func NewCycleService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger) CycleService {
	return &cycleService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *cycleService) Create(ctx context.Context, req *dto.CreateCyclePatternRequest, callerID string) (*dto.CyclePatternResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrPatternDateInvalid
	}

	pattern := &model.CyclePattern{
		Name:        req.Name,
		CycleLength: req.CycleLength,
		StartDate:   startDate,
		Entries:     toCycleEntries(req.Entries),
	}
	if err := schedule.ValidatePattern(*pattern); err != nil {
		s.logger.Warn("轮换模板校验失败", zap.Error(err))
		return nil, ErrPatternInvalid
	}
	if err := s.checkEntryCourses(ctx, pattern.Entries); err != nil {
		return nil, err
	}

	pattern.CreatedBy = &callerID
	pattern.UpdatedBy = &callerID

	if err := s.repo.CyclePattern.Create(ctx, pattern); err != nil {
		s.logger.Error("创建轮换模板失败", zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	return toCyclePatternResponse(pattern), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *cycleService) GetByID(ctx context.Context, id string) (*dto.CyclePatternResponse, error) {
	pattern, err := s.repo.CyclePattern.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询轮换模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCyclePatternResponse(pattern), nil
}

// ────────────────────── List ──────────────────────

func (s *cycleService) List(ctx context.Context) ([]dto.CyclePatternResponse, error) {
	patterns, err := s.repo.CyclePattern.List(ctx)
	if err != nil {
		s.logger.Error("列出轮换模板失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CyclePatternResponse, 0, len(patterns))
	for i := range patterns {
		result = append(result, *toCyclePatternResponse(&patterns[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *cycleService) Update(ctx context.Context, id string, req *dto.UpdateCyclePatternRequest, callerID string) (*dto.CyclePatternResponse, error) {
	pattern, err := s.repo.CyclePattern.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		pattern.Name = *req.Name
	}
	if req.CycleLength != nil {
		pattern.CycleLength = *req.CycleLength
	}
	if req.StartDate != nil {
		t, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrPatternDateInvalid
		}
		pattern.StartDate = t
	}
	if req.Entries != nil {
		pattern.Entries = toCycleEntries(req.Entries)
	}

	if err := schedule.ValidatePattern(*pattern); err != nil {
		s.logger.Warn("轮换模板校验失败", zap.String("id", id), zap.Error(err))
		return nil, ErrPatternInvalid
	}
	if err := s.checkEntryCourses(ctx, pattern.Entries); err != nil {
		return nil, err
	}

	pattern.UpdatedBy = &callerID
	if err := s.repo.CyclePattern.Update(ctx, pattern); err != nil {
		s.logger.Error("更新轮换模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	return toCyclePatternResponse(pattern), nil
}

// ────────────────────── Delete ──────────────────────

func (s *cycleService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.CyclePattern.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPatternNotFound
		}
		return err
	}

	if err := s.repo.CyclePattern.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除轮换模板失败", zap.String("id", id), zap.Error(err))
		return err
	}

	bumpVersion(ctx, s.cache)
	return nil
}

// ────────────────────── Commit ──────────────────────

// Commit 展开模板为等价的周期性安排。展开结果与模板逐日解析一致：
// 模板中连续周次的同一槽位合并为一条 week_type=all 的安排。
func (s *cycleService) Commit(ctx context.Context, id string, req *dto.CommitCycleRequest, callerID string) (*dto.CommitCycleResponse, error) {
	pattern, err := s.repo.CyclePattern.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrPatternDateInvalid
	}

	plans, err := schedule.Materialize(*pattern, startDate, req.WeekCount)
	if err != nil {
		s.logger.Warn("轮换模板物化失败", zap.String("id", id), zap.Error(err))
		return nil, ErrPatternInvalid
	}

	for i := range plans {
		plans[i].CreatedBy = &callerID
		plans[i].UpdatedBy = &callerID
	}

	if err := s.repo.Plan.BatchCreate(ctx, plans); err != nil {
		s.logger.Error("物化安排落盘失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)

	resp := &dto.CommitCycleResponse{
		CreatedCount: len(plans),
		Plans:        make([]dto.PlanResponse, 0, len(plans)),
	}
	for i := range plans {
		resp.Plans = append(resp.Plans, *toPlanResponse(&plans[i]))
	}
	return resp, nil
}

// ────────────────────── 辅助函数 ──────────────────────

// checkEntryCourses 确认模板条目引用的课程全部存在
func (s *cycleService) checkEntryCourses(ctx context.Context, entries model.CycleEntryList) error {
	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.CourseID] {
			continue
		}
		seen[e.CourseID] = true
		if _, err := s.repo.Course.GetByID(ctx, e.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
	}
	return nil
}

func toCycleEntries(payload []dto.CycleEntryPayload) model.CycleEntryList {
	entries := make(model.CycleEntryList, 0, len(payload))
	for _, p := range payload {
		entries = append(entries, model.CycleEntry{
			WeekIndex: p.WeekIndex,
			DayOfWeek: p.DayOfWeek,
			CourseID:  p.CourseID,
		})
	}
	return entries
}

func toCyclePatternResponse(p *model.CyclePattern) *dto.CyclePatternResponse {
	entries := make([]dto.CycleEntryPayload, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, dto.CycleEntryPayload{
			WeekIndex: e.WeekIndex,
			DayOfWeek: e.DayOfWeek,
			CourseID:  e.CourseID,
		})
	}
	return &dto.CyclePatternResponse{
		ID:          p.PatternID,
		Name:        p.Name,
		CycleLength: p.CycleLength,
		StartDate:   p.StartDate.Format("2006-01-02"),
		Entries:     entries,
	}
}
