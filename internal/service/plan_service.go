package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timenest/backend/config"
	"timenest/backend/internal/dto"
	"timenest/backend/internal/model"
	"timenest/backend/internal/repository"
	"timenest/backend/internal/schedule"
	"timenest/backend/pkg/redis"
)

// ── 周期性安排模块业务错误 ──

var (
	ErrPlanNotFound     = errors.New("周期性安排不存在")
	ErrPlanDateInvalid  = errors.New("有效期结束日期不得早于开始日期")
	ErrPlanHasConflicts = errors.New("安排与现有课表存在时间冲突")
)

// ConflictError 冲突详情错误：携带冲突列表供调用方返回给客户端
type ConflictError struct {
	Conflicts []schedule.ConflictReport
}

func (e *ConflictError) Error() string { return ErrPlanHasConflicts.Error() }

// Unwrap 支持 errors.Is(err, ErrPlanHasConflicts)
func (e *ConflictError) Unwrap() error { return ErrPlanHasConflicts }

// PlanService 周期性安排业务接口
type PlanService interface {
	Create(ctx context.Context, req *dto.CreatePlanRequest, callerID string) (*dto.PlanResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PlanResponse, error)
	List(ctx context.Context, req *dto.PlanListRequest) ([]dto.PlanResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePlanRequest, callerID string) (*dto.PlanResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type planService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(cfg *config.Config, repo *repository.Repository, cache *redis.Client, logger *zap.Logger) PlanService {
	return &planService{cfg: cfg, repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *planService) Create(ctx context.Context, req *dto.CreatePlanRequest, callerID string) (*dto.PlanResponse, error) {
	validFrom, validTo, err := parsePlanWindow(req.ValidFrom, req.ValidTo)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	weekType := req.WeekType
	if weekType == "" {
		weekType = "all"
	}

	if !req.Force {
		if err := s.guardConflicts(ctx, course, req.DayOfWeek, weekType, validFrom, validTo, ""); err != nil {
			return nil, err
		}
	}

	plan := &model.RecurringPlan{
		CourseID:  req.CourseID,
		DayOfWeek: req.DayOfWeek,
		WeekType:  weekType,
		ValidFrom: validFrom,
		ValidTo:   validTo,
	}
	plan.CreatedBy = &callerID
	plan.UpdatedBy = &callerID

	if err := s.repo.Plan.Create(ctx, plan); err != nil {
		s.logger.Error("创建周期性安排失败", zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	plan.Course = course
	return toPlanResponse(plan), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *planService) GetByID(ctx context.Context, id string) (*dto.PlanResponse, error) {
	plan, err := s.repo.Plan.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		s.logger.Error("查询周期性安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPlanResponse(plan), nil
}

// ────────────────────── List ──────────────────────

func (s *planService) List(ctx context.Context, req *dto.PlanListRequest) ([]dto.PlanResponse, error) {
	plans, err := s.repo.Plan.List(ctx)
	if err != nil {
		s.logger.Error("列出周期性安排失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		if req != nil && req.CourseID != "" && plans[i].CourseID != req.CourseID {
			continue
		}
		result = append(result, *toPlanResponse(&plans[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *planService) Update(ctx context.Context, id string, req *dto.UpdatePlanRequest, callerID string) (*dto.PlanResponse, error) {
	plan, err := s.repo.Plan.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if req.CourseID != nil {
		plan.CourseID = *req.CourseID
	}
	if req.DayOfWeek != nil {
		plan.DayOfWeek = *req.DayOfWeek
	}
	if req.WeekType != nil {
		plan.WeekType = *req.WeekType
	}
	if req.ValidFrom != nil {
		t, err := time.Parse("2006-01-02", *req.ValidFrom)
		if err != nil {
			return nil, ErrPlanDateInvalid
		}
		plan.ValidFrom = t
	}
	if req.ValidTo != nil {
		t, err := time.Parse("2006-01-02", *req.ValidTo)
		if err != nil {
			return nil, ErrPlanDateInvalid
		}
		plan.ValidTo = t
	}
	if plan.ValidTo.Before(plan.ValidFrom) {
		return nil, ErrPlanDateInvalid
	}

	course, err := s.repo.Course.GetByID(ctx, plan.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if !req.Force {
		// 排除旧版本自身，避免与被编辑前的记录自我冲突
		if err := s.guardConflicts(ctx, course, plan.DayOfWeek, plan.WeekType, plan.ValidFrom, plan.ValidTo, plan.PlanID); err != nil {
			return nil, err
		}
	}

	plan.UpdatedBy = &callerID
	if err := s.repo.Plan.Update(ctx, plan); err != nil {
		s.logger.Error("更新周期性安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	plan.Course = course
	return toPlanResponse(plan), nil
}

// ────────────────────── Delete ──────────────────────

func (s *planService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Plan.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}

	if err := s.repo.Plan.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除周期性安排失败", zap.String("id", id), zap.Error(err))
		return err
	}

	bumpVersion(ctx, s.cache)
	return nil
}

// ────────────────────── 辅助函数 ──────────────────────

// guardConflicts 以当前数据快照对候选安排做冲突检测，发现冲突时返回 ConflictError
func (s *planService) guardConflicts(ctx context.Context, course *model.Course, dayOfWeek int, weekType string, validFrom, validTo time.Time, excludeID string) error {
	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		return err
	}

	resolver := schedule.NewResolver(snap, s.cfg.Schedule.ConflictScanWeeks)
	conflicts, err := resolver.CheckConflicts(schedule.Candidate{
		CourseID:   course.CourseID,
		Instructor: course.Instructor,
		Location:   course.Location,
		Interval:   schedule.TimeInterval{Start: course.StartTime, End: course.EndTime},
		DayOfWeek:  dayOfWeek,
		WeekType:   weekType,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
		ExcludeIDs: []string{excludeID},
	})
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

func parsePlanWindow(from, to string) (time.Time, time.Time, error) {
	validFrom, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, ErrPlanDateInvalid
	}
	validTo, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, ErrPlanDateInvalid
	}
	if validTo.Before(validFrom) {
		return time.Time{}, time.Time{}, ErrPlanDateInvalid
	}
	return validFrom, validTo, nil
}

func toPlanResponse(p *model.RecurringPlan) *dto.PlanResponse {
	resp := &dto.PlanResponse{
		ID:        p.PlanID,
		CourseID:  p.CourseID,
		DayOfWeek: p.DayOfWeek,
		WeekType:  p.WeekType,
		ValidFrom: p.ValidFrom.Format("2006-01-02"),
		ValidTo:   p.ValidTo.Format("2006-01-02"),
	}
	if p.Course != nil {
		resp.Course = toCourseResponse(p.Course)
	}
	return resp
}
