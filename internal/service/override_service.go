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
	pkgerrors "timenest/backend/pkg/errors"
	"timenest/backend/pkg/redis"
)

// ── 调课模块业务错误 ──

var (
	ErrOverrideNotFound    = errors.New("调课记录不存在")
	ErrOverrideDateInvalid = errors.New("调课日期格式非法")
	ErrOverrideEmpty       = errors.New("无目标的调课必须指定新课程")
	ErrOverrideConflicted  = errors.New("调课记录已被其他人修改，请刷新后重试")
)

// OverrideService 调课/停课业务接口
type OverrideService interface {
	Create(ctx context.Context, req *dto.CreateOverrideRequest, callerID string) (*dto.OverrideResponse, error)
	GetByID(ctx context.Context, id string) (*dto.OverrideResponse, error)
	List(ctx context.Context, req *dto.OverrideListRequest) ([]dto.OverrideResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateOverrideRequest, callerID string) (*dto.OverrideResponse, error)
	Delete(ctx context.Context, id string) error
	// SweepConsumed 将日期已过的记录标记为已消费（历史归档，不影响解析）
	SweepConsumed(ctx context.Context, now time.Time) (*dto.SweepOverridesResponse, error)
}

type overrideService struct {
	cfg    *config.Config
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewOverrideService 创建 OverrideService 实例
func NewOverrideService(cfg *config.Config, repo *repository.Repository, cache *redis.Client, logger *zap.Logger) OverrideService {
	return &overrideService{cfg: cfg, repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 创建调课记录。同一 (original_plan_id, date) 已有记录时替换其内容，
// 保证单个安排在单日至多一条例外。
func (s *overrideService) Create(ctx context.Context, req *dto.CreateOverrideRequest, callerID string) (*dto.OverrideResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrOverrideDateInvalid
	}

	// 无目标 + 无新课程 = 空操作，拒绝
	if req.OriginalPlanID == "" && req.NewCourseID == nil {
		return nil, ErrOverrideEmpty
	}

	var newCourse *model.Course
	if req.NewCourseID != nil {
		newCourse, err = s.repo.Course.GetByID(ctx, *req.NewCourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, err
		}
	}

	// 先定位待替换的既有记录：当日时间线上原安排的发生已被它替换，
	// 冲突校验需要同时排除原安排与该记录自身的发生
	var existing *model.Override
	if req.OriginalPlanID != "" {
		existing, err = s.repo.Override.GetByPlanAndDate(ctx, req.OriginalPlanID, date)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			existing = nil
		}
	}

	// 替换/插课会产生新的发生记录，校验其当日冲突；停课不会
	if newCourse != nil && !req.Force {
		excludeIDs := []string{req.OriginalPlanID}
		if existing != nil {
			excludeIDs = append(excludeIDs, existing.OverrideID)
		}
		if err := s.guardDayConflicts(ctx, newCourse, date, excludeIDs); err != nil {
			return nil, err
		}
	}

	if existing != nil {
		// 替换既有记录
		existing.NewCourseID = req.NewCourseID
		existing.UpdatedBy = &callerID
		if err := s.repo.Override.Update(ctx, existing); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return nil, ErrOverrideConflicted
			}
			s.logger.Error("替换调课记录失败", zap.Error(err))
			return nil, err
		}
		existing.Version++
		existing.NewCourse = newCourse
		bumpVersion(ctx, s.cache)
		return toOverrideResponse(existing), nil
	}

	override := &model.Override{
		OriginalPlanID: req.OriginalPlanID,
		NewCourseID:    req.NewCourseID,
		Date:           date,
		Version:        1,
	}
	override.CreatedBy = &callerID
	override.UpdatedBy = &callerID

	if err := s.repo.Override.Create(ctx, override); err != nil {
		// 并发写入同一 (原安排, 日期) 触发唯一索引
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrOverrideConflicted
		}
		s.logger.Error("创建调课记录失败", zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	override.NewCourse = newCourse
	return toOverrideResponse(override), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *overrideService) GetByID(ctx context.Context, id string) (*dto.OverrideResponse, error) {
	override, err := s.repo.Override.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOverrideNotFound
		}
		s.logger.Error("查询调课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toOverrideResponse(override), nil
}

// ────────────────────── List ──────────────────────

func (s *overrideService) List(ctx context.Context, req *dto.OverrideListRequest) ([]dto.OverrideResponse, error) {
	var (
		overrides []model.Override
		err       error
	)
	if req != nil && req.Date != "" {
		date, perr := time.Parse("2006-01-02", req.Date)
		if perr != nil {
			return nil, ErrOverrideDateInvalid
		}
		overrides, err = s.repo.Override.ListByDate(ctx, date)
	} else {
		overrides, err = s.repo.Override.List(ctx)
	}
	if err != nil {
		s.logger.Error("列出调课记录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.OverrideResponse, 0, len(overrides))
	for i := range overrides {
		result = append(result, *toOverrideResponse(&overrides[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *overrideService) Update(ctx context.Context, id string, req *dto.UpdateOverrideRequest, callerID string) (*dto.OverrideResponse, error) {
	override, err := s.repo.Override.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOverrideNotFound
		}
		return nil, err
	}

	if req.Date != nil {
		t, perr := time.Parse("2006-01-02", *req.Date)
		if perr != nil {
			return nil, ErrOverrideDateInvalid
		}
		override.Date = t
	}
	if req.NewCourseID != nil {
		override.NewCourseID = req.NewCourseID
	}

	if override.NewCourseID != nil && !req.Force {
		newCourse, cerr := s.repo.Course.GetByID(ctx, *override.NewCourseID)
		if cerr != nil {
			if errors.Is(cerr, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, cerr
		}
		// 排除原安排与本记录自身：两者的发生都会被编辑后的版本取代
		if err := s.guardDayConflicts(ctx, newCourse, override.Date,
			[]string{override.OriginalPlanID, override.OverrideID}); err != nil {
			return nil, err
		}
	}

	// 以请求携带的版本做乐观锁，拦截并发修改
	override.Version = req.Version
	override.UpdatedBy = &callerID
	if err := s.repo.Override.Update(ctx, override); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrOverrideConflicted
		}
		s.logger.Error("更新调课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	override.Version++

	bumpVersion(ctx, s.cache)
	return toOverrideResponse(override), nil
}

// ────────────────────── Delete ──────────────────────

func (s *overrideService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Override.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOverrideNotFound
		}
		return err
	}

	if err := s.repo.Override.Delete(ctx, id); err != nil {
		s.logger.Error("删除调课记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	bumpVersion(ctx, s.cache)
	return nil
}

// ────────────────────── SweepConsumed ──────────────────────

func (s *overrideService) SweepConsumed(ctx context.Context, now time.Time) (*dto.SweepOverridesResponse, error) {
	expired, err := s.repo.Override.ListExpiredUnconsumed(ctx, schedule.Midnight(now))
	if err != nil {
		s.logger.Error("查询过期调课记录失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(expired))
	for _, o := range expired {
		ids = append(ids, o.OverrideID)
	}
	if err := s.repo.Override.MarkConsumed(ctx, ids); err != nil {
		s.logger.Error("标记调课记录失败", zap.Error(err))
		return nil, err
	}

	return &dto.SweepOverridesResponse{MarkedCount: len(ids)}, nil
}

// ────────────────────── 辅助函数 ──────────────────────

// guardDayConflicts 校验替换/插课产生的发生记录在当日是否与现有课表冲突。
// excludeIDs 为被调课的原安排与既有调课记录的 ID：它们的发生会被
// 本次写入取代，不应计入冲突。
func (s *overrideService) guardDayConflicts(ctx context.Context, course *model.Course, date time.Time, excludeIDs []string) error {
	snap, err := loadSnapshot(ctx, s.repo)
	if err != nil {
		return err
	}

	day := date
	resolver := schedule.NewResolver(snap, s.cfg.Schedule.ConflictScanWeeks)
	conflicts, err := resolver.CheckConflicts(schedule.Candidate{
		CourseID:   course.CourseID,
		Instructor: course.Instructor,
		Location:   course.Location,
		Interval:   schedule.TimeInterval{Start: course.StartTime, End: course.EndTime},
		Date:       &day,
		ExcludeIDs: excludeIDs,
	})
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

func toOverrideResponse(o *model.Override) *dto.OverrideResponse {
	resp := &dto.OverrideResponse{
		ID:             o.OverrideID,
		OriginalPlanID: o.OriginalPlanID,
		NewCourseID:    o.NewCourseID,
		Date:           o.Date.Format("2006-01-02"),
		Consumed:       o.Consumed,
		Version:        o.Version,
	}
	if o.NewCourse != nil {
		resp.NewCourse = toCourseResponse(o.NewCourse)
	}
	return resp
}
