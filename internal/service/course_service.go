package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timenest/backend/internal/dto"
	"timenest/backend/internal/model"
	"timenest/backend/internal/repository"
	"timenest/backend/internal/schedule"
	"timenest/backend/pkg/redis"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound    = errors.New("课程不存在")
	ErrCourseTimeInvalid = errors.New("课程时间段非法")
	ErrCourseReferenced  = errors.New("课程仍被安排引用，无法删除")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type courseService struct {
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	interval := schedule.TimeInterval{Start: req.StartTime, End: req.EndTime}
	if err := interval.Validate(); err != nil {
		return nil, ErrCourseTimeInvalid
	}

	course := &model.Course{
		Name:       req.Name,
		Instructor: req.Instructor,
		Location:   req.Location,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Instructor != nil {
		course.Instructor = *req.Instructor
	}
	if req.Location != nil {
		course.Location = *req.Location
	}
	if req.StartTime != nil {
		course.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		course.EndTime = *req.EndTime
	}

	interval := schedule.TimeInterval{Start: course.StartTime, End: course.EndTime}
	if err := interval.Validate(); err != nil {
		return nil, ErrCourseTimeInvalid
	}

	course.UpdatedBy = &callerID
	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	return toCourseResponse(course), nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Course.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	// 被周期性安排引用的课程不可删除，否则解析时会出现悬空引用
	count, err := s.repo.Plan.CountByCourse(ctx, id)
	if err != nil {
		s.logger.Error("检查课程引用失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrCourseReferenced
	}

	// 轮换模板的条目同样按 ID 引用课程
	patterns, err := s.repo.CyclePattern.List(ctx)
	if err != nil {
		s.logger.Error("检查课程引用失败", zap.String("id", id), zap.Error(err))
		return err
	}
	for _, p := range patterns {
		for _, e := range p.Entries {
			if e.CourseID == id {
				return ErrCourseReferenced
			}
		}
	}

	if err := s.repo.Course.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	bumpVersion(ctx, s.cache)
	return nil
}

// ────────────────────── 辅助函数 ──────────────────────

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:         c.CourseID,
		Name:       c.Name,
		Instructor: c.Instructor,
		Location:   c.Location,
		StartTime:  c.StartTime,
		EndTime:    c.EndTime,
		CreatedAt:  c.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:  c.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
