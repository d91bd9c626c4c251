package service

import (
	"go.uber.org/zap"

	"timenest/backend/config"
	"timenest/backend/internal/repository"
	"timenest/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Course    CourseService
	Plan      PlanService
	Cycle     CycleService
	Override  OverrideService
	Term      TermService
	Timetable TimetableService
}

// NewService 创建 Service 聚合。cache 可为 nil（Redis 不可用时降级为直接解析）。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache *redis.Client,
	logger *zap.Logger,
) *Service {
	timetable := NewTimetableService(cfg, repo, cache, logger)
	return &Service{
		Course:    NewCourseService(repo, cache, logger),
		Plan:      NewPlanService(cfg, repo, cache, logger),
		Cycle:     NewCycleService(repo, cache, logger),
		Override:  NewOverrideService(cfg, repo, cache, logger),
		Term:      NewTermService(repo, cache, logger),
		Timetable: timetable,
	}
}
