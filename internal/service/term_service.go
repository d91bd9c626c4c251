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
	"timenest/backend/pkg/redis"
)

// ── 学期模块业务错误 ──

var (
	ErrTermNotFound    = errors.New("学期不存在")
	ErrTermDateInvalid = errors.New("锚点日期格式非法")
)

// TermService 学期业务接口
type TermService interface {
	Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TermResponse, error)
	GetActive(ctx context.Context) (*dto.TermResponse, error)
	List(ctx context.Context) ([]dto.TermResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error)
	Activate(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
}

type termService struct {
	repo   *repository.Repository
	cache  *redis.Client
	logger *zap.Logger
}

// NewTermService 创建 TermService 实例
func NewTermService(repo *repository.Repository, cache *redis.Client, logger *zap.Logger) TermService {
	return &termService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *termService) Create(ctx context.Context, req *dto.CreateTermRequest, callerID string) (*dto.TermResponse, error) {
	anchor, err := time.Parse("2006-01-02", req.AnchorDate)
	if err != nil {
		return nil, ErrTermDateInvalid
	}

	// 激活创建时先清除其它学期的激活状态，保证锚点唯一
	if req.IsActive {
		if err := s.repo.Term.ClearActive(ctx); err != nil {
			s.logger.Error("清除激活学期失败", zap.Error(err))
			return nil, err
		}
	}

	term := &model.Term{
		Name:       req.Name,
		AnchorDate: anchor,
		IsActive:   req.IsActive,
	}
	term.CreatedBy = &callerID
	term.UpdatedBy = &callerID

	if err := s.repo.Term.Create(ctx, term); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	bumpVersion(ctx, s.cache)
	return toTermResponse(term), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *termService) GetByID(ctx context.Context, id string) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTermResponse(term), nil
}

// ────────────────────── GetActive ──────────────────────

func (s *termService) GetActive(ctx context.Context) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveTerm
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, err
	}
	return toTermResponse(term), nil
}

// ────────────────────── List ──────────────────────

func (s *termService) List(ctx context.Context) ([]dto.TermResponse, error) {
	terms, err := s.repo.Term.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TermResponse, 0, len(terms))
	for i := range terms {
		result = append(result, *toTermResponse(&terms[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *termService) Update(ctx context.Context, id string, req *dto.UpdateTermRequest, callerID string) (*dto.TermResponse, error) {
	term, err := s.repo.Term.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		term.Name = *req.Name
	}
	if req.AnchorDate != nil {
		t, perr := time.Parse("2006-01-02", *req.AnchorDate)
		if perr != nil {
			return nil, ErrTermDateInvalid
		}
		term.AnchorDate = t
	}
	if req.IsActive != nil && *req.IsActive && !term.IsActive {
		if err := s.repo.Term.ClearActive(ctx); err != nil {
			return nil, err
		}
		term.IsActive = true
	}
	if req.IsActive != nil && !*req.IsActive {
		term.IsActive = false
	}

	term.UpdatedBy = &callerID
	if err := s.repo.Term.Update(ctx, term); err != nil {
		s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 锚点变化会改变全部单双周划分
	bumpVersion(ctx, s.cache)
	return toTermResponse(term), nil
}

// ────────────────────── Activate ──────────────────────

func (s *termService) Activate(ctx context.Context, id string, callerID string) error {
	term, err := s.repo.Term.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTermNotFound
		}
		return err
	}

	if err := s.repo.Term.ClearActive(ctx); err != nil {
		s.logger.Error("清除激活学期失败", zap.Error(err))
		return err
	}

	term.IsActive = true
	term.UpdatedBy = &callerID
	if err := s.repo.Term.Update(ctx, term); err != nil {
		s.logger.Error("激活学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	bumpVersion(ctx, s.cache)
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *termService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Term.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTermNotFound
		}
		return err
	}

	if err := s.repo.Term.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	bumpVersion(ctx, s.cache)
	return nil
}

// ────────────────────── 辅助函数 ──────────────────────

func toTermResponse(t *model.Term) *dto.TermResponse {
	return &dto.TermResponse{
		ID:         t.TermID,
		Name:       t.Name,
		AnchorDate: t.AnchorDate.Format("2006-01-02"),
		IsActive:   t.IsActive,
	}
}
