package repository

import (
	"context"

	"gorm.io/gorm"

	"timenest/backend/internal/model"
)

// TermRepository 学期数据访问接口
type TermRepository interface {
	Create(ctx context.Context, term *model.Term) error
	GetByID(ctx context.Context, id string) (*model.Term, error)
	// GetActive 获取当前激活学期，不存在时返回 gorm.ErrRecordNotFound
	GetActive(ctx context.Context) (*model.Term, error)
	List(ctx context.Context) ([]model.Term, error)
	Update(ctx context.Context, term *model.Term) error
	// ClearActive 取消所有学期的激活状态（切换激活学期前调用）
	ClearActive(ctx context.Context) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type termRepo struct {
	db *gorm.DB
}

// NewTermRepo 创建 TermRepository 实例
func NewTermRepo(db *gorm.DB) TermRepository {
	return &termRepo{db: db}
}

func (r *termRepo) Create(ctx context.Context, term *model.Term) error {
	return r.db.WithContext(ctx).Create(term).Error
}

func (r *termRepo) GetByID(ctx context.Context, id string) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).Where("term_id = ?", id).First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) GetActive(ctx context.Context) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) List(ctx context.Context) ([]model.Term, error) {
	var terms []model.Term
	err := r.db.WithContext(ctx).Order("anchor_date DESC").Find(&terms).Error
	return terms, err
}

func (r *termRepo) Update(ctx context.Context, term *model.Term) error {
	return r.db.WithContext(ctx).Save(term).Error
}

func (r *termRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Term{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *termRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Term{}).
		Where("term_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
