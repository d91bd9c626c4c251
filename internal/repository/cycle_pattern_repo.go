package repository

import (
	"context"

	"gorm.io/gorm"

	"timenest/backend/internal/model"
)

// CyclePatternRepository 轮换模板数据访问接口
type CyclePatternRepository interface {
	Create(ctx context.Context, pattern *model.CyclePattern) error
	GetByID(ctx context.Context, id string) (*model.CyclePattern, error)
	List(ctx context.Context) ([]model.CyclePattern, error)
	Update(ctx context.Context, pattern *model.CyclePattern) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type cyclePatternRepo struct {
	db *gorm.DB
}

// NewCyclePatternRepo 创建 CyclePatternRepository 实例
func NewCyclePatternRepo(db *gorm.DB) CyclePatternRepository {
	return &cyclePatternRepo{db: db}
}

func (r *cyclePatternRepo) Create(ctx context.Context, pattern *model.CyclePattern) error {
	return r.db.WithContext(ctx).Create(pattern).Error
}

func (r *cyclePatternRepo) GetByID(ctx context.Context, id string) (*model.CyclePattern, error) {
	var pattern model.CyclePattern
	err := r.db.WithContext(ctx).Where("pattern_id = ?", id).First(&pattern).Error
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *cyclePatternRepo) List(ctx context.Context) ([]model.CyclePattern, error) {
	var patterns []model.CyclePattern
	err := r.db.WithContext(ctx).Order("name ASC").Find(&patterns).Error
	return patterns, err
}

func (r *cyclePatternRepo) Update(ctx context.Context, pattern *model.CyclePattern) error {
	return r.db.WithContext(ctx).Save(pattern).Error
}

func (r *cyclePatternRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.CyclePattern{}).
		Where("pattern_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
