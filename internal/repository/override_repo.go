package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"timenest/backend/internal/model"
	pkgerrors "timenest/backend/pkg/errors"
)

// OverrideRepository 调课记录数据访问接口
type OverrideRepository interface {
	Create(ctx context.Context, override *model.Override) error
	GetByID(ctx context.Context, id string) (*model.Override, error)
	// GetByPlanAndDate 查找同一 (original_plan_id, date) 的既有记录（重复创建时替换）
	GetByPlanAndDate(ctx context.Context, originalPlanID string, date time.Time) (*model.Override, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.Override, error)
	List(ctx context.Context) ([]model.Override, error)
	// ListExpiredUnconsumed 查找日期已过且尚未标记的记录
	ListExpiredUnconsumed(ctx context.Context, before time.Time) ([]model.Override, error)
	// Update 乐观锁更新：版本不匹配时返回 ErrOptimisticLock
	Update(ctx context.Context, override *model.Override) error
	MarkConsumed(ctx context.Context, ids []string) error
	Delete(ctx context.Context, id string) error
}

type overrideRepo struct {
	db *gorm.DB
}

// NewOverrideRepo 创建 OverrideRepository 实例
func NewOverrideRepo(db *gorm.DB) OverrideRepository {
	return &overrideRepo{db: db}
}

func (r *overrideRepo) Create(ctx context.Context, override *model.Override) error {
	return r.db.WithContext(ctx).Create(override).Error
}

func (r *overrideRepo) GetByID(ctx context.Context, id string) (*model.Override, error) {
	var override model.Override
	err := r.db.WithContext(ctx).Where("override_id = ?", id).First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *overrideRepo) GetByPlanAndDate(ctx context.Context, originalPlanID string, date time.Time) (*model.Override, error) {
	var override model.Override
	err := r.db.WithContext(ctx).
		Where("original_plan_id = ? AND date = ?", originalPlanID, date).
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *overrideRepo) ListByDate(ctx context.Context, date time.Time) ([]model.Override, error) {
	var overrides []model.Override
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("created_at ASC").
		Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) List(ctx context.Context) ([]model.Override, error) {
	var overrides []model.Override
	err := r.db.WithContext(ctx).Order("date ASC").Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) ListExpiredUnconsumed(ctx context.Context, before time.Time) ([]model.Override, error) {
	var overrides []model.Override
	err := r.db.WithContext(ctx).
		Where("date < ? AND consumed = ?", before, false).
		Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) Update(ctx context.Context, override *model.Override) error {
	result := r.db.WithContext(ctx).
		Model(&model.Override{}).
		Where("override_id = ? AND version = ?", override.OverrideID, override.Version).
		Updates(map[string]interface{}{
			"original_plan_id": override.OriginalPlanID,
			"new_course_id":    override.NewCourseID,
			"date":             override.Date,
			"consumed":         override.Consumed,
			"updated_by":       override.UpdatedBy,
			"version":          gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *overrideRepo) MarkConsumed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Override{}).
		Where("override_id IN ?", ids).
		Update("consumed", true).Error
}

func (r *overrideRepo) Delete(ctx context.Context, id string) error {
	// 调课记录本身就是历史，无软删除需求，直接物理删除
	return r.db.WithContext(ctx).
		Delete(&model.Override{}, "override_id = ?", id).Error
}
