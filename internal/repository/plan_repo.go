package repository

import (
	"context"

	"gorm.io/gorm"

	"timenest/backend/internal/model"
)

// PlanRepository 周期性安排数据访问接口
type PlanRepository interface {
	Create(ctx context.Context, plan *model.RecurringPlan) error
	// BatchCreate 批量插入（轮换模板落盘场景，单个事务内完成）
	BatchCreate(ctx context.Context, plans []model.RecurringPlan) error
	GetByID(ctx context.Context, id string) (*model.RecurringPlan, error)
	List(ctx context.Context) ([]model.RecurringPlan, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
	Update(ctx context.Context, plan *model.RecurringPlan) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type planRepo struct {
	db *gorm.DB
}

// NewPlanRepo 创建 PlanRepository 实例
func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

func (r *planRepo) Create(ctx context.Context, plan *model.RecurringPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepo) BatchCreate(ctx context.Context, plans []model.RecurringPlan) error {
	if len(plans) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&plans).Error
	})
}

func (r *planRepo) GetByID(ctx context.Context, id string) (*model.RecurringPlan, error) {
	var plan model.RecurringPlan
	err := r.db.WithContext(ctx).Where("plan_id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepo) List(ctx context.Context) ([]model.RecurringPlan, error) {
	var plans []model.RecurringPlan
	err := r.db.WithContext(ctx).
		Order("day_of_week ASC, valid_from ASC").
		Find(&plans).Error
	return plans, err
}

func (r *planRepo) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RecurringPlan{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *planRepo) Update(ctx context.Context, plan *model.RecurringPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *planRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.RecurringPlan{}).
		Where("plan_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
