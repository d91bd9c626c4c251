package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"timenest/backend/internal/repository"
	"timenest/backend/internal/schedule"
	"timenest/backend/pkg/redis"
)

// ── 快照装载 ──

var (
	// ErrNoActiveTerm 没有激活学期时无法确定单双周锚点
	ErrNoActiveTerm = errors.New("当前没有激活的学期")
)

// loadSnapshot 从仓储装载引擎所需的全量数据快照。
// 解析与冲突检测都基于同一份快照进行，写入不影响已开始的解析。
func loadSnapshot(ctx context.Context, repo *repository.Repository) (*schedule.Snapshot, error) {
	term, err := repo.Term.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveTerm
		}
		return nil, err
	}

	courses, err := repo.Course.List(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := repo.Plan.List(ctx)
	if err != nil {
		return nil, err
	}
	patterns, err := repo.CyclePattern.List(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := repo.Override.List(ctx)
	if err != nil {
		return nil, err
	}

	return schedule.NewSnapshot(term.AnchorDate, courses, plans, patterns, overrides), nil
}

// bumpVersion 数据写入后递增缓存版本；cache 为 nil 或 Redis 出错时静默忽略，
// 此时单日课表缓存退化为 TTL 过期。
func bumpVersion(ctx context.Context, cache *redis.Client) {
	if cache == nil {
		return
	}
	_ = cache.BumpDataVersion(ctx)
}
