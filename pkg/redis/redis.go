package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"timenest/backend/config"
)

// Client Redis 客户端封装
// 当前用于单日课表解析结果缓存；后续可扩展分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 单日课表缓存 ──
//
// 缓存键按 "数据版本 + 日期" 组合，任何课程/安排/调课写入都会递增数据版本，
// 旧版本键不再被读取并依赖 TTL 自然过期，无须逐键删除。

const (
	dayCachePrefix  = "timetable:day:"
	dataVersionKey  = "timetable:version"
	versionFetchTTL = 3 * time.Second
)

// DataVersion 返回当前数据版本号，不存在时视为 0
func (c *Client) DataVersion(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, versionFetchTTL)
	defer cancel()

	n, err := c.rdb.Get(ctx, dataVersionKey).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return n, err
}

// BumpDataVersion 递增数据版本号，使所有旧日期缓存失效
func (c *Client) BumpDataVersion(ctx context.Context) error {
	return c.rdb.Incr(ctx, dataVersionKey).Err()
}

// GetDaySchedule 读取指定版本、指定日期的课表缓存（JSON 字节）
// 未命中返回 (nil, nil)
func (c *Client) GetDaySchedule(ctx context.Context, version int64, date string) ([]byte, error) {
	key := fmt.Sprintf("%s%d:%s", dayCachePrefix, version, date)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetDaySchedule 写入指定版本、指定日期的课表缓存
func (c *Client) SetDaySchedule(ctx context.Context, version int64, date string, data []byte, ttl time.Duration) error {
	key := fmt.Sprintf("%s%d:%s", dayCachePrefix, version, date)
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
