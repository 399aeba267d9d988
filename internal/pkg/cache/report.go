package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/spa-payroll/internal/config"
	"github.com/redis/go-redis/v9"
)

const ReportCachePrefix = "payroll_report:"

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	slog.Info("Redis connected", "addr", cfg.Addr)

	return rdb, nil
}

// ReportCache stores serialized payroll reports keyed by employee and period.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func ReportKey(employeeID int64, period string) string {
	return fmt.Sprintf("%s%d:%s", ReportCachePrefix, employeeID, period)
}

// Get returns found=false on a cache miss.
func (c *ReportCache) Get(ctx context.Context, employeeID int64, period string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, ReportKey(employeeID, period)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return []byte(val), true, nil
}

func (c *ReportCache) Set(ctx context.Context, employeeID int64, period string, payload []byte) error {
	if err := c.rdb.Set(ctx, ReportKey(employeeID, period), string(payload), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *ReportCache) Invalidate(ctx context.Context, employeeID int64, period string) error {
	if err := c.rdb.Del(ctx, ReportKey(employeeID, period)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
