// Package ratelimit 提供基于 Redis 的分布式限流
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Limiter 分布式限流器，基于 GCRA 算法
type Limiter struct {
	limiter *redis_rate.Limiter
	qps     int
	burst   int
}

// NewLimiter 创建限流器
func NewLimiter(client *redis.Client, qps, burst int) *Limiter {
	return &Limiter{
		limiter: redis_rate.NewLimiter(client),
		qps:     qps,
		burst:   burst,
	}
}

// Allow 判断 key 是否允许通过，返回是否允许与建议的重试等待秒数
func (l *Limiter) Allow(ctx context.Context, key string) (bool, float64, error) {
	limit := redis_rate.Limit{
		Rate:   l.qps,
		Burst:  l.burst,
		Period: time.Second,
	}
	res, err := l.limiter.Allow(ctx, fmt.Sprintf("ratelimit:%s", key), limit)
	if err != nil {
		return false, 0, err
	}
	if res.Allowed == 0 {
		return false, res.RetryAfter.Seconds(), nil
	}
	return true, 0, nil
}
