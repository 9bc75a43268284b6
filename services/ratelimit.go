// file: services/ratelimit.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 滑动窗口限速器。必须以服务形式注入（键：身份+动作），
// 不允许裸的包级全局 map。

type RateLimiter interface {
	// Allow 统计 identity 在 window 内已发生的 action 次数，
	// 达到 limit 时拒绝；放行时同时记录本次事件。
	Allow(ctx context.Context, identity, action string, limit int, window time.Duration) (bool, error)
}

// RedisLimiter 生产实现：ZSET 按时间戳存事件，先裁剪窗口外旧事件再计数。
// 多实例部署时计数依然一致。
type RedisLimiter struct {
	RDB *redis.Client
	Now func() time.Time
}

// 裁剪、计数、记录必须原子执行：同一身份的并发请求在 limit-1 处
// 各自先读后写会放行 limit+1 个事件，所以整段逻辑放进一个 Lua 脚本。
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{RDB: rdb, Now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, identity, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", identity, action)
	now := l.Now()
	cutoff := now.Add(-window).UnixMilli()

	res, err := slidingWindowScript.Run(ctx, l.RDB, []string{key},
		cutoff, limit, now.UnixMilli(), uuid.NewString(), window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

// MemoryLimiter 进程内实现，测试与降级运行用。并发安全。
type MemoryLimiter struct {
	mu        sync.Mutex
	events    map[string][]time.Time
	Now       func() time.Time
	lastSweep time.Time
	maxWindow time.Duration
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{events: make(map[string][]time.Time), Now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, identity, action string, limit int, window time.Duration) (bool, error) {
	key := identity + ":" + action
	now := l.Now()
	cutoff := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if window > l.maxWindow {
		l.maxWindow = window
	}
	l.sweep(now)

	kept := l.events[key][:0]
	for _, at := range l.events[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= limit {
		l.events[key] = kept
		return false, nil
	}
	l.events[key] = append(kept, now)
	return true, nil
}

// sweep 每隔一个最大窗口清理所有事件都已过期的身份，
// 否则按 IP 限流时 map 会随不同来源无限增长。调用方持锁。
func (l *MemoryLimiter) sweep(now time.Time) {
	if l.lastSweep.IsZero() {
		l.lastSweep = now
		return
	}
	if now.Sub(l.lastSweep) < l.maxWindow {
		return
	}
	l.lastSweep = now
	horizon := now.Add(-l.maxWindow)
	for key, events := range l.events {
		if len(events) == 0 || !events[len(events)-1].After(horizon) {
			delete(l.events, key)
		}
	}
}
