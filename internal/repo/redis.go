package repo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct{ C *redis.Client }

func NewRedis(addr string) *Redis {
	return &Redis{C: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Ping(ctx context.Context) error { return r.C.Ping(ctx).Err() }
func (r *Redis) Close() error                   { return r.C.Close() }

// RedisLimiter is a fixed-window counter shared by every replica.
type RedisLimiter struct {
	r      *Redis
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(r *Redis, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{r: r, limit: limit, window: window, prefix: "rl:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	n, err := l.r.C.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		// first hit opens the window
		if err := l.r.C.Expire(ctx, k, l.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(l.limit), nil
}
