package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidConfig возвращается при некорректной конфигурации лимитера
	ErrInvalidConfig = errors.New("ratelimit: invalid config")

	// ErrBackend возвращается при ошибке redis
	ErrBackend = errors.New("ratelimit: backend error")
)

// slidingWindow атомарно чистит устаревшие записи, считает текущие и добавляет новую
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('EXPIRE', key, window)
	return {1, current + 1}
end
return {0, current}
`)

// Info результат проверки лимита
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

// Config параметры лимитера
type Config struct {
	Limit  int
	Window time.Duration
	Prefix string
}

// Limiter скользящее окно на sorted set в redis
type Limiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
	seq    func() string
}

// New создает лимитер
func New(client redis.Cmdable, cfg Config) (*Limiter, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrInvalidConfig)
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be greater than 0", ErrInvalidConfig)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("%w: window must be greater than 0", ErrInvalidConfig)
	}

	l := &Limiter{
		client: client,
		limit:  cfg.Limit,
		window: cfg.Window,
		prefix: cfg.Prefix,
		now:    time.Now,
	}
	l.seq = uuid.NewString
	return l, nil
}

// Allow регистрирует попытку для key и сообщает, разрешена ли она
func (l *Limiter) Allow(ctx context.Context, key string) (*Info, error) {
	now := l.now()
	windowStart := now.Add(-l.window)

	res, err := slidingWindow.Run(ctx, l.client, []string{l.prefix + key},
		now.UnixNano(),
		windowStart.UnixNano(),
		l.limit,
		int(l.window.Seconds()),
		l.seq(),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: Allow - run script: %v", ErrBackend, err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("%w: Allow - unexpected script result %v", ErrBackend, res)
	}
	allowed, ok1 := values[0].(int64)
	count, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: Allow - unexpected script result %v", ErrBackend, res)
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Info{
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   now.Add(l.window),
		Allowed:   allowed == 1,
	}, nil
}

// Reset удаляет историю попыток для key
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: Reset: %v", ErrBackend, err)
	}
	return nil
}
