package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ключи глобальных значений
const (
	KeyReminderLastSentDate = "appointment_reminder_notification_last_sent_date"
)

const dateLayout = "2006-01-02"

var (
	// ErrBackend возвращается при ошибке redis
	ErrBackend = errors.New("kv: backend error")

	// ErrCorruptValue возвращается, если значение не удалось разобрать
	ErrCorruptValue = errors.New("kv: corrupt value")
)

// Store глобальные значения сервиса в redis
type Store struct {
	client redis.Cmdable
	prefix string
}

// New создает хранилище, ключи получают префикс prefix
func New(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// GetDate читает дату по ключу, nil если значение не задано
func (s *Store) GetDate(ctx context.Context, key string) (*time.Time, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDate - get %s: %v", ErrBackend, key, err)
	}

	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDate - %s=%q: %v", ErrCorruptValue, key, value, err)
	}
	return &date, nil
}

// SetDate сохраняет дату по ключу без срока жизни
func (s *Store) SetDate(ctx context.Context, key string, date time.Time) error {
	if err := s.client.Set(ctx, s.prefix+key, date.Format(dateLayout), 0).Err(); err != nil {
		return fmt.Errorf("%w: SetDate - set %s: %v", ErrBackend, key, err)
	}
	return nil
}

// Delete удаляет значение
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("%w: Delete - del %s: %v", ErrBackend, key, err)
	}
	return nil
}
