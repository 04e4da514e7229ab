package notifications

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// NotificationRepository интерфейс репозитория уведомлений
type NotificationRepository interface {
	Enqueue(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListQueued(ctx context.Context, now time.Time, limit uint64) ([]domain.Notification, error)
	ListByReference(ctx context.Context, doctype, name string) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	CancelQueued(ctx context.Context, doctype, name string, notificationType domain.NotificationType) (int64, error)
	Counts(ctx context.Context, doctype, name string) ([]domain.NotificationCount, error)
}

// Metrics счётчик поставленных в очередь уведомлений
type Metrics interface {
	ObserveNotification(notificationType string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
