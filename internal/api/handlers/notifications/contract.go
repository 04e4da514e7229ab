package notifications

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
)

type NotificationService interface {
	Enqueue(ctx context.Context, req notifications.Request) (*domain.Notification, error)
	Cancel(ctx context.Context, doctype, name string, notificationType domain.NotificationType) (int64, error)
	Counts(ctx context.Context, doctype, name string) ([]domain.NotificationCount, error)
	ListByReference(ctx context.Context, doctype, name string) ([]domain.Notification, error)
	ListQueued(ctx context.Context, limit uint64) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
