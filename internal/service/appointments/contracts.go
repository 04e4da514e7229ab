package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
)

// AppointmentRepository интерфейс репозитория встреч
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) error
	UpdateStatus(ctx context.Context, a *domain.Appointment) error
	GetByName(ctx context.Context, name string) (*domain.Appointment, error)
	Delete(ctx context.Context, name string) error
	GetInSlot(ctx context.Context, start, end time.Time, filter domain.SlotFilter) ([]domain.SlotAppointment, error)
	CountInSlot(ctx context.Context, start, end time.Time, filter domain.SlotFilter) (int, error)
	HasRescheduled(ctx context.Context, name string) (bool, error)
	MarkMissed(ctx context.Context, days int, today time.Time) (int64, error)
	ListForReminder(ctx context.Context, q domain.ReminderQuery) ([]string, error)
	Events(ctx context.Context, start, end time.Time) ([]domain.AppointmentEvent, error)
}

// AppointmentTypeRepository интерфейс репозитория типов встреч
type AppointmentTypeRepository interface {
	GetByName(ctx context.Context, name string) (*domain.AppointmentType, error)
}

// LeadRepository интерфейс репозитория лидов
type LeadRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Lead, error)
}

// MastersRepository справочники
type MastersRepository interface {
	GetAppointmentSource(ctx context.Context, name string) (*domain.AppointmentSource, error)
}

// SalesPersonRepository интерфейс репозитория продавцов
type SalesPersonRepository interface {
	SearchWithAvailability(ctx context.Context, q domain.SalesPersonQuery) ([]domain.SalesPersonOption, error)
}

// EventRepository интерфейс репозитория событий календаря
type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
	UpdateTimes(ctx context.Context, name string, startsOn time.Time, endsOn *time.Time) error
}

// StatusSync пересчёт статуса возможности
type StatusSync interface {
	RefreshOpportunity(ctx context.Context, name string, explicit domain.OpportunityStatus) (*domain.Opportunity, error)
}

// Notifier очередь уведомлений
type Notifier interface {
	AutomatedEnabled(notificationType domain.NotificationType) bool
	EnqueueAutomated(ctx context.Context, req notifications.Request) (bool, error)
	Counts(ctx context.Context, doctype, name string) ([]domain.NotificationCount, error)
}

// TimeslotsProvider слоты типа встречи на дату
type TimeslotsProvider interface {
	Timeslots(ctx context.Context, date time.Time, appointmentType, exclude string) (*domain.TimeslotsResult, error)
}

// KVStore глобальные значения
type KVStore interface {
	GetDate(ctx context.Context, key string) (*time.Time, error)
	SetDate(ctx context.Context, key string, date time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
