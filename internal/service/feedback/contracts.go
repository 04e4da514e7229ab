package feedback

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// FeedbackRepository интерфейс репозитория отзывов
type FeedbackRepository interface {
	Create(ctx context.Context, f *domain.CustomerFeedback) (*domain.CustomerFeedback, error)
	Update(ctx context.Context, f *domain.CustomerFeedback) error
	GetByName(ctx context.Context, name string) (*domain.CustomerFeedback, error)
	GetByReference(ctx context.Context, doctype, name string) (*domain.CustomerFeedback, error)
}

// CommunicationRepository интерфейс репозитория коммуникаций
type CommunicationRepository interface {
	Create(ctx context.Context, c *domain.Communication) (*domain.Communication, error)
}

// LeadRepository интерфейс репозитория лидов
type LeadRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Lead, error)
}

// OpportunityRepository интерфейс репозитория возможностей
type OpportunityRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Opportunity, error)
}

// AppointmentRepository интерфейс репозитория встреч
type AppointmentRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Appointment, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
