package opportunities

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
)

// OpportunityRepository интерфейс репозитория возможностей
type OpportunityRepository interface {
	Create(ctx context.Context, opp *domain.Opportunity) (*domain.Opportunity, error)
	Update(ctx context.Context, opp *domain.Opportunity) error
	GetByName(ctx context.Context, name string) (*domain.Opportunity, error)
	Delete(ctx context.Context, name string) error
	ListStaleForAutoLost(ctx context.Context, modifiedBefore time.Time) ([]string, error)
	FollowUpEvents(ctx context.Context, start, end time.Time) ([]domain.OpportunityFollowUpEvent, error)
}

// LeadRepository интерфейс репозитория лидов
type LeadRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Lead, error)
}

// SalesPersonRepository интерфейс репозитория продавцов
type SalesPersonRepository interface {
	GetByName(ctx context.Context, name string) (*domain.SalesPerson, error)
	FindByUser(ctx context.Context, userID string) (string, error)
}

// MastersRepository справочники
type MastersRepository interface {
	GetOpportunityType(ctx context.Context, name string) (*domain.OpportunityType, error)
}

// CommunicationRepository интерфейс репозитория коммуникаций
type CommunicationRepository interface {
	Create(ctx context.Context, c *domain.Communication) (*domain.Communication, error)
}

// StatusSync пересчёт статусов возможности и лида
type StatusSync interface {
	OpportunityFacts(ctx context.Context, name string) (domain.OpportunityStatusFacts, error)
	RefreshOpportunity(ctx context.Context, name string, explicit domain.OpportunityStatus) (*domain.Opportunity, error)
	RefreshOpportunityParty(ctx context.Context, opp *domain.Opportunity) error
	ResetOpportunityParty(ctx context.Context, opp *domain.Opportunity, status domain.LeadStatus) error
}

// Notifier очередь уведомлений
type Notifier interface {
	EnqueueAutomated(ctx context.Context, req notifications.Request) (bool, error)
	Counts(ctx context.Context, doctype, name string) ([]domain.NotificationCount, error)
}

// AppointmentDrafter заполняет недостающие поля черновика встречи
type AppointmentDrafter interface {
	SetMissingValues(ctx context.Context, a *domain.Appointment) error
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
