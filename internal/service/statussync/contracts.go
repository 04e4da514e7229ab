package statussync

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// LeadRepository интерфейс репозитория лидов
type LeadRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Lead, error)
	UpdateStatus(ctx context.Context, name string, status domain.LeadStatus) error
}

// OpportunityRepository интерфейс репозитория возможностей
type OpportunityRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Opportunity, error)
	UpdateStatus(ctx context.Context, name string, status domain.OpportunityStatus) error
	PartyStatusFacts(ctx context.Context, partyType, partyName string) (domain.LeadStatusFacts, error)
}

// AppointmentRepository интерфейс репозитория встреч
type AppointmentRepository interface {
	ExistsSubmittedForOpportunity(ctx context.Context, opportunity string) (bool, error)
}

// CommunicationRepository интерфейс репозитория коммуникаций
type CommunicationRepository interface {
	HasNonAutomated(ctx context.Context, doctype, name string) (bool, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
