package make_opportunity_from_lead_form

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
	"github.com/m04kA/SMC-CRM/internal/service/opportunities"
	"github.com/m04kA/SMC-CRM/pkg/ratelimit"
)

// RateLimiter ограничение числа отправок формы с одного адреса
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*ratelimit.Info, error)
}

// LeadRepository поиск лида по email отправителя
type LeadRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Lead, error)
}

// LeadService интерфейс сервиса лидов
type LeadService interface {
	Create(ctx context.Context, lead *domain.Lead, opts leads.SaveOptions) (*domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead, opts leads.SaveOptions) (*domain.Lead, error)
}

// OpportunityService интерфейс сервиса возможностей
type OpportunityService interface {
	Create(ctx context.Context, opp *domain.Opportunity, opts opportunities.SaveOptions) (*domain.Opportunity, error)
}

// CommunicationRepository интерфейс репозитория коммуникаций
type CommunicationRepository interface {
	Create(ctx context.Context, c *domain.Communication) (*domain.Communication, error)
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
