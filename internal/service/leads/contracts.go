package leads

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// LeadRepository интерфейс репозитория лидов
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead) error
	GetByName(ctx context.Context, name string) (*domain.Lead, error)
	FindByEmail(ctx context.Context, email string) (*domain.Lead, error)
	FindByMobile(ctx context.Context, mobile string) (*domain.Lead, error)
	FindByPhoneSuffix(ctx context.Context, number string) (*domain.Lead, error)
	DuplicateEmails(ctx context.Context, email, exclude string) ([]string, error)
	Search(ctx context.Context, txt string, start, pageLen int) ([]domain.LeadSearchResult, error)
	Delete(ctx context.Context, name string) error
}

// StatusSync пересчёт статусов по связанным возможностям
type StatusSync interface {
	LeadFacts(ctx context.Context, lead string) (domain.LeadStatusFacts, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
