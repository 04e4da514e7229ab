package setup

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
)

// DBExecutor выполнение запросов вне и внутри транзакции
type DBExecutor = dbmetrics.DBExecutor

// MastersRepository интерфейс репозитория справочников
type MastersRepository interface {
	EnsureName(ctx context.Context, table, name string) (bool, error)
	EnsureLeadSource(ctx context.Context, s domain.LeadSource) (bool, error)
}

// TerritoryRepository корень дерева территорий
type TerritoryRepository interface {
	Roots(ctx context.Context) ([]string, error)
	Create(ctx context.Context, t *domain.Territory) (*domain.Territory, error)
}

// SalesPersonRepository корень дерева продавцов
type SalesPersonRepository interface {
	Roots(ctx context.Context) ([]string, error)
	Create(ctx context.Context, sp *domain.SalesPerson) (*domain.SalesPerson, error)
}

// LeadRepository массовая замена статусов лидов
type LeadRepository interface {
	RenameStatus(ctx context.Context, from, to string) (int64, error)
}

// FeedbackRepository массовое исправление стороны отзывов
type FeedbackRepository interface {
	SetFeedbackFromWhereEmpty(ctx context.Context, partyType string) (int64, error)
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
