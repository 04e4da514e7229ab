package salespersons

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// SalesPersonRepository интерфейс репозитория продавцов
type SalesPersonRepository interface {
	Create(ctx context.Context, sp *domain.SalesPerson) (*domain.SalesPerson, error)
	Update(ctx context.Context, sp *domain.SalesPerson) error
	GetByName(ctx context.Context, name string) (*domain.SalesPerson, error)
	List(ctx context.Context, parent string) ([]domain.SalesPerson, error)
	Delete(ctx context.Context, name string) error
	Roots(ctx context.Context) ([]string, error)
	CountChildren(ctx context.Context, name string) (int, error)
	Subtree(ctx context.Context, name string) ([]string, error)
	FindByUser(ctx context.Context, userID string) (string, error)
}

// OpportunityRepository интерфейс репозитория возможностей
type OpportunityRepository interface {
	CountByDateForSalesPerson(ctx context.Context, salesPerson string, since time.Time) ([]domain.TimelinePoint, error)
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
