package territories

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// TerritoryRepository интерфейс репозитория территорий
type TerritoryRepository interface {
	Create(ctx context.Context, t *domain.Territory) (*domain.Territory, error)
	Update(ctx context.Context, t *domain.Territory) error
	GetByName(ctx context.Context, name string) (*domain.Territory, error)
	List(ctx context.Context, parent string) ([]domain.Territory, error)
	Delete(ctx context.Context, name string) error
	Roots(ctx context.Context) ([]string, error)
	CountChildren(ctx context.Context, name string) (int, error)
	Subtree(ctx context.Context, name string) ([]string, error)
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
