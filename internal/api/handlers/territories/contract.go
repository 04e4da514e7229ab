package territories

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

type TerritoryService interface {
	Create(ctx context.Context, t *domain.Territory) (*domain.Territory, error)
	Update(ctx context.Context, t *domain.Territory) (*domain.Territory, error)
	Get(ctx context.Context, name string) (*domain.Territory, error)
	List(ctx context.Context, parent string) ([]domain.Territory, error)
	Delete(ctx context.Context, name string) error
	Subtree(ctx context.Context, name string) ([]string, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
