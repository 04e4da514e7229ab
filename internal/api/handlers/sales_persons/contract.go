package sales_persons

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

type SalesPersonService interface {
	Create(ctx context.Context, sp *domain.SalesPerson) (*domain.SalesPerson, error)
	Update(ctx context.Context, sp *domain.SalesPerson) (*domain.SalesPerson, error)
	Get(ctx context.Context, name string) (*domain.SalesPerson, error)
	List(ctx context.Context, parent string) ([]domain.SalesPerson, error)
	Delete(ctx context.Context, name string) error
	Subtree(ctx context.Context, name string) ([]string, error)
	FromUser(ctx context.Context, user string) (string, error)
	Timeline(ctx context.Context, name string) ([]domain.TimelinePoint, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
