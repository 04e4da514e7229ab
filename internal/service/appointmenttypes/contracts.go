package appointmenttypes

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// AppointmentTypeRepository интерфейс репозитория типов встреч
type AppointmentTypeRepository interface {
	Create(ctx context.Context, t *domain.AppointmentType) (*domain.AppointmentType, error)
	Update(ctx context.Context, t *domain.AppointmentType) error
	GetByName(ctx context.Context, name string) (*domain.AppointmentType, error)
	ListNames(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// SalesPersonRepository интерфейс репозитория продавцов
type SalesPersonRepository interface {
	GetByName(ctx context.Context, name string) (*domain.SalesPerson, error)
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
