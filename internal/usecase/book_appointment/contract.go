package book_appointment

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/appointments"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
)

// LeadService интерфейс сервиса лидов
type LeadService interface {
	Create(ctx context.Context, lead *domain.Lead, opts leads.SaveOptions) (*domain.Lead, error)
}

// AppointmentService интерфейс сервиса встреч
type AppointmentService interface {
	Create(ctx context.Context, a *domain.Appointment, opts appointments.SaveOptions) (*appointments.SaveResult, error)
	Submit(ctx context.Context, name string, opts appointments.SaveOptions) (*appointments.SaveResult, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
