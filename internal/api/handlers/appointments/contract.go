package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/appointments"
)

type AppointmentService interface {
	Create(ctx context.Context, a *domain.Appointment, opts appointments.SaveOptions) (*appointments.SaveResult, error)
	Update(ctx context.Context, a *domain.Appointment, opts appointments.SaveOptions) (*appointments.SaveResult, error)
	Get(ctx context.Context, name string) (*appointments.Details, error)
	Delete(ctx context.Context, name string, opts appointments.SaveOptions) error
	Submit(ctx context.Context, name string, opts appointments.SaveOptions) (*appointments.SaveResult, error)
	Cancel(ctx context.Context, name string, opts appointments.SaveOptions) (*domain.Appointment, error)
	UpdateAfterSubmit(ctx context.Context, name string, changes appointments.AfterSubmitChanges, opts appointments.SaveOptions) (*appointments.SaveResult, error)
	UpdateStatus(ctx context.Context, name string, status domain.AppointmentStatus, opts appointments.SaveOptions) (*domain.Appointment, error)
	Reschedule(ctx context.Context, name string) (*domain.Appointment, error)
	Events(ctx context.Context, start, end time.Time) ([]domain.AppointmentEvent, error)
	SalesPersonQuery(ctx context.Context, appointmentType string, q domain.SalesPersonQuery) ([]domain.SalesPersonOption, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
