package appointment_types

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/service/appointmenttypes/models"
)

type AppointmentTypeService interface {
	Create(ctx context.Context, req *models.CreateAppointmentTypeRequest) (*models.AppointmentTypeResponse, error)
	Get(ctx context.Context, name string) (*models.AppointmentTypeResponse, error)
	List(ctx context.Context) (*models.AppointmentTypeListResponse, error)
	Update(ctx context.Context, name string, req *models.UpdateAppointmentTypeRequest) (*models.AppointmentTypeResponse, error)
	Delete(ctx context.Context, name string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
