package get_appointment_timeslots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// AppointmentRepository интерфейс репозитория встреч
type AppointmentRepository interface {
	// CountInSlot количество подтверждённых встреч, пересекающихся с интервалом
	CountInSlot(ctx context.Context, start, end time.Time, filter domain.SlotFilter) (int, error)
}

// AppointmentTypeRepository интерфейс репозитория типов встреч
type AppointmentTypeRepository interface {
	GetByName(ctx context.Context, name string) (*domain.AppointmentType, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
