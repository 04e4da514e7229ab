package get_appointment_timeslots

import (
	"context"

	getTimeslots "github.com/m04kA/SMC-CRM/internal/usecase/get_appointment_timeslots"
)

type GetAppointmentTimeslotsUseCase interface {
	Execute(ctx context.Context, req *getTimeslots.Request) (*getTimeslots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
