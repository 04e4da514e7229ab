package get_appointment_timeslots

import "errors"

var (
	// ErrAppointmentTypeNotFound возвращается, когда тип встречи не найден
	ErrAppointmentTypeNotFound = errors.New("appointment type not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
