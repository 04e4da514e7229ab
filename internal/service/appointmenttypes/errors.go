package appointmenttypes

import "errors"

var (
	// ErrAppointmentTypeNotFound возвращается, когда тип встречи не найден
	ErrAppointmentTypeNotFound = errors.New("appointment type not found")

	// ErrAppointmentTypeAlreadyExists возвращается при попытке создать тип с существующим именем
	ErrAppointmentTypeAlreadyExists = errors.New("appointment type already exists")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
