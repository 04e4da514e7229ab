package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда встреча не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrLeadNotFound возвращается, когда лид встречи не найден
	ErrLeadNotFound = errors.New("lead not found")

	// ErrNotDraft возвращается при изменении или удалении подтверждённой встречи как черновика
	ErrNotDraft = errors.New("appointment is not a draft")

	// ErrNotSubmitted возвращается для операций, доступных только подтверждённой встрече
	ErrNotSubmitted = errors.New("appointment is not submitted")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
