package make_opportunity_from_lead_form

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrRateLimited возвращается при превышении числа отправок формы
	ErrRateLimited = errors.New("too many requests")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("usecase: internal error")
)
