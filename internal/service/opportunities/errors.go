package opportunities

import "errors"

var (
	// ErrOpportunityNotFound возвращается, когда возможность не найдена
	ErrOpportunityNotFound = errors.New("opportunity not found")

	// ErrLeadNotFound возвращается, когда лид возможности не найден
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
