package statussync

import "errors"

var (
	// ErrLeadNotFound возвращается, когда лид не найден
	ErrLeadNotFound = errors.New("lead not found")

	// ErrOpportunityNotFound возвращается, когда возможность не найдена
	ErrOpportunityNotFound = errors.New("opportunity not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
