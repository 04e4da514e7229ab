package leads

import "errors"

var (
	// ErrLeadNotFound возвращается, когда лид не найден
	ErrLeadNotFound = errors.New("lead not found")

	// ErrDuplicateEmail возвращается, когда email уже используется другим лидом
	ErrDuplicateEmail = errors.New("lead email must be unique")

	// ErrLeadLinked возвращается при удалении лида, на который ссылаются возможности или встречи
	ErrLeadLinked = errors.New("lead is linked with other records")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
