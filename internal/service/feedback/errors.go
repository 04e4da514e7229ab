package feedback

import "errors"

var (
	// ErrFeedbackNotFound возвращается, когда отзыв не найден
	ErrFeedbackNotFound = errors.New("customer feedback not found")

	// ErrReferenceNotFound возвращается, когда документ-основание не существует
	ErrReferenceNotFound = errors.New("reference document not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
