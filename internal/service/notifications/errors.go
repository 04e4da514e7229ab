package notifications

import "errors"

var (
	// ErrNotificationNotFound возвращается, когда уведомление не найдено или уже обработано
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrNoReceiver возвращается, когда у документа нет номера получателя
	ErrNoReceiver = errors.New("notification receiver is missing")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
