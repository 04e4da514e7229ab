package book_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrSlotInPast возвращается при записи на уже прошедшее время
	ErrSlotInPast = errors.New("time slot is in the past")
)
