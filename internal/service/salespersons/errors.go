package salespersons

import "errors"

var (
	// ErrSalesPersonNotFound возвращается, когда продавец не найден
	ErrSalesPersonNotFound = errors.New("sales person not found")

	// ErrSalesPersonAlreadyExists возвращается при попытке создать продавца с существующим именем
	ErrSalesPersonAlreadyExists = errors.New("sales person already exists")

	// ErrHasChildren возвращается при удалении узла, у которого есть потомки
	ErrHasChildren = errors.New("sales person has children")

	// ErrLinked возвращается при удалении продавца, на которого ссылаются другие записи
	ErrLinked = errors.New("sales person is linked with other records")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
