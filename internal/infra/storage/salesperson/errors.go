package salesperson

import "errors"

var (
	// ErrSalesPersonNotFound возвращается, когда продавец не найден
	ErrSalesPersonNotFound = errors.New("salesperson.repository: sales person not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("salesperson.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("salesperson.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("salesperson.repository: failed to scan row")

	// ErrDuplicateSalesPerson возвращается при попытке создать продавца с существующим именем
	ErrDuplicateSalesPerson = errors.New("salesperson.repository: duplicate sales person")

	// ErrLinked возвращается, если на продавца ссылаются другие записи
	ErrLinked = errors.New("salesperson.repository: sales person is linked")
)
