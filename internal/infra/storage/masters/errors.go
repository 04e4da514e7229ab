package masters

import "errors"

var (
	// ErrNotFound возвращается, когда запись справочника не найдена
	ErrNotFound = errors.New("masters.repository: record not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("masters.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("masters.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("masters.repository: failed to scan row")

	// ErrUnknownTable возвращается для неизвестного справочника
	ErrUnknownTable = errors.New("masters.repository: unknown master table")
)
