package territory

import "errors"

var (
	// ErrTerritoryNotFound возвращается, когда территория не найдена
	ErrTerritoryNotFound = errors.New("territory.repository: territory not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("territory.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("territory.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("territory.repository: failed to scan row")

	// ErrDuplicateTerritory возвращается при попытке создать территорию с существующим именем
	ErrDuplicateTerritory = errors.New("territory.repository: duplicate territory")

	// ErrLinked возвращается, если на территорию ссылаются другие записи
	ErrLinked = errors.New("territory.repository: territory is linked")
)
