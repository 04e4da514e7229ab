package opportunity

import "errors"

var (
	// ErrOpportunityNotFound возвращается, когда возможность не найдена
	ErrOpportunityNotFound = errors.New("opportunity.repository: opportunity not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("opportunity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("opportunity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("opportunity.repository: failed to scan row")
)
