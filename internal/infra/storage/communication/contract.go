package communication

import (
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
