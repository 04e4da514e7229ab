package masters

import (
	"github.com/m04kA/SMC-CRM/pkg/dbmetrics"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Справочники, состоящие только из имени
const (
	TableLeadSources    = "lead_sources"
	TableMarketSegments = "market_segments"
	TableSalesStages    = "sales_stages"
	TableIndustryTypes  = "industry_types"
)
