package notifications

import "github.com/m04kA/SMC-CRM/internal/domain"

// Request данные уведомления для постановки в очередь
type Request struct {
	ReferenceDoctype string
	ReferenceName    string
	NotificationType domain.NotificationType
	Receiver         string
	Party            string
}

// DefaultQueuedLimit размер выборки очереди по умолчанию
const DefaultQueuedLimit = 100
