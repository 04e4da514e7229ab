package notifications

import "github.com/m04kA/SMC-CRM/internal/api/handlers/dto"

// EnqueueRequest уведомление для постановки в очередь
type EnqueueRequest struct {
	ReferenceDoctype string `json:"referenceDoctype"`
	ReferenceName    string `json:"referenceName"`
	NotificationType string `json:"notificationType"`
	Receiver         string `json:"receiver"`
	Party            string `json:"party"`
}

// MarkFailedRequest причина ошибки отправки
type MarkFailedRequest struct {
	Reason string `json:"reason"`
}

// ListResponse список уведомлений
type ListResponse struct {
	Notifications []dto.NotificationResponse `json:"notifications"`
}

// CountsResponse счётчики уведомлений документа
type CountsResponse struct {
	Counts []dto.NotificationCountResponse `json:"counts"`
}

// CancelResponse количество отменённых уведомлений
type CancelResponse struct {
	Cancelled int64 `json:"cancelled"`
}
