package dto

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
)

// NotificationCountResponse счётчик уведомлений документа
type NotificationCountResponse struct {
	NotificationType string `json:"notificationType"`
	Medium           string `json:"medium"`
	Count            int    `json:"count"`
	LastScheduledDt  string `json:"lastScheduledDt,omitempty"`
	LastSentDt       string `json:"lastSentDt,omitempty"`
}

// NotificationCountsFromDomain конвертирует счётчики в DTO
func NotificationCountsFromDomain(counts []domain.NotificationCount) []NotificationCountResponse {
	out := make([]NotificationCountResponse, len(counts))
	for i, c := range counts {
		out[i] = NotificationCountResponse{
			NotificationType: string(c.NotificationType),
			Medium:           c.Medium,
			Count:            c.Count,
			LastScheduledDt:  handlers.FormatDateTime(c.LastScheduledDt),
			LastSentDt:       handlers.FormatDateTime(c.LastSentDt),
		}
	}
	return out
}

// CanNotifyFromDomain признаки доступности уведомлений с именами типов в качестве ключей
func CanNotifyFromDomain(canNotify map[domain.NotificationType]bool) map[string]bool {
	out := make(map[string]bool, len(canNotify))
	for t, ok := range canNotify {
		out[string(t)] = ok
	}
	return out
}

// NotificationResponse уведомление в очереди
type NotificationResponse struct {
	ID               int64  `json:"id"`
	ReferenceDoctype string `json:"referenceDoctype"`
	ReferenceName    string `json:"referenceName"`
	NotificationType string `json:"notificationType"`
	Medium           string `json:"medium"`
	Receiver         string `json:"receiver"`
	Party            string `json:"party"`
	Status           string `json:"status"`
	ScheduledAt      string `json:"scheduledAt"`
	SentAt           string `json:"sentAt,omitempty"`
	Error            string `json:"error,omitempty"`
}

// NotificationsFromDomain конвертирует уведомления в DTO
func NotificationsFromDomain(list []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(list))
	for i := range list {
		n := &list[i]
		out[i] = NotificationResponse{
			ID:               n.ID,
			ReferenceDoctype: n.ReferenceDoctype,
			ReferenceName:    n.ReferenceName,
			NotificationType: string(n.NotificationType),
			Medium:           n.Medium,
			Receiver:         n.Receiver,
			Party:            n.Party,
			Status:           string(n.Status),
			ScheduledAt:      handlers.FormatDateTime(&n.ScheduledAt),
			SentAt:           handlers.FormatDateTime(n.SentAt),
			Error:            n.Error,
		}
	}
	return out
}
