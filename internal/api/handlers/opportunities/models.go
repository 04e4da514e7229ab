package opportunities

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	"github.com/m04kA/SMC-CRM/internal/service/opportunities"
)

// DetailsResponse возможность с данными карточки
type DetailsResponse struct {
	*dto.OpportunityResponse
	CanNotify          map[string]bool                 `json:"canNotify"`
	NotificationCounts []dto.NotificationCountResponse `json:"notificationCounts"`
}

// FromDetails конвертирует карточку возможности в DTO
func FromDetails(d *opportunities.Details) *DetailsResponse {
	return &DetailsResponse{
		OpportunityResponse: dto.OpportunityFromDomain(d.Opportunity),
		CanNotify:           dto.CanNotifyFromDomain(d.CanNotify),
		NotificationCounts:  dto.NotificationCountsFromDomain(d.NotificationCounts),
	}
}

// SetLostRequest отметка о потере
type SetLostRequest struct {
	IsLost         bool     `json:"isLost"`
	LostReasons    []string `json:"lostReasons"`
	DetailedReason string   `json:"detailedReason"`
}

// SetMultipleStatusRequest статус для нескольких возможностей
type SetMultipleStatusRequest struct {
	Names  []string `json:"names"`
	Status string   `json:"status"`
}

// ScheduleFollowUpRequest новый follow up
type ScheduleFollowUpRequest struct {
	Date      string `json:"date"`
	ToDiscuss string `json:"toDiscuss"`
}

// SubmitCommunicationRequest коммуникация с клиентом
type SubmitCommunicationRequest struct {
	ContactDate    string `json:"contactDate"` // пусто - текущее время
	Remarks        string `json:"remarks"`
	UpdateFollowUp bool   `json:"updateFollowUp"`
}

// SubmitWithActionRequest коммуникация с последующим действием
type SubmitWithActionRequest struct {
	Remarks      string   `json:"remarks"`
	Action       string   `json:"action"`
	FollowUpDate string   `json:"followUpDate"`
	LostReasons  []string `json:"lostReasons"`
}

// SubmitWithActionResponse результат действия
type SubmitWithActionResponse struct {
	Opportunity string                   `json:"opportunity"`
	Appointment *dto.AppointmentResponse `json:"appointment,omitempty"`
}

// FollowUpEventsResponse follow up за период
type FollowUpEventsResponse struct {
	Events []dto.FollowUpEventResponse `json:"events"`
}
