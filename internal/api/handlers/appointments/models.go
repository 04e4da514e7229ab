package appointments

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	"github.com/m04kA/SMC-CRM/internal/service/appointments"
)

// SaveResponse встреча и предупреждения проверки
type SaveResponse struct {
	*dto.AppointmentResponse
	Warnings []string `json:"warnings"`
}

func fromSaveResult(res *appointments.SaveResult) *SaveResponse {
	warnings := []string(res.Warnings)
	if warnings == nil {
		warnings = []string{}
	}
	return &SaveResponse{
		AppointmentResponse: dto.AppointmentFromDomain(res.Appointment),
		Warnings:            warnings,
	}
}

// DetailsResponse встреча с данными карточки
type DetailsResponse struct {
	*dto.AppointmentResponse
	CanNotify          map[string]bool                 `json:"canNotify"`
	NotificationCounts []dto.NotificationCountResponse `json:"notificationCounts"`
	Holiday            string                          `json:"holiday,omitempty"`
	Timeslots          []dto.TimeslotResponse          `json:"timeslots,omitempty"`
	ScheduledReminder  string                          `json:"scheduledReminder,omitempty"`
}

func fromDetails(d *appointments.Details) *DetailsResponse {
	resp := &DetailsResponse{
		AppointmentResponse: dto.AppointmentFromDomain(d.Appointment),
		CanNotify:           dto.CanNotifyFromDomain(d.CanNotify),
		NotificationCounts:  dto.NotificationCountsFromDomain(d.NotificationCounts),
		ScheduledReminder:   handlers.FormatDateTime(d.ScheduledReminder),
	}
	if d.Timeslots != nil {
		resp.Holiday = d.Timeslots.Holiday
		resp.Timeslots = dto.TimeslotsFromDomain(d.Timeslots.Timeslots)
	}
	return resp
}

// AfterSubmitRequest изменения подтверждённой встречи, отсутствующее поле не меняется
type AfterSubmitRequest struct {
	SalesPerson            *string `json:"salesPerson"`
	ContactMobile          *string `json:"contactMobile"`
	SecondaryContactMobile *string `json:"secondaryContactMobile"`
	Remarks                *string `json:"remarks"`
	VoiceOfCustomer        *string `json:"voiceOfCustomer"`
	Description            *string `json:"description"`
}

// UpdateStatusRequest ручная смена статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// EventResponse встреча в календаре
type EventResponse struct {
	Name         string `json:"name"`
	CustomerName string `json:"customerName"`
	Status       string `json:"status"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

// EventsResponse встречи за период
type EventsResponse struct {
	Events []EventResponse `json:"events"`
}

// SalesPersonOptionResponse продавец с доступностью на слот
type SalesPersonOptionResponse struct {
	Name         string `json:"name"`
	Availability string `json:"availability,omitempty"`
}

// SalesPersonsResponse продавцы для выбора во встрече
type SalesPersonsResponse struct {
	Results []SalesPersonOptionResponse `json:"results"`
}
