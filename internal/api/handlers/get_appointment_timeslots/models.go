package get_appointment_timeslots

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	"github.com/m04kA/SMC-CRM/internal/domain"
	getTimeslots "github.com/m04kA/SMC-CRM/internal/usecase/get_appointment_timeslots"
)

// TimeslotsResponse HTTP response model
// Timeslots равен null, если у типа встречи нет расписания
type TimeslotsResponse struct {
	Date            string                 `json:"date"`
	AppointmentType string                 `json:"appointmentType"`
	Holiday         string                 `json:"holiday,omitempty"`
	Timeslots       []dto.TimeslotResponse `json:"timeslots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getTimeslots.Response) *TimeslotsResponse {
	return &TimeslotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		AppointmentType: resp.AppointmentType,
		Holiday:         resp.Holiday,
		Timeslots:       dto.TimeslotsFromDomain(resp.Timeslots),
	}
}
