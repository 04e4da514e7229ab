package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	bookAppointment "github.com/m04kA/SMC-CRM/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

// BookAppointmentRequest HTTP request model
type BookAppointmentRequest struct {
	PartyName     string `json:"partyName,omitempty"` // лид; пусто - лид создаётся по контактам
	CustomerName  string `json:"customerName,omitempty"`
	ContactMobile string `json:"contactMobile,omitempty"`
	ContactEmail  string `json:"contactEmail,omitempty"`
	Description   string `json:"description,omitempty"`

	AppointmentType   string `json:"appointmentType"`
	Date              string `json:"date"`      // "2026-10-20"
	StartTime         string `json:"startTime"` // "10:00"
	SalesPerson       string `json:"salesPerson,omitempty"`
	Opportunity       string `json:"opportunity,omitempty"`
	AppointmentSource string `json:"appointmentSource,omitempty"`
	Remarks           string `json:"remarks,omitempty"`
}

// BookAppointmentResponse HTTP response model
type BookAppointmentResponse struct {
	Appointment *dto.AppointmentResponse `json:"appointment"`
	LeadCreated bool                     `json:"leadCreated"`
	Warnings    []string                 `json:"warnings"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookAppointmentRequest) ToUseCaseRequest(loc *time.Location, user string) (*bookAppointment.Request, error) {
	date, err := handlers.ParseDate(r.Date, loc)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	req := &bookAppointment.Request{
		PartyName:         r.PartyName,
		CustomerName:      r.CustomerName,
		ContactMobile:     r.ContactMobile,
		ContactEmail:      r.ContactEmail,
		Description:       r.Description,
		AppointmentType:   r.AppointmentType,
		StartTime:         startTime,
		SalesPerson:       r.SalesPerson,
		Opportunity:       r.Opportunity,
		AppointmentSource: r.AppointmentSource,
		Remarks:           r.Remarks,
		User:              user,
	}
	if date != nil {
		req.Date = *date
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookAppointment.Response) *BookAppointmentResponse {
	warnings := []string(resp.Warnings)
	if warnings == nil {
		warnings = []string{}
	}
	return &BookAppointmentResponse{
		Appointment: dto.AppointmentFromDomain(resp.Appointment),
		LeadCreated: resp.LeadCreated,
		Warnings:    warnings,
	}
}
