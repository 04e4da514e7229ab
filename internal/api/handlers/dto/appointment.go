package dto

import (
	"time"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

// AppointmentRequest поля черновика встречи, которые задаёт пользователь
type AppointmentRequest struct {
	AppointmentType     string `json:"appointmentType"`
	AppointmentFor      string `json:"appointmentFor"`
	PartyName           string `json:"partyName"`
	ScheduledDt         string `json:"scheduledDt,omitempty"`   // RFC3339 или YYYY-MM-DD HH:MM:SS
	ScheduledDate       string `json:"scheduledDate,omitempty"` // используется вместе с scheduledTime
	ScheduledTime       string `json:"scheduledTime,omitempty"`
	AppointmentDuration int    `json:"appointmentDuration"`

	ContactMobile          string `json:"contactMobile"`
	ContactMobile2         string `json:"contactMobile2"`
	ContactPhone           string `json:"contactPhone"`
	SecondaryContactMobile string `json:"secondaryContactMobile"`

	SalesPerson         string `json:"salesPerson"`
	Opportunity         string `json:"opportunity"`
	PreviousAppointment string `json:"previousAppointment"`
	AppointmentSource   string `json:"appointmentSource"`

	Remarks         string `json:"remarks"`
	VoiceOfCustomer string `json:"voiceOfCustomer"`
	Description     string `json:"description"`

	AppliesToVehicle  string `json:"appliesToVehicle"`
	AppliesToSerialNo string `json:"appliesToSerialNo"`
}

// ApplyTo переносит поля запроса в встречу
func (r *AppointmentRequest) ApplyTo(a *domain.Appointment, loc *time.Location) error {
	scheduledDt, err := handlers.ParseDateTime(r.ScheduledDt, loc)
	if err != nil {
		return err
	}
	if scheduledDt == nil && r.ScheduledDate != "" {
		date, err := handlers.ParseDate(r.ScheduledDate, loc)
		if err != nil {
			return err
		}
		tm, err := types.NewTimeStringFromString(r.ScheduledTime)
		if err != nil {
			return err
		}
		dt := tm.On(*date)
		scheduledDt = &dt
	}

	a.AppointmentType = r.AppointmentType
	a.AppointmentFor = r.AppointmentFor
	a.PartyName = r.PartyName
	a.ScheduledDt = scheduledDt
	a.ScheduledDate = nil
	a.ScheduledTime = types.TimeString{}
	a.AppointmentDuration = r.AppointmentDuration
	a.ContactMobile = r.ContactMobile
	a.ContactMobile2 = r.ContactMobile2
	a.ContactPhone = r.ContactPhone
	a.SecondaryContactMobile = r.SecondaryContactMobile
	a.SalesPerson = r.SalesPerson
	a.Opportunity = r.Opportunity
	a.PreviousAppointment = r.PreviousAppointment
	a.AppointmentSource = r.AppointmentSource
	a.Remarks = r.Remarks
	a.VoiceOfCustomer = r.VoiceOfCustomer
	a.Description = r.Description
	a.AppliesToVehicle = r.AppliesToVehicle
	a.AppliesToSerialNo = r.AppliesToSerialNo
	return nil
}

// AppointmentResponse встреча
type AppointmentResponse struct {
	Name            string `json:"name,omitempty"`
	DocStatus       int    `json:"docstatus"`
	Status          string `json:"status"`
	AppointmentType string `json:"appointmentType"`
	AppointmentFor  string `json:"appointmentFor"`
	PartyName       string `json:"partyName"`
	CustomerName    string `json:"customerName"`

	TaxID          string `json:"taxId"`
	TaxCNIC        string `json:"taxCnic"`
	TaxSTRN        string `json:"taxStrn"`
	AddressDisplay string `json:"addressDisplay"`
	ContactDetailsResponse
	SecondaryContactDisplay string `json:"secondaryContactDisplay"`
	SecondaryContactMobile  string `json:"secondaryContactMobile"`

	ScheduledDt         string `json:"scheduledDt,omitempty"`
	EndDt               string `json:"endDt,omitempty"`
	ScheduledDate       string `json:"scheduledDate,omitempty"`
	ScheduledTime       string `json:"scheduledTime,omitempty"`
	ScheduledDayOfWeek  string `json:"scheduledDayOfWeek,omitempty"`
	AppointmentDuration int    `json:"appointmentDuration"`

	SalesPerson           string `json:"salesPerson"`
	Opportunity           string `json:"opportunity"`
	PreviousAppointment   string `json:"previousAppointment"`
	PreviousAppointmentDt string `json:"previousAppointmentDt,omitempty"`
	AmendedFrom           string `json:"amendedFrom,omitempty"`
	AppointmentSource     string `json:"appointmentSource"`

	IsClosed       bool   `json:"isClosed"`
	IsMissed       bool   `json:"isMissed"`
	IsCheckedIn    bool   `json:"isCheckedIn"`
	CheckInDt      string `json:"checkInDt,omitempty"`
	CheckInUser    string `json:"checkInUser,omitempty"`
	ConfirmationDt string `json:"confirmationDt,omitempty"`
	CalendarEvent  string `json:"calendarEvent,omitempty"`

	Remarks         string `json:"remarks"`
	VoiceOfCustomer string `json:"voiceOfCustomer"`
	Description     string `json:"description"`

	AppliesToVehicle  string `json:"appliesToVehicle"`
	AppliesToSerialNo string `json:"appliesToSerialNo"`

	Owner     string `json:"owner"`
	CreatedAt string `json:"createdAt,omitempty"`
	Modified  string `json:"modified,omitempty"`
}

// AppointmentFromDomain конвертирует встречу в DTO
func AppointmentFromDomain(a *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		Name:                    a.Name,
		DocStatus:               int(a.DocStatus),
		Status:                  string(a.Status),
		AppointmentType:         a.AppointmentType,
		AppointmentFor:          a.AppointmentFor,
		PartyName:               a.PartyName,
		CustomerName:            a.CustomerName,
		TaxID:                   a.TaxID,
		TaxCNIC:                 a.TaxCNIC,
		TaxSTRN:                 a.TaxSTRN,
		AddressDisplay:          a.AddressDisplay,
		ContactDetailsResponse:  ContactDetailsFromDomain(a.ContactDetails),
		SecondaryContactDisplay: a.SecondaryContactDisplay,
		SecondaryContactMobile:  a.SecondaryContactMobile,
		ScheduledDt:             handlers.FormatDateTime(a.ScheduledDt),
		EndDt:                   handlers.FormatDateTime(a.EndDt),
		ScheduledDate:           handlers.FormatDate(a.ScheduledDate),
		ScheduledDayOfWeek:      a.ScheduledDayOfWeek,
		AppointmentDuration:     a.AppointmentDuration,
		SalesPerson:             a.SalesPerson,
		Opportunity:             a.Opportunity,
		PreviousAppointment:     a.PreviousAppointment,
		PreviousAppointmentDt:   handlers.FormatDateTime(a.PreviousAppointmentDt),
		AmendedFrom:             a.AmendedFrom,
		AppointmentSource:       a.AppointmentSource,
		IsClosed:                a.IsClosed,
		IsMissed:                a.IsMissed,
		IsCheckedIn:             a.IsCheckedIn,
		CheckInDt:               handlers.FormatDateTime(a.CheckInDt),
		CheckInUser:             a.CheckInUser,
		ConfirmationDt:          handlers.FormatDateTime(a.ConfirmationDt),
		CalendarEvent:           a.CalendarEvent,
		Remarks:                 a.Remarks,
		VoiceOfCustomer:         a.VoiceOfCustomer,
		Description:             a.Description,
		AppliesToVehicle:        a.AppliesToVehicle,
		AppliesToSerialNo:       a.AppliesToSerialNo,
		Owner:                   a.Owner,
		CreatedAt:               handlers.FormatDateTime(&a.CreatedAt),
		Modified:                handlers.FormatDateTime(&a.Modified),
	}
	if !a.ScheduledTime.IsZero() {
		resp.ScheduledTime = a.ScheduledTime.String()
	}
	return resp
}

// TimeslotResponse слот с занятостью
type TimeslotResponse struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	NumberOfAgents int    `json:"numberOfAgents"`
	Booked         int    `json:"booked"`
	Available      int    `json:"available"`
}

// TimeslotsFromDomain конвертирует слоты в DTO, nil остаётся nil (у типа нет расписания)
func TimeslotsFromDomain(slots []domain.TimeslotAvailability) []TimeslotResponse {
	if slots == nil {
		return nil
	}
	out := make([]TimeslotResponse, len(slots))
	for i, s := range slots {
		out[i] = TimeslotResponse{
			Start:          s.Start.Format(time.RFC3339),
			End:            s.End.Format(time.RFC3339),
			NumberOfAgents: s.NumberOfAgents,
			Booked:         s.Booked,
			Available:      s.Available,
		}
	}
	return out
}
