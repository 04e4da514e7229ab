package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

// Request модели

// TimeslotRequest окно приёма в день недели
type TimeslotRequest struct {
	DayOfWeek string           `json:"dayOfWeek"` // Monday, Tuesday, ...
	FromTime  types.TimeString `json:"fromTime"`
	ToTime    types.TimeString `json:"toTime"`
}

// HolidayRequest выходной день типа встречи
type HolidayRequest struct {
	Date        string `json:"date"` // 2006-01-02
	Description string `json:"description"`
}

// CreateAppointmentTypeRequest запрос на создание типа встречи
type CreateAppointmentTypeRequest struct {
	Name                            string            `json:"name"`
	AppointmentDuration             int               `json:"appointmentDuration"` // минуты
	NumberOfAgents                  int               `json:"numberOfAgents"`      // 0 = без ограничений
	AdvanceBookingDays              int               `json:"advanceBookingDays"`  // 0 = без ограничений
	ValidatePastTimeslot            bool              `json:"validatePastTimeslot"`
	ValidateAvailability            bool              `json:"validateAvailability"`
	ValidateSalesPersonAvailability bool              `json:"validateSalesPersonAvailability"`
	SalesPersonMandatory            bool              `json:"salesPersonMandatory"`
	CreateCalendarEvent             bool              `json:"createCalendarEvent"`
	EmailReminders                  bool              `json:"emailReminders"`
	Timeslots                       []TimeslotRequest `json:"timeslots"`
	Holidays                        []HolidayRequest  `json:"holidays"`
	SalesPersons                    []string          `json:"salesPersons"`
}

// UpdateAppointmentTypeRequest запрос на обновление типа встречи
// Все поля опциональны - обновляются только переданные значения, списки заменяются целиком
type UpdateAppointmentTypeRequest struct {
	AppointmentDuration             *int               `json:"appointmentDuration,omitempty"`
	NumberOfAgents                  *int               `json:"numberOfAgents,omitempty"`
	AdvanceBookingDays              *int               `json:"advanceBookingDays,omitempty"`
	ValidatePastTimeslot            *bool              `json:"validatePastTimeslot,omitempty"`
	ValidateAvailability            *bool              `json:"validateAvailability,omitempty"`
	ValidateSalesPersonAvailability *bool              `json:"validateSalesPersonAvailability,omitempty"`
	SalesPersonMandatory            *bool              `json:"salesPersonMandatory,omitempty"`
	CreateCalendarEvent             *bool              `json:"createCalendarEvent,omitempty"`
	EmailReminders                  *bool              `json:"emailReminders,omitempty"`
	Timeslots                       *[]TimeslotRequest `json:"timeslots,omitempty"`
	Holidays                        *[]HolidayRequest  `json:"holidays,omitempty"`
	SalesPersons                    *[]string          `json:"salesPersons,omitempty"`
}

// Response модели

// TimeslotResponse окно приёма
type TimeslotResponse struct {
	DayOfWeek string           `json:"dayOfWeek"`
	FromTime  types.TimeString `json:"fromTime"`
	ToTime    types.TimeString `json:"toTime"`
}

// HolidayResponse выходной день
type HolidayResponse struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// AppointmentTypeResponse ответ с данными типа встречи
type AppointmentTypeResponse struct {
	Name                            string             `json:"name"`
	AppointmentDuration             int                `json:"appointmentDuration"`
	NumberOfAgents                  int                `json:"numberOfAgents"`
	AdvanceBookingDays              int                `json:"advanceBookingDays"`
	ValidatePastTimeslot            bool               `json:"validatePastTimeslot"`
	ValidateAvailability            bool               `json:"validateAvailability"`
	ValidateSalesPersonAvailability bool               `json:"validateSalesPersonAvailability"`
	SalesPersonMandatory            bool               `json:"salesPersonMandatory"`
	CreateCalendarEvent             bool               `json:"createCalendarEvent"`
	EmailReminders                  bool               `json:"emailReminders"`
	Timeslots                       []TimeslotResponse `json:"timeslots"`
	Holidays                        []HolidayResponse  `json:"holidays"`
	SalesPersons                    []string           `json:"salesPersons"`
	Modified                        time.Time          `json:"modified"`
}

// AppointmentTypeListResponse ответ со списком имён типов встреч
type AppointmentTypeListResponse struct {
	Names []string `json:"names"`
}

// Методы конвертации

// ToDomain конвертирует запрос в domain модель
func (r *CreateAppointmentTypeRequest) ToDomain() (*domain.AppointmentType, error) {
	timeslots, err := timeslotsToDomain(r.Timeslots)
	if err != nil {
		return nil, err
	}
	holidays, err := holidaysToDomain(r.Holidays)
	if err != nil {
		return nil, err
	}

	return &domain.AppointmentType{
		Name:                            r.Name,
		AppointmentDuration:             r.AppointmentDuration,
		NumberOfAgents:                  r.NumberOfAgents,
		AdvanceBookingDays:              r.AdvanceBookingDays,
		ValidatePastTimeslot:            r.ValidatePastTimeslot,
		ValidateAvailability:            r.ValidateAvailability,
		ValidateSalesPersonAvailability: r.ValidateSalesPersonAvailability,
		SalesPersonMandatory:            r.SalesPersonMandatory,
		CreateCalendarEvent:             r.CreateCalendarEvent,
		EmailReminders:                  r.EmailReminders,
		Timeslots:                       timeslots,
		Holidays:                        holidays,
		SalesPersons:                    r.SalesPersons,
	}, nil
}

// ApplyTo применяет переданные поля к типу встречи
func (r *UpdateAppointmentTypeRequest) ApplyTo(t *domain.AppointmentType) error {
	setInt(&t.AppointmentDuration, r.AppointmentDuration)
	setInt(&t.NumberOfAgents, r.NumberOfAgents)
	setInt(&t.AdvanceBookingDays, r.AdvanceBookingDays)
	setBool(&t.ValidatePastTimeslot, r.ValidatePastTimeslot)
	setBool(&t.ValidateAvailability, r.ValidateAvailability)
	setBool(&t.ValidateSalesPersonAvailability, r.ValidateSalesPersonAvailability)
	setBool(&t.SalesPersonMandatory, r.SalesPersonMandatory)
	setBool(&t.CreateCalendarEvent, r.CreateCalendarEvent)
	setBool(&t.EmailReminders, r.EmailReminders)

	if r.Timeslots != nil {
		timeslots, err := timeslotsToDomain(*r.Timeslots)
		if err != nil {
			return err
		}
		t.Timeslots = timeslots
	}
	if r.Holidays != nil {
		holidays, err := holidaysToDomain(*r.Holidays)
		if err != nil {
			return err
		}
		t.Holidays = holidays
	}
	if r.SalesPersons != nil {
		t.SalesPersons = *r.SalesPersons
	}
	return nil
}

// FromDomain конвертирует domain модель в DTO
func FromDomain(t *domain.AppointmentType) *AppointmentTypeResponse {
	if t == nil {
		return nil
	}

	resp := &AppointmentTypeResponse{
		Name:                            t.Name,
		AppointmentDuration:             t.AppointmentDuration,
		NumberOfAgents:                  t.NumberOfAgents,
		AdvanceBookingDays:              t.AdvanceBookingDays,
		ValidatePastTimeslot:            t.ValidatePastTimeslot,
		ValidateAvailability:            t.ValidateAvailability,
		ValidateSalesPersonAvailability: t.ValidateSalesPersonAvailability,
		SalesPersonMandatory:            t.SalesPersonMandatory,
		CreateCalendarEvent:             t.CreateCalendarEvent,
		EmailReminders:                  t.EmailReminders,
		Timeslots:                       make([]TimeslotResponse, len(t.Timeslots)),
		Holidays:                        make([]HolidayResponse, len(t.Holidays)),
		SalesPersons:                    t.SalesPersons,
		Modified:                        t.Modified,
	}
	if resp.SalesPersons == nil {
		resp.SalesPersons = []string{}
	}
	for i, row := range t.Timeslots {
		resp.Timeslots[i] = TimeslotResponse{DayOfWeek: row.DayOfWeek.String(), FromTime: row.FromTime, ToTime: row.ToTime}
	}
	for i, h := range t.Holidays {
		resp.Holidays[i] = HolidayResponse{Date: h.Date.Format(domain.DateFormat), Description: h.Description}
	}
	return resp
}

func timeslotsToDomain(rows []TimeslotRequest) ([]domain.AppointmentTypeTimeslot, error) {
	out := make([]domain.AppointmentTypeTimeslot, len(rows))
	for i, row := range rows {
		day, ok := domain.ParseWeekday(row.DayOfWeek)
		if !ok {
			return nil, fmt.Errorf("timeslot #%d: unknown day of week %q", i+1, row.DayOfWeek)
		}
		out[i] = domain.AppointmentTypeTimeslot{DayOfWeek: day, FromTime: row.FromTime, ToTime: row.ToTime}
	}
	return out, nil
}

func holidaysToDomain(rows []HolidayRequest) ([]domain.Holiday, error) {
	out := make([]domain.Holiday, len(rows))
	for i, row := range rows {
		date, err := time.Parse(domain.DateFormat, row.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday #%d: invalid date %q", i+1, row.Date)
		}
		out[i] = domain.Holiday{Date: date, Description: row.Description}
	}
	return out, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
