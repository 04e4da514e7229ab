package domain

import (
	"time"

	"github.com/m04kA/SMC-CRM/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusDraft       AppointmentStatus = "Draft"
	AppointmentStatusOpen        AppointmentStatus = "Open"
	AppointmentStatusCheckedIn   AppointmentStatus = "Checked In"
	AppointmentStatusMissed      AppointmentStatus = "Missed"
	AppointmentStatusClosed      AppointmentStatus = "Closed"
	AppointmentStatusRescheduled AppointmentStatus = "Rescheduled"
	AppointmentStatusCancelled   AppointmentStatus = "Cancelled"
)

// RequestableAppointmentStatuses statuses a user can set on a submitted appointment
var RequestableAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusOpen,
	AppointmentStatusClosed,
	AppointmentStatusMissed,
	AppointmentStatusCheckedIn,
}

// IsRequestable reports whether s can be requested through UpdateStatus
func (s AppointmentStatus) IsRequestable() bool {
	for _, v := range RequestableAppointmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ReschedulableStatuses statuses of a previous appointment that allow rescheduling
var ReschedulableStatuses = []AppointmentStatus{
	AppointmentStatusOpen,
	AppointmentStatusCheckedIn,
	AppointmentStatusMissed,
}

// Appointment represents a scheduled meeting with a lead
type Appointment struct {
	Name            string
	DocStatus       DocStatus
	Status          AppointmentStatus
	AppointmentType string
	AppointmentFor  string
	PartyName       string
	CustomerName    string

	TaxID          string
	TaxCNIC        string
	TaxSTRN        string
	AddressDisplay string
	ContactDetails
	SecondaryContactDisplay string
	SecondaryContactMobile  string

	ScheduledDt         *time.Time
	EndDt               *time.Time
	ScheduledDate       *time.Time
	ScheduledTime       types.TimeString
	ScheduledDayOfWeek  string
	AppointmentDuration int

	SalesPerson           string
	Opportunity           string
	PreviousAppointment   string
	PreviousAppointmentDt *time.Time
	AmendedFrom           string
	AppointmentSource     string

	IsClosed       bool
	IsMissed       bool
	IsCheckedIn    bool
	CheckInDt      *time.Time
	CheckInUser    string
	ConfirmationDt *time.Time
	CalendarEvent  string

	Remarks         string
	VoiceOfCustomer string
	Description     string

	AppliesToVehicle  string
	AppliesToSerialNo string

	Owner     string
	CreatedAt time.Time
	Modified  time.Time
}

// IsNew reports whether the appointment has not been inserted yet
func (a *Appointment) IsNew() bool {
	return a.Name == ""
}

// SetScheduledDateTime derives scheduled_dt, end_dt, the date and time parts and the weekday name
func (a *Appointment) SetScheduledDateTime() {
	if a.ScheduledDt == nil && a.ScheduledDate != nil && !a.ScheduledTime.IsZero() {
		dt := a.ScheduledTime.On(*a.ScheduledDate)
		a.ScheduledDt = &dt
	}

	if a.ScheduledDt != nil {
		date := DateOnly(*a.ScheduledDt)
		a.ScheduledDate = &date
		a.ScheduledTime = types.NewTimeString(*a.ScheduledDt)
	} else {
		a.ScheduledDate = nil
		a.ScheduledTime = types.TimeString{}
	}

	if a.AppointmentDuration < 0 {
		a.AppointmentDuration = 0
	}
	switch {
	case a.ScheduledDt != nil && a.AppointmentDuration > 0:
		end := a.ScheduledDt.Add(time.Duration(a.AppointmentDuration) * time.Minute)
		a.EndDt = &end
	case a.ScheduledDt != nil:
		end := *a.ScheduledDt
		a.EndDt = &end
	default:
		a.EndDt = nil
	}

	if a.ScheduledDate != nil {
		a.ScheduledDayOfWeek = a.ScheduledDate.Weekday().String()
	} else {
		a.ScheduledDayOfWeek = ""
	}
}

// ApplyCustomerDetails copies party fields onto the appointment.
// Forced fields always follow the party; the rest only fill blanks.
func (a *Appointment) ApplyCustomerDetails(d CustomerDetails) {
	a.CustomerName = d.CustomerName
	a.TaxID = d.TaxID
	a.TaxCNIC = d.TaxCNIC
	a.TaxSTRN = d.TaxSTRN
	a.AddressDisplay = d.AddressDisplay
	a.ContactDisplay = d.ContactDisplay
	a.ContactEmail = d.ContactEmail

	fillBlank(&a.ContactMobile, d.ContactMobile)
	fillBlank(&a.ContactMobile2, d.ContactMobile2)
	fillBlank(&a.ContactPhone, d.ContactPhone)
	fillBlank(&a.ContactDesignation, d.ContactDesignation)
}

// CleanRemarks normalises whitespace of the free text fields.
// Voice of customer is frozen once the appointment is Closed or Rescheduled.
func (a *Appointment) CleanRemarks() {
	a.Remarks = CleanWhitespace(a.Remarks)
	if !a.IsFinal() {
		a.VoiceOfCustomer = CleanWhitespace(a.VoiceOfCustomer)
	}
}

// IsFinal reports whether the appointment is Closed or Rescheduled
func (a *Appointment) IsFinal() bool {
	return a.Status == AppointmentStatusClosed || a.Status == AppointmentStatusRescheduled
}

type appointmentStatusSnapshot struct {
	status      AppointmentStatus
	isClosed    bool
	isMissed    bool
	isCheckedIn bool
	checkInDt   *time.Time
}

func (a *Appointment) snapshot() appointmentStatusSnapshot {
	return appointmentStatusSnapshot{
		status:      a.Status,
		isClosed:    a.IsClosed,
		isMissed:    a.IsMissed,
		isCheckedIn: a.IsCheckedIn,
		checkInDt:   a.CheckInDt,
	}
}

// ApplyStatus runs the status cascade.
// requested adjusts the flags of a submitted appointment before the cascade.
// isRescheduled tells whether a submitted or cancelled appointment points at this one.
// Returns true when any persisted status field changed.
func (a *Appointment) ApplyStatus(requested AppointmentStatus, isRescheduled bool, today, now time.Time, user string) bool {
	prev := a.snapshot()

	switch a.DocStatus {
	case DocStatusDraft:
		a.Status = AppointmentStatusDraft

	case DocStatusSubmitted:
		switch requested {
		case AppointmentStatusOpen:
			a.IsCheckedIn = false
			a.IsClosed = false
			a.IsMissed = false
		case AppointmentStatusClosed:
			a.IsClosed = true
			a.IsMissed = false
		case AppointmentStatusMissed:
			a.IsMissed = true
			a.IsClosed = false
		case AppointmentStatusCheckedIn:
			a.IsCheckedIn = true
			a.IsMissed = false
		}

		switch {
		case isRescheduled:
			a.Status = AppointmentStatusRescheduled
		case a.IsClosed:
			a.Status = AppointmentStatusClosed
		case a.IsCheckedIn:
			a.Status = AppointmentStatusCheckedIn
		case a.IsMissed || (a.ScheduledDate != nil && DateOnly(*a.ScheduledDate).Before(DateOnly(today))):
			a.Status = AppointmentStatusMissed
		default:
			a.Status = AppointmentStatusOpen
		}

	default:
		a.Status = AppointmentStatusCancelled
	}

	if !prev.isCheckedIn && a.IsCheckedIn {
		checkIn := now
		a.CheckInDt = &checkIn
		a.CheckInUser = user
	}
	if !a.IsCheckedIn {
		a.CheckInDt = nil
		a.CheckInUser = ""
	}

	return prev.status != a.Status ||
		prev.isClosed != a.IsClosed ||
		prev.isMissed != a.IsMissed ||
		prev.isCheckedIn != a.IsCheckedIn ||
		!timePtrEqual(prev.checkInDt, a.CheckInDt)
}

// ValidateNotification checks whether a notification of the type may be sent now
func (a *Appointment) ValidateNotification(notificationType NotificationType, now time.Time) error {
	if notificationType == "" {
		return Invalid("Notification Type is mandatory")
	}

	switch notificationType {
	case NotificationAppointmentCancellation:
		if a.DocStatus != DocStatusCancelled {
			return Invalid("Cannot send Appointment Cancellation notification because Appointment is not cancelled")
		}
	case NotificationCustomMessage:
	default:
		if a.DocStatus != DocStatusSubmitted {
			return Invalid("Cannot send notification because Appointment is not submitted")
		}
	}

	if notificationType == NotificationAppointmentConfirmation || notificationType == NotificationAppointmentReminder {
		if a.Status != AppointmentStatusOpen {
			return Invalid("Cannot send %s notification because Appointment status is not 'Open'", notificationType)
		}
	}

	switch notificationType {
	case NotificationAppointmentConfirmation, NotificationAppointmentReminder, NotificationAppointmentCancellation:
		dt := a.EndDt
		if dt == nil {
			dt = a.ScheduledDt
		}
		if dt == nil || !dt.After(now) {
			return Invalid("Cannot send %s notification after Appointment Time has passed", notificationType)
		}
	}

	return nil
}

// Receiver phone number used for SMS notifications
func (a *Appointment) Receiver() string {
	return a.ContactMobile
}

const (
	longDateLayout = "Monday, 2 January, 2006"
	clockLayout    = "03:04:05 PM"
)

// TimeslotString human readable interval used in validation messages
func (a *Appointment) TimeslotString() string {
	if a.ScheduledDt == nil {
		return ""
	}
	start := *a.ScheduledDt
	end := start
	if a.EndDt != nil {
		end = *a.EndDt
	}

	switch {
	case start.Equal(end):
		return start.Format(longDateLayout + " " + clockLayout)
	case SameDay(start, end):
		return start.Format(longDateLayout) + " " + start.Format(clockLayout) + " till " + end.Format(clockLayout)
	default:
		return start.Format(DateTimeFormat) + " till " + end.Format(DateTimeFormat)
	}
}

// NewRescheduled maps the appointment into an unsaved draft that replaces it
func (a *Appointment) NewRescheduled() *Appointment {
	return &Appointment{
		DocStatus:             DocStatusDraft,
		Status:                AppointmentStatusDraft,
		PreviousAppointment:   a.Name,
		PreviousAppointmentDt: copyTime(a.ScheduledDt),
		AppointmentDuration:   a.AppointmentDuration,
		AppointmentType:       a.AppointmentType,
		AppointmentFor:        a.AppointmentFor,
		PartyName:             a.PartyName,
		CustomerName:          a.CustomerName,
		TaxID:                 a.TaxID,
		TaxCNIC:               a.TaxCNIC,
		TaxSTRN:               a.TaxSTRN,
		AddressDisplay:        a.AddressDisplay,
		ContactDetails:        a.ContactDetails,
		SalesPerson:           a.SalesPerson,
		Opportunity:           a.Opportunity,
		AppointmentSource:     a.AppointmentSource,
		VoiceOfCustomer:       a.VoiceOfCustomer,
		Description:           a.Description,
		AppliesToVehicle:      a.AppliesToVehicle,
		AppliesToSerialNo:     a.AppliesToSerialNo,
	}
}

// AppointmentEvent calendar entry for an appointment
type AppointmentEvent struct {
	Name         string
	CustomerName string
	Status       AppointmentStatus
	ScheduledDt  time.Time
	EndDt        time.Time
}

// ReminderQuery parameters of the appointment reminder selection
type ReminderQuery struct {
	AppointmentDate  time.Time
	ReminderDate     time.Time
	ReminderDt       time.Time
	Now              time.Time
	RequiredMinutes  int
	AppointmentNames []string // optional restriction
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
