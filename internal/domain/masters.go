package domain

import "time"

// LeadSource where a lead came from
type LeadSource struct {
	Name    string
	Details string
}

// MarketSegment classification of leads
type MarketSegment struct {
	Name string
}

// SalesStage step of the sales pipeline
type SalesStage struct {
	Name string
}

// IndustryType industry of an organization lead
type IndustryType struct {
	Name string
}

// OpportunityType category of an opportunity
type OpportunityType struct {
	Name                   string
	Description            string
	DefaultAppointmentType string
}

// AppointmentSource channel an appointment was booked through
type AppointmentSource struct {
	Name                          string
	DisableAutomatedNotifications bool
}

// Event calendar entry created for a confirmed appointment
type Event struct {
	Name          string
	Subject       string
	StartsOn      time.Time
	EndsOn        *time.Time
	Status        string
	EventCategory string
	EventType     string
	SendReminder  bool
	ReferenceName string
	Participants  []EventParticipant
	CreatedAt     time.Time
}

// EventParticipant record linked to a calendar event
type EventParticipant struct {
	ReferenceDoctype string
	ReferenceDocname string
}

// Event values
const (
	EventStatusOpen      = "Open"
	EventTypePublic      = "Public"
	EventCategoryMeeting = "Meeting"
)

// NewAppointmentEvent builds the calendar event of a confirmed appointment
func NewAppointmentEvent(a *Appointment, sendReminder bool) *Event {
	e := &Event{
		Subject:       "Appointment with " + a.CustomerName,
		Status:        EventStatusOpen,
		EventCategory: EventCategoryMeeting,
		EventType:     EventTypePublic,
		SendReminder:  sendReminder,
		ReferenceName: a.Name,
	}
	if a.ScheduledDt != nil {
		e.StartsOn = *a.ScheduledDt
	}
	e.EndsOn = copyTime(a.EndDt)

	if a.AppointmentFor != "" && a.PartyName != "" {
		e.Participants = append(e.Participants, EventParticipant{
			ReferenceDoctype: a.AppointmentFor,
			ReferenceDocname: a.PartyName,
		})
	}
	if a.SalesPerson != "" {
		e.Participants = append(e.Participants, EventParticipant{
			ReferenceDoctype: DoctypeSalesPerson,
			ReferenceDocname: a.SalesPerson,
		})
	}
	return e
}
