package domain

import (
	"time"

	"github.com/m04kA/SMC-CRM/pkg/types"
)

// CRMSettings opportunity and lead behaviour switches
type CRMSettings struct {
	OpportunityContactNoMandatory bool
	AutoMarkOpportunityAsLost     bool
	MarkOpportunityLostAfterDays  int
	OpportunityAutoLostReason     string
	DefaultLeadSource             string
}

// AutoLostEnabled returns true if idle opportunities should be marked Lost
func (s CRMSettings) AutoLostEnabled() bool {
	return s.AutoMarkOpportunityAsLost && s.MarkOpportunityLostAfterDays >= 1
}

// AppointmentSettings reminder and missed-appointment configuration
type AppointmentSettings struct {
	AutoMarkMissedDays        int
	ReminderDaysBefore        int
	ReminderConfirmationHours int
	ReminderTime              types.TimeString
}

// DaysBefore days between the reminder and the appointment, never negative
func (s AppointmentSettings) DaysBefore() int {
	if s.ReminderDaysBefore < 0 {
		return 0
	}
	return s.ReminderDaysBefore
}

// ConfirmationMinutes minimum minutes between confirmation and reminder, never negative
func (s AppointmentSettings) ConfirmationMinutes() int {
	if s.ReminderConfirmationHours < 0 {
		return 0
	}
	return s.ReminderConfirmationHours * 60
}

// ReminderDateTime moment on date when reminders are sent
func (s AppointmentSettings) ReminderDateTime(date time.Time) time.Time {
	return s.ReminderTime.On(DateOnly(date))
}

// ReminderDateFor date the reminder for an appointment on appointmentDate is sent
func (s AppointmentSettings) ReminderDateFor(appointmentDate time.Time) time.Time {
	return DateOnly(appointmentDate).AddDate(0, 0, -s.DaysBefore())
}

// AppointmentDateFor date of appointments reminded on reminderDate
func (s AppointmentSettings) AppointmentDateFor(reminderDate time.Time) time.Time {
	return DateOnly(reminderDate).AddDate(0, 0, s.DaysBefore())
}

// ReminderQueryFor builds the reminder selection for reminders sent on reminderDate
func (s AppointmentSettings) ReminderQueryFor(reminderDate, now time.Time) ReminderQuery {
	return ReminderQuery{
		AppointmentDate: s.AppointmentDateFor(reminderDate),
		ReminderDate:    DateOnly(reminderDate),
		ReminderDt:      s.ReminderDateTime(reminderDate),
		Now:             now,
		RequiredMinutes: s.ConfirmationMinutes(),
	}
}

// AutoMarkMissedEnabled returns true if old open appointments should be marked Missed
func (s AppointmentSettings) AutoMarkMissedEnabled() bool {
	return s.AutoMarkMissedDays > 0
}

// NotificationSettings automated SMS configuration
type NotificationSettings struct {
	AutomatedSMSEnabled bool
	AutomatedTemplates  []string
}

// HasTemplate returns true if an automated template for the type is configured
func (s NotificationSettings) HasTemplate(notificationType NotificationType) bool {
	for _, t := range s.AutomatedTemplates {
		if t == string(notificationType) {
			return true
		}
	}
	return false
}

// AutomatedEnabled returns true if automated notifications of the type are sent
func (s NotificationSettings) AutomatedEnabled(notificationType NotificationType) bool {
	return s.AutomatedSMSEnabled && s.HasTemplate(notificationType)
}

// AutomatedReminderEnabled returns true if appointment reminders are sent automatically
func (s NotificationSettings) AutomatedReminderEnabled() bool {
	return s.AutomatedEnabled(NotificationAppointmentReminder)
}
