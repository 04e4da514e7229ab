package domain

import "time"

// NotificationType kind of message sent to a party
type NotificationType string

const (
	NotificationOpportunityGreeting     NotificationType = "Opportunity Greeting"
	NotificationAppointmentConfirmation NotificationType = "Appointment Confirmation"
	NotificationAppointmentReminder     NotificationType = "Appointment Reminder"
	NotificationAppointmentCancellation NotificationType = "Appointment Cancellation"
	NotificationCustomMessage           NotificationType = "Custom Message"
)

// NotificationMediumSMS is the only delivery medium
const NotificationMediumSMS = "SMS"

// NotificationStatus state of an outbox row
type NotificationStatus string

const (
	NotificationStatusQueued NotificationStatus = "Queued"
	NotificationStatusSent   NotificationStatus = "Sent"
	NotificationStatusFailed NotificationStatus = "Failed"
)

// Notification is an outbox row; delivery happens outside this service
type Notification struct {
	ID               int64
	ReferenceDoctype string
	ReferenceName    string
	NotificationType NotificationType
	Medium           string
	Receiver         string
	Party            string
	Status           NotificationStatus
	ScheduledAt      time.Time
	SentAt           *time.Time
	Error            string
	CreatedAt        time.Time
}

// NotificationCount per reference counters of a notification type
type NotificationCount struct {
	ReferenceDoctype string
	ReferenceName    string
	NotificationType NotificationType
	Medium           string
	Count            int
	LastScheduledDt  *time.Time
	LastSentDt       *time.Time
}
