package appointments

import (
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// notificationTypes уведомления, доступность которых показывается в карточке
var notificationTypes = []domain.NotificationType{
	domain.NotificationAppointmentConfirmation,
	domain.NotificationAppointmentReminder,
	domain.NotificationAppointmentCancellation,
}

// SaveOptions параметры сохранения встречи
type SaveOptions struct {
	// User пользователь, выполняющий операцию (фиксируется при отметке о прибытии)
	User string
}

// SaveResult сохранённая встреча и мягкие предупреждения проверки
type SaveResult struct {
	Appointment *domain.Appointment
	Warnings    domain.Warnings
}

// Details встреча с данными для карточки
type Details struct {
	Appointment        *domain.Appointment
	CanNotify          map[domain.NotificationType]bool
	NotificationCounts []domain.NotificationCount
	Timeslots          *domain.TimeslotsResult
	ScheduledReminder  *time.Time
}

// AfterSubmitChanges поля, которые можно менять у подтверждённой встречи
// nil - поле не меняется
type AfterSubmitChanges struct {
	SalesPerson            *string
	ContactMobile          *string
	SecondaryContactMobile *string
	Remarks                *string
	VoiceOfCustomer        *string
	Description            *string
}

// onlyRemarks меняются ли только примечания
func (c AfterSubmitChanges) onlyRemarks() bool {
	return c.SalesPerson == nil && c.ContactMobile == nil && c.SecondaryContactMobile == nil &&
		c.VoiceOfCustomer == nil && c.Description == nil
}
