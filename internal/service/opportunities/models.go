package opportunities

import (
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// notificationTypes уведомления, доступность которых показывается в карточке
var notificationTypes = []domain.NotificationType{
	domain.NotificationOpportunityGreeting,
}

// Details возможность с данными для карточки
type Details struct {
	Opportunity        *domain.Opportunity
	CanNotify          map[domain.NotificationType]bool
	NotificationCounts []domain.NotificationCount
}

// SaveOptions параметры сохранения возможности
type SaveOptions struct {
	// User пользователь, выполняющий сохранение (продавец по умолчанию, отправитель коммуникаций)
	User string

	// IgnoreMandatory пропускает проверку обязательного контактного номера
	IgnoreMandatory bool
}

// SubmitCommunicationRequest запись коммуникации с клиентом
type SubmitCommunicationRequest struct {
	Name           string
	ContactDate    time.Time
	Remarks        string
	UpdateFollowUp bool
}

// SubmitWithActionRequest запись коммуникации с последующим действием
type SubmitWithActionRequest struct {
	Name         string
	Remarks      string
	Action       string
	FollowUpDate *time.Time
	LostReasons  []string
}

// SubmitWithActionResult результат записи коммуникации с действием
type SubmitWithActionResult struct {
	Opportunity string
	// Appointment черновик встречи для действия Create Appointment
	Appointment *domain.Appointment
}

// communicationSubject тема коммуникации, записанной по возможности
const communicationSubject = "Opportunity Communication"
