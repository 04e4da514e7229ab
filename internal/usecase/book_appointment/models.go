package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

// Request модель запроса на запись клиента на встречу
type Request struct {
	PartyName string // Лид; если пусто, лид создаётся из контактных данных

	CustomerName  string // Имя нового лида
	ContactMobile string
	ContactEmail  string
	Description   string

	AppointmentType   string
	Date              time.Time        // Дата встречи (без времени)
	StartTime         types.TimeString // Время начала слота (например, "10:00")
	SalesPerson       string
	Opportunity       string
	AppointmentSource string
	Remarks           string

	User string // Пользователь, выполняющий запись
}

// Response модель ответа с подтверждённой встречей
type Response struct {
	Appointment *domain.Appointment
	LeadCreated bool            // Лид был создан при записи
	Warnings    domain.Warnings // Мягкие предупреждения проверки слота
}
