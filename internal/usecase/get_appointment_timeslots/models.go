package get_appointment_timeslots

import (
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// Request модель запроса слотов типа встречи на дату
type Request struct {
	Date            time.Time // Дата (время игнорируется)
	AppointmentType string    // Тип встречи
	Exclude         string    // Встреча, которая не учитывается при подсчёте занятости
}

// Response модель ответа со слотами
type Response struct {
	Date            time.Time
	AppointmentType string
	Holiday         string                        // Описание выходного, пусто для рабочего дня
	Timeslots       []domain.TimeslotAvailability // nil, если у типа нет расписания
}
