package book_appointment

import (
	"fmt"
	"strings"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.AppointmentType) == "" {
		return fmt.Errorf("%w: appointment type is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}

	// Без лида нужны данные для его создания
	if req.PartyName == "" {
		if strings.TrimSpace(req.CustomerName) == "" {
			return fmt.Errorf("%w: customer name is required when no lead is given", ErrInvalidInput)
		}
		if strings.TrimSpace(req.ContactMobile) == "" && strings.TrimSpace(req.ContactEmail) == "" {
			return fmt.Errorf("%w: contact mobile or email is required when no lead is given", ErrInvalidInput)
		}
	}

	return nil
}

// validateBookingTime проверяет, что время встречи ещё не прошло
func validateBookingTime(scheduled, now time.Time) error {
	if scheduled.Before(now) {
		return ErrSlotInPast
	}
	return nil
}
