package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointment"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
)

const holidayDateLayout = "Monday, 2 January, 2006"

// SetMissingValues заполняет дату предыдущей встречи, длительность из типа,
// производные поля времени и данные клиента
func (s *Service) SetMissingValues(ctx context.Context, a *domain.Appointment) error {
	// 1. Дата предыдущей встречи
	a.PreviousAppointmentDt = nil
	if a.PreviousAppointment != "" {
		prev, err := s.appointmentRepo.GetByName(ctx, a.PreviousAppointment)
		switch {
		case err == nil:
			a.PreviousAppointmentDt = prev.ScheduledDt
		case !errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Error("SetMissingValues: repository error for appointment=%s: %v", a.PreviousAppointment, err)
			return fmt.Errorf("%w: SetMissingValues - repository error: %v", ErrInternal, err)
		}
	}

	// 2. Длительность из типа встречи
	t, err := s.getType(ctx, a.AppointmentType)
	if err != nil {
		return err
	}
	if t != nil && a.AppointmentDuration <= 0 {
		a.AppointmentDuration = t.AppointmentDuration
	}

	// 3. Время
	a.SetScheduledDateTime()

	// 4. Данные клиента
	return s.setCustomerDetails(ctx, a)
}

func (s *Service) setCustomerDetails(ctx context.Context, a *domain.Appointment) error {
	if a.AppointmentFor == "" || a.PartyName == "" {
		return nil
	}
	if !domain.IsAllowedPartyType(a.AppointmentFor) {
		return &domain.ValidationError{
			Message: fmt.Sprintf("Appointment For must be %s", domain.CommaAnd(domain.AllowedPartyTypes)),
			Kind:    domain.ErrInvalidPartyType,
		}
	}

	lead, err := s.leadRepo.GetByName(ctx, a.PartyName)
	if err != nil {
		if errors.Is(err, leadRepo.ErrLeadNotFound) {
			s.logger.Warn("setCustomerDetails: lead=%s not found", a.PartyName)
			return ErrLeadNotFound
		}
		s.logger.Error("setCustomerDetails: repository error for lead=%s: %v", a.PartyName, err)
		return fmt.Errorf("%w: setCustomerDetails - repository error: %v", ErrInternal, err)
	}

	a.ApplyCustomerDetails(domain.CustomerDetailsFromLead(lead))
	return nil
}

// validate проверки черновика перед сохранением
func (s *Service) validate(ctx context.Context, a *domain.Appointment, opts SaveOptions) (domain.Warnings, error) {
	var warnings domain.Warnings

	if err := s.SetMissingValues(ctx, a); err != nil {
		return nil, err
	}
	if a.ScheduledDt == nil {
		return nil, domain.Invalid("Scheduled Date is mandatory")
	}

	if err := s.validatePreviousAppointment(ctx, a); err != nil {
		return nil, err
	}

	t, err := s.getType(ctx, a.AppointmentType)
	if err != nil {
		return nil, err
	}

	if err := s.validateTimeslotValidity(a, t, &warnings); err != nil {
		return nil, err
	}
	if err := s.validateSalesPersonAvailability(ctx, a, t, &warnings); err != nil {
		return nil, err
	}
	if err := s.validateTimeslotAvailability(ctx, a, t, &warnings); err != nil {
		return nil, err
	}

	a.CleanRemarks()

	now := s.timeProvider.Now()
	a.ApplyStatus("", false, now, now, opts.User)

	return warnings, nil
}

func (s *Service) validatePreviousAppointment(ctx context.Context, a *domain.Appointment) error {
	if a.PreviousAppointment == "" {
		return nil
	}

	prev, err := s.appointmentRepo.GetByName(ctx, a.PreviousAppointment)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return domain.Invalid("Previous Appointment %s does not exist", a.PreviousAppointment)
		}
		s.logger.Error("validatePreviousAppointment: repository error for appointment=%s: %v", a.PreviousAppointment, err)
		return fmt.Errorf("%w: validatePreviousAppointment - repository error: %v", ErrInternal, err)
	}

	switch {
	case prev.DocStatus.IsDraft():
		return domain.Invalid("Previous Appointment %s is not submitted", prev.Name)
	case prev.DocStatus.IsCancelled():
		return domain.Invalid("Previous Appointment %s is cancelled", prev.Name)
	}

	if a.AmendedFrom == "" && !isReschedulable(prev.Status) {
		return domain.Invalid("Previous Appointment %s is %s. Only Open and Missed appointments can be rescheduled",
			prev.Name, prev.Status)
	}
	return nil
}

// validateTimeslotValidity время в прошлом, запись слишком заранее и попадание в расписание типа
func (s *Service) validateTimeslotValidity(a *domain.Appointment, t *domain.AppointmentType, w *domain.Warnings) error {
	if t == nil {
		return nil
	}
	now := s.timeProvider.Now()

	if a.EndDt.Before(now) {
		if err := w.Report(t.ValidatePastTimeslot, "Time slot %s is in the past", a.TimeslotString()); err != nil {
			return err
		}
	}

	advanceDays := domain.DaysBetween(now, *a.ScheduledDt)
	if t.AdvanceBookingDays > 0 && advanceDays > t.AdvanceBookingDays {
		if err := w.Report(t.ValidateAvailability, "Scheduled Date %s is %d days in advance",
			a.ScheduledDate.Format(domain.DateFormat), advanceDays); err != nil {
			return err
		}
	}

	if !t.IsInTimeslot(*a.ScheduledDt, *a.EndDt) {
		if err := w.Report(t.ValidateAvailability, "%s is not a valid available time slot for appointment type %s",
			a.TimeslotString(), t.Name); err != nil {
			return err
		}
	}
	return nil
}

// validateSalesPersonAvailability продавец разрешён для типа и не занят другой встречей
func (s *Service) validateSalesPersonAvailability(ctx context.Context, a *domain.Appointment, t *domain.AppointmentType, w *domain.Warnings) error {
	if a.SalesPerson == "" {
		return nil
	}
	raise := t != nil && t.ValidateSalesPersonAvailability

	if t != nil && !t.AllowsSalesPerson(a.SalesPerson) {
		if err := w.Report(raise, "%s is not a valid Sales Person for appointment type %s", a.SalesPerson, t.Name); err != nil {
			return err
		}
	}

	if a.ScheduledDt == nil {
		return nil
	}

	conflicts, err := s.appointmentRepo.GetInSlot(ctx, *a.ScheduledDt, *a.EndDt, domain.SlotFilter{
		SalesPerson: a.SalesPerson,
		Exclude:     a.Name,
	})
	if err != nil {
		s.logger.Error("validateSalesPersonAvailability: repository error: %v", err)
		return fmt.Errorf("%w: validateSalesPersonAvailability - repository error: %v", ErrInternal, err)
	}

	if len(conflicts) > 0 {
		return w.ReportKind(raise, domain.ErrSlotUnavailable,
			"Sales Person %s is already assigned to another Appointment %s for time slot %s",
			a.SalesPerson, conflicts[0].Name, a.TimeslotString())
	}
	return nil
}

// validateTimeslotAvailability выходной день и свободные места в слоте
func (s *Service) validateTimeslotAvailability(ctx context.Context, a *domain.Appointment, t *domain.AppointmentType, w *domain.Warnings) error {
	if t == nil {
		return nil
	}

	if holiday := t.IsHoliday(*a.ScheduledDt); holiday != "" {
		if err := w.Report(t.ValidateAvailability, "%s is a holiday: %s", a.ScheduledDt.Format(holidayDateLayout), holiday); err != nil {
			return err
		}
	}

	booked, err := s.appointmentRepo.CountInSlot(ctx, *a.ScheduledDt, *a.EndDt, domain.SlotFilter{
		AppointmentType: t.Name,
		Exclude:         a.Name,
	})
	if err != nil {
		s.logger.Error("validateTimeslotAvailability: repository error: %v", err)
		return fmt.Errorf("%w: validateTimeslotAvailability - repository error: %v", ErrInternal, err)
	}

	if t.NumberOfAgents > 0 && booked >= t.NumberOfAgents {
		return w.ReportKind(t.ValidateAvailability, domain.ErrSlotUnavailable,
			"Time slot %s is already booked by %d other appointments for appointment type %s",
			a.TimeslotString(), booked, t.Name)
	}
	return nil
}

// validateSalesPersonMandatory продавец обязателен для подтверждения, если этого требует тип
func validateSalesPersonMandatory(a *domain.Appointment, t *domain.AppointmentType) error {
	if t != nil && t.SalesPersonMandatory && a.SalesPerson == "" {
		return domain.Invalid("Sales Person is mandatory for appointment confirmation")
	}
	return nil
}

func isReschedulable(status domain.AppointmentStatus) bool {
	for _, s := range domain.ReschedulableStatuses {
		if s == status {
			return true
		}
	}
	return false
}
