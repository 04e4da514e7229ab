package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
	mastersRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/masters"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
	"github.com/m04kA/SMC-CRM/internal/service/statussync"
)

// Submit подтверждает черновик встречи
// После подтверждения обновляются предыдущая встреча и возможность, создаётся событие календаря
// и ставится в очередь уведомление о подтверждении
func (s *Service) Submit(ctx context.Context, name string, opts SaveOptions) (*SaveResult, error) {
	s.logger.Info("Submit: submitting appointment=%s by user=%s", name, opts.User)

	var (
		a        *domain.Appointment
		warnings domain.Warnings
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		if a, err = s.get(txCtx, "Submit", name); err != nil {
			return err
		}
		if !a.DocStatus.IsDraft() {
			s.logger.Warn("Submit: appointment=%s is %s", name, a.DocStatus)
			return ErrNotDraft
		}

		// 1. Проверки черновика
		if warnings, err = s.validate(txCtx, a, opts); err != nil {
			return err
		}

		t, err := s.getType(txCtx, a.AppointmentType)
		if err != nil {
			return err
		}
		if err := validateSalesPersonMandatory(a, t); err != nil {
			return err
		}

		// 2. Подтверждение
		now := s.timeProvider.Now()
		a.ConfirmationDt = &now
		a.DocStatus = domain.DocStatusSubmitted
		a.ApplyStatus("", false, now, now, opts.User)

		if err := s.appointmentRepo.Update(txCtx, a); err != nil {
			s.logger.Error("Submit: repository error for appointment=%s: %v", name, err)
			return fmt.Errorf("%w: Submit - repository error: %v", ErrInternal, err)
		}

		// 3. Связанные записи
		if err := s.refreshPreviousAppointment(txCtx, a, opts); err != nil {
			return err
		}
		if err := s.refreshOpportunity(txCtx, a); err != nil {
			return err
		}
		if err := s.createCalendarEvent(txCtx, a, t); err != nil {
			return err
		}

		return s.sendAutomated(txCtx, a, domain.NotificationAppointmentConfirmation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submit: appointment=%s submitted with status=%s", name, a.Status)
	return &SaveResult{Appointment: a, Warnings: warnings}, nil
}

// Cancel отменяет подтверждённую встречу
func (s *Service) Cancel(ctx context.Context, name string, opts SaveOptions) (*domain.Appointment, error) {
	s.logger.Info("Cancel: cancelling appointment=%s by user=%s", name, opts.User)

	var a *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		if a, err = s.get(txCtx, "Cancel", name); err != nil {
			return err
		}
		if !a.DocStatus.IsSubmitted() {
			s.logger.Warn("Cancel: appointment=%s is %s", name, a.DocStatus)
			return ErrNotSubmitted
		}

		now := s.timeProvider.Now()
		a.DocStatus = domain.DocStatusCancelled
		a.ApplyStatus("", false, now, now, opts.User)

		if err := s.appointmentRepo.Update(txCtx, a); err != nil {
			s.logger.Error("Cancel: repository error for appointment=%s: %v", name, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		if err := s.refreshOpportunity(txCtx, a); err != nil {
			return err
		}
		return s.sendAutomated(txCtx, a, domain.NotificationAppointmentCancellation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: appointment=%s cancelled", name)
	return a, nil
}

// UpdateAfterSubmit изменяет разрешённые поля подтверждённой встречи
// У закрытой или перенесённой встречи можно менять только примечания
func (s *Service) UpdateAfterSubmit(ctx context.Context, name string, changes AfterSubmitChanges, opts SaveOptions) (*SaveResult, error) {
	s.logger.Info("UpdateAfterSubmit: updating appointment=%s", name)

	var (
		a        *domain.Appointment
		warnings domain.Warnings
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		if a, err = s.get(txCtx, "UpdateAfterSubmit", name); err != nil {
			return err
		}
		if !a.DocStatus.IsSubmitted() {
			return ErrNotSubmitted
		}
		if a.IsFinal() && !changes.onlyRemarks() {
			return domain.Invalid("Only Remarks can be changed because Appointment is %s", a.Status)
		}

		applyChanges(a, changes)
		a.SetScheduledDateTime()

		if !a.IsFinal() {
			if err := s.setCustomerDetails(txCtx, a); err != nil {
				return err
			}
		}

		t, err := s.getType(txCtx, a.AppointmentType)
		if err != nil {
			return err
		}
		if err := validateSalesPersonMandatory(a, t); err != nil {
			return err
		}
		if err := s.validateSalesPersonAvailability(txCtx, a, t, &warnings); err != nil {
			return err
		}
		a.CleanRemarks()

		rescheduled, err := s.isRescheduled(txCtx, a)
		if err != nil {
			return err
		}
		now := s.timeProvider.Now()
		a.ApplyStatus("", rescheduled, now, now, opts.User)

		if err := s.appointmentRepo.Update(txCtx, a); err != nil {
			s.logger.Error("UpdateAfterSubmit: repository error for appointment=%s: %v", name, err)
			return fmt.Errorf("%w: UpdateAfterSubmit - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SaveResult{Appointment: a, Warnings: warnings}, nil
}

// UpdateStatus выставляет статус подтверждённой встрече (Open, Checked In, Missed, Closed)
func (s *Service) UpdateStatus(ctx context.Context, name string, status domain.AppointmentStatus, opts SaveOptions) (*domain.Appointment, error) {
	if !status.IsRequestable() {
		return nil, domain.Invalid("Status %q cannot be set on an Appointment", status)
	}

	var a *domain.Appointment
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		if a, err = s.get(txCtx, "UpdateStatus", name); err != nil {
			return err
		}
		if !a.DocStatus.IsSubmitted() {
			return ErrNotSubmitted
		}
		return s.applyStatus(txCtx, a, status, opts)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: appointment=%s status=%s", name, a.Status)
	return a, nil
}

// applyStatus пересчитывает статус и сохраняет поля статуса, если они изменились
func (s *Service) applyStatus(ctx context.Context, a *domain.Appointment, requested domain.AppointmentStatus, opts SaveOptions) error {
	rescheduled, err := s.isRescheduled(ctx, a)
	if err != nil {
		return err
	}

	now := s.timeProvider.Now()
	if !a.ApplyStatus(requested, rescheduled, now, now, opts.User) {
		return nil
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, a); err != nil {
		s.logger.Error("applyStatus: repository error for appointment=%s: %v", a.Name, err)
		return fmt.Errorf("%w: applyStatus - repository error: %v", ErrInternal, err)
	}
	return nil
}

// isRescheduled есть ли подтверждённая или отменённая встреча, заменяющая a
func (s *Service) isRescheduled(ctx context.Context, a *domain.Appointment) (bool, error) {
	rescheduled, err := s.appointmentRepo.HasRescheduled(ctx, a.Name)
	if err != nil {
		s.logger.Error("isRescheduled: repository error for appointment=%s: %v", a.Name, err)
		return false, fmt.Errorf("%w: isRescheduled - repository error: %v", ErrInternal, err)
	}
	return rescheduled, nil
}

// refreshPreviousAppointment пересчитывает статус встречи, которую заменяет a
func (s *Service) refreshPreviousAppointment(ctx context.Context, a *domain.Appointment, opts SaveOptions) error {
	if a.PreviousAppointment == "" {
		return nil
	}

	prev, err := s.get(ctx, "refreshPreviousAppointment", a.PreviousAppointment)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil
		}
		return err
	}
	return s.applyStatus(ctx, prev, "", opts)
}

// refreshOpportunity пересчитывает статус возможности встречи и её лида
func (s *Service) refreshOpportunity(ctx context.Context, a *domain.Appointment) error {
	if a.Opportunity == "" {
		return nil
	}

	if _, err := s.statusSync.RefreshOpportunity(ctx, a.Opportunity, ""); err != nil {
		if errors.Is(err, statussync.ErrOpportunityNotFound) {
			s.logger.Warn("refreshOpportunity: opportunity=%s of appointment=%s not found", a.Opportunity, a.Name)
			return nil
		}
		return err
	}
	return nil
}

// createCalendarEvent создаёт событие календаря для открытой встречи, если это включено в типе
func (s *Service) createCalendarEvent(ctx context.Context, a *domain.Appointment, t *domain.AppointmentType) error {
	if a.Status != domain.AppointmentStatusOpen || a.CalendarEvent != "" || t == nil || !t.CreateCalendarEvent {
		return nil
	}

	event, err := s.eventRepo.Create(ctx, domain.NewAppointmentEvent(a, t.EmailReminders))
	if err != nil {
		s.logger.Error("createCalendarEvent: repository error for appointment=%s: %v", a.Name, err)
		return fmt.Errorf("%w: createCalendarEvent - repository error: %v", ErrInternal, err)
	}

	a.CalendarEvent = event.Name
	if err := s.appointmentRepo.Update(ctx, a); err != nil {
		s.logger.Error("createCalendarEvent: repository error for appointment=%s: %v", a.Name, err)
		return fmt.Errorf("%w: createCalendarEvent - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("createCalendarEvent: event=%s created for appointment=%s", event.Name, a.Name)
	return nil
}

// syncCalendarEvent переносит время встречи в событие календаря
func (s *Service) syncCalendarEvent(ctx context.Context, a *domain.Appointment) error {
	if a.CalendarEvent == "" || a.ScheduledDt == nil {
		return nil
	}

	if err := s.eventRepo.UpdateTimes(ctx, a.CalendarEvent, *a.ScheduledDt, a.EndDt); err != nil {
		s.logger.Error("syncCalendarEvent: repository error for event=%s: %v", a.CalendarEvent, err)
		return fmt.Errorf("%w: syncCalendarEvent - repository error: %v", ErrInternal, err)
	}
	return nil
}

// sendAutomated ставит в очередь автоматическое уведомление
// Пропускается, если источник встречи отключает автоматические уведомления
// или уведомление сейчас недопустимо
func (s *Service) sendAutomated(ctx context.Context, a *domain.Appointment, notificationType domain.NotificationType) error {
	disabled, err := s.automationDisabled(ctx, a)
	if err != nil || disabled {
		return err
	}

	if err := a.ValidateNotification(notificationType, s.timeProvider.Now()); err != nil {
		s.logger.Info("sendAutomated: %s skipped for appointment=%s: %s", notificationType, a.Name, domain.ValidationMessage(err))
		return nil
	}

	_, err = s.notifier.EnqueueAutomated(ctx, notifications.Request{
		ReferenceDoctype: domain.DoctypeAppointment,
		ReferenceName:    a.Name,
		NotificationType: notificationType,
		Receiver:         a.Receiver(),
		Party:            a.PartyName,
	})
	return err
}

func (s *Service) automationDisabled(ctx context.Context, a *domain.Appointment) (bool, error) {
	if a.AppointmentSource == "" {
		return false, nil
	}

	source, err := s.mastersRepo.GetAppointmentSource(ctx, a.AppointmentSource)
	if err != nil {
		if errors.Is(err, mastersRepo.ErrNotFound) {
			return false, nil
		}
		s.logger.Error("automationDisabled: repository error for source=%s: %v", a.AppointmentSource, err)
		return false, fmt.Errorf("%w: automationDisabled - repository error: %v", ErrInternal, err)
	}
	return source.DisableAutomatedNotifications, nil
}

func applyChanges(a *domain.Appointment, c AfterSubmitChanges) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.SalesPerson, c.SalesPerson)
	set(&a.ContactMobile, c.ContactMobile)
	set(&a.SecondaryContactMobile, c.SecondaryContactMobile)
	set(&a.Remarks, c.Remarks)
	set(&a.VoiceOfCustomer, c.VoiceOfCustomer)
	set(&a.Description, c.Description)
}
