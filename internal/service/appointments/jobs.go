package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/infra/kv"
)

// AutoMarkMissed переводит давно прошедшие открытые встречи в статус Missed
func (s *Service) AutoMarkMissed(ctx context.Context) (int64, error) {
	if !s.settings.AutoMarkMissedEnabled() {
		s.logger.Info("AutoMarkMissed: disabled")
		return 0, nil
	}

	marked, err := s.appointmentRepo.MarkMissed(ctx, s.settings.AutoMarkMissedDays, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("AutoMarkMissed: repository error: %v", err)
		return 0, fmt.Errorf("%w: AutoMarkMissed - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AutoMarkMissed: %d appointments marked Missed", marked)
	return marked, nil
}

// SendReminders ставит в очередь напоминания о встречах раз в день после времени напоминаний
// Дата последней рассылки хранится в kv, повторный запуск в тот же день ничего не делает
func (s *Service) SendReminders(ctx context.Context) (int, error) {
	if !s.notifier.AutomatedEnabled(domain.NotificationAppointmentReminder) {
		return 0, nil
	}

	// 1. Не раньше времени напоминаний
	now := s.timeProvider.Now()
	reminderDate := domain.DateOnly(now)
	reminderDt := s.settings.ReminderDateTime(reminderDate)
	if now.Before(reminderDt) {
		return 0, nil
	}

	// 2. Не чаще раза в день
	lastSent, err := s.kv.GetDate(ctx, kv.KeyReminderLastSentDate)
	if err != nil {
		s.logger.Error("SendReminders: kv error: %v", err)
		return 0, fmt.Errorf("%w: SendReminders - kv error: %v", ErrInternal, err)
	}
	if lastSent != nil && !lastSent.Before(reminderDate) {
		return 0, nil
	}

	// 3. Рассылка
	names, err := s.appointmentRepo.ListForReminder(ctx, s.settings.ReminderQueryFor(reminderDate, now))
	if err != nil {
		s.logger.Error("SendReminders: repository error: %v", err)
		return 0, fmt.Errorf("%w: SendReminders - repository error: %v", ErrInternal, err)
	}

	sent := 0
	for _, name := range names {
		a, err := s.get(ctx, "SendReminders", name)
		if err != nil {
			s.logger.Error("SendReminders: appointment=%s skipped: %v", name, err)
			continue
		}
		if err := s.sendAutomated(ctx, a, domain.NotificationAppointmentReminder); err != nil {
			s.logger.Error("SendReminders: appointment=%s skipped: %v", name, err)
			continue
		}
		sent++
	}

	if err := s.kv.SetDate(ctx, kv.KeyReminderLastSentDate, reminderDate); err != nil {
		s.logger.Error("SendReminders: kv error: %v", err)
		return sent, fmt.Errorf("%w: SendReminders - kv error: %v", ErrInternal, err)
	}

	s.logger.Info("SendReminders: %d of %d reminders queued for %s", sent, len(names), reminderDate.Format(domain.DateFormat))
	return sent, nil
}

// ReminderSchedule время, когда встрече будет отправлено напоминание, nil если не будет
func (s *Service) ReminderSchedule(ctx context.Context, a *domain.Appointment) (*time.Time, error) {
	if !a.DocStatus.IsSubmitted() || a.ScheduledDate == nil ||
		!s.notifier.AutomatedEnabled(domain.NotificationAppointmentReminder) {
		return nil, nil
	}

	reminderDate := s.settings.ReminderDateFor(*a.ScheduledDate)
	q := s.settings.ReminderQueryFor(reminderDate, s.timeProvider.Now())
	q.AppointmentNames = []string{a.Name}

	names, err := s.appointmentRepo.ListForReminder(ctx, q)
	if err != nil {
		s.logger.Error("ReminderSchedule: repository error for appointment=%s: %v", a.Name, err)
		return nil, fmt.Errorf("%w: ReminderSchedule - repository error: %v", ErrInternal, err)
	}

	for _, name := range names {
		if name == a.Name {
			dt := s.settings.ReminderDateTime(reminderDate)
			return &dt, nil
		}
	}
	return nil, nil
}
