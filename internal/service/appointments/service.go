package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointment"
	appointmentTypeRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointmenttype"
)

// Service сервис для работы со встречами
type Service struct {
	appointmentRepo     AppointmentRepository
	appointmentTypeRepo AppointmentTypeRepository
	leadRepo            LeadRepository
	mastersRepo         MastersRepository
	salesPersonRepo     SalesPersonRepository
	eventRepo           EventRepository
	statusSync          StatusSync
	notifier            Notifier
	timeslots           TimeslotsProvider
	kv                  KVStore
	txManager           TransactionManager
	settings            domain.AppointmentSettings
	timeProvider        domain.TimeProvider
	logger              Logger
}

// NewService создает новый экземпляр сервиса встреч
func NewService(
	appointmentRepo AppointmentRepository,
	appointmentTypeRepo AppointmentTypeRepository,
	leadRepo LeadRepository,
	mastersRepo MastersRepository,
	salesPersonRepo SalesPersonRepository,
	eventRepo EventRepository,
	statusSync StatusSync,
	notifier Notifier,
	timeslots TimeslotsProvider,
	kv KVStore,
	txManager TransactionManager,
	settings domain.AppointmentSettings,
	timeProvider domain.TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo:     appointmentRepo,
		appointmentTypeRepo: appointmentTypeRepo,
		leadRepo:            leadRepo,
		mastersRepo:         mastersRepo,
		salesPersonRepo:     salesPersonRepo,
		eventRepo:           eventRepo,
		statusSync:          statusSync,
		notifier:            notifier,
		timeslots:           timeslots,
		kv:                  kv,
		txManager:           txManager,
		settings:            settings,
		timeProvider:        timeProvider,
		logger:              logger,
	}
}

// Create проверяет и сохраняет черновик встречи
// Мягкие нарушения возвращаются предупреждениями, если тип встречи не требует ошибки
func (s *Service) Create(ctx context.Context, a *domain.Appointment, opts SaveOptions) (*SaveResult, error) {
	s.logger.Info("Create: creating appointment for %s %s type=%s", a.AppointmentFor, a.PartyName, a.AppointmentType)

	a.Name = ""
	a.DocStatus = domain.DocStatusDraft
	a.CalendarEvent = ""
	a.ConfirmationDt = nil

	var warnings domain.Warnings
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		if warnings, err = s.validate(txCtx, a, opts); err != nil {
			return err
		}

		if _, err := s.appointmentRepo.Create(txCtx, a); err != nil {
			s.logger.Error("Create: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: appointment=%s created for %s, %d warnings", a.Name, a.TimeslotString(), len(warnings))
	return &SaveResult{Appointment: a, Warnings: warnings}, nil
}

// Update проверяет и сохраняет черновик встречи
func (s *Service) Update(ctx context.Context, a *domain.Appointment, opts SaveOptions) (*SaveResult, error) {
	s.logger.Info("Update: updating appointment=%s", a.Name)

	if a.Name == "" {
		return nil, fmt.Errorf("%w: appointment name is required", ErrInvalidInput)
	}

	var warnings domain.Warnings
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		stored, err := s.get(txCtx, "Update", a.Name)
		if err != nil {
			return err
		}
		if !stored.DocStatus.IsDraft() {
			s.logger.Warn("Update: appointment=%s is %s", a.Name, stored.DocStatus)
			return ErrNotDraft
		}
		a.DocStatus = domain.DocStatusDraft
		a.CalendarEvent = stored.CalendarEvent
		a.Owner = stored.Owner
		a.CreatedAt = stored.CreatedAt

		if warnings, err = s.validate(txCtx, a, opts); err != nil {
			return err
		}

		if err := s.appointmentRepo.Update(txCtx, a); err != nil {
			s.logger.Error("Update: repository error for appointment=%s: %v", a.Name, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}

		return s.syncCalendarEvent(txCtx, a)
	})
	if err != nil {
		return nil, err
	}

	return &SaveResult{Appointment: a, Warnings: warnings}, nil
}

// Get получает встречу с данными для карточки
// Для черновика заполняются недостающие поля
func (s *Service) Get(ctx context.Context, name string) (*Details, error) {
	a, err := s.get(ctx, "Get", name)
	if err != nil {
		return nil, err
	}

	if a.DocStatus.IsDraft() {
		if err := s.SetMissingValues(ctx, a); err != nil {
			s.logger.Warn("Get: appointment=%s missing values not set: %v", name, err)
		}
	}

	now := s.timeProvider.Now()
	canNotify := make(map[domain.NotificationType]bool, len(notificationTypes))
	for _, t := range notificationTypes {
		canNotify[t] = a.ValidateNotification(t, now) == nil
	}

	counts, err := s.notifier.Counts(ctx, domain.DoctypeAppointment, name)
	if err != nil {
		return nil, err
	}

	details := &Details{
		Appointment:        a,
		CanNotify:          canNotify,
		NotificationCounts: counts,
	}

	if a.ScheduledDate != nil && a.AppointmentType != "" {
		if details.Timeslots, err = s.timeslots.Timeslots(ctx, *a.ScheduledDate, a.AppointmentType, a.Name); err != nil {
			return nil, err
		}
	}

	if details.ScheduledReminder, err = s.ReminderSchedule(ctx, a); err != nil {
		return nil, err
	}

	return details, nil
}

// Delete удаляет черновик встречи
// Статусы предыдущей встречи и возможности пересчитываются
func (s *Service) Delete(ctx context.Context, name string, opts SaveOptions) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		a, err := s.get(txCtx, "Delete", name)
		if err != nil {
			return err
		}
		if !a.DocStatus.IsDraft() {
			s.logger.Warn("Delete: appointment=%s is %s", name, a.DocStatus)
			return ErrNotDraft
		}

		if err := s.appointmentRepo.Delete(txCtx, name); err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			s.logger.Error("Delete: repository error for appointment=%s: %v", name, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}

		if err := s.refreshPreviousAppointment(txCtx, a, opts); err != nil {
			return err
		}
		return s.refreshOpportunity(txCtx, a)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Delete: appointment=%s deleted", name)
	return nil
}

// Reschedule черновик встречи, заменяющей указанную
func (s *Service) Reschedule(ctx context.Context, name string) (*domain.Appointment, error) {
	a, err := s.get(ctx, "Reschedule", name)
	if err != nil {
		return nil, err
	}

	next := a.NewRescheduled()
	if err := s.SetMissingValues(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Events встречи за период для календаря
func (s *Service) Events(ctx context.Context, start, end time.Time) ([]domain.AppointmentEvent, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end is before start", ErrInvalidInput)
	}

	events, err := s.appointmentRepo.Events(ctx, start, end)
	if err != nil {
		s.logger.Error("Events: repository error: %v", err)
		return nil, fmt.Errorf("%w: Events - repository error: %v", ErrInternal, err)
	}
	return events, nil
}

// SalesPersonQuery продавцы для выбора во встрече
// Ограничивается продавцами типа встречи, при заданном слоте показывает занятость
func (s *Service) SalesPersonQuery(ctx context.Context, appointmentType string, q domain.SalesPersonQuery) ([]domain.SalesPersonOption, error) {
	t, err := s.getType(ctx, appointmentType)
	if err != nil {
		return nil, err
	}
	if t != nil {
		q.Allowed = t.SalesPersons
	}

	if q.Limit == 0 || q.Limit > domain.MaxPageLength {
		q.Limit = domain.DefaultPageLength
	}
	if q.Start != nil && q.End == nil {
		end := *q.Start
		q.End = &end
	}

	options, err := s.salesPersonRepo.SearchWithAvailability(ctx, q)
	if err != nil {
		s.logger.Error("SalesPersonQuery: repository error: %v", err)
		return nil, fmt.Errorf("%w: SalesPersonQuery - repository error: %v", ErrInternal, err)
	}
	return options, nil
}

func (s *Service) get(ctx context.Context, op, name string) (*domain.Appointment, error) {
	a, err := s.appointmentRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment=%s not found", op, name)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment=%s: %v", op, name, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return a, nil
}

// getType тип встречи, nil для пустого имени
func (s *Service) getType(ctx context.Context, name string) (*domain.AppointmentType, error) {
	if name == "" {
		return nil, nil
	}

	t, err := s.appointmentTypeRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, appointmentTypeRepo.ErrAppointmentTypeNotFound) {
			return nil, domain.Invalid("Appointment Type %s does not exist", name)
		}
		s.logger.Error("getType: repository error for appointment type=%s: %v", name, err)
		return nil, fmt.Errorf("%w: getType - repository error: %v", ErrInternal, err)
	}
	return t, nil
}
