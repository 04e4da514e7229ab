package appointmenttypes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CRM/internal/domain"
	appointmentTypeRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointmenttype"
	salesPersonRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/salesperson"
	"github.com/m04kA/SMC-CRM/internal/service/appointmenttypes/models"
)

// Service сервис для работы с типами встреч
type Service struct {
	appointmentTypeRepo AppointmentTypeRepository
	salesPersonRepo     SalesPersonRepository
	txManager           TransactionManager
	logger              Logger
}

// NewService создает новый экземпляр сервиса типов встреч
func NewService(
	appointmentTypeRepo AppointmentTypeRepository,
	salesPersonRepo SalesPersonRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentTypeRepo: appointmentTypeRepo,
		salesPersonRepo:     salesPersonRepo,
		txManager:           txManager,
		logger:              logger,
	}
}

// Create создает новый тип встречи
// Проверяет параметры расписания и существование продавцов
func (s *Service) Create(ctx context.Context, req *models.CreateAppointmentTypeRequest) (*models.AppointmentTypeResponse, error) {
	s.logger.Info("Create: creating appointment type=%q", req.Name)

	// 1. Конвертируем и валидируем входные данные
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	t, err := req.ToDomain()
	if err != nil {
		s.logger.Warn("Create: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := validateTypeData(t); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	// 2. Сохраняем в транзакции вместе с расписанием
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.validateSalesPersons(txCtx, t.SalesPersons); err != nil {
			return err
		}

		if _, err := s.appointmentTypeRepo.Create(txCtx, t); err != nil {
			if errors.Is(err, appointmentTypeRepo.ErrDuplicateAppointmentType) {
				s.logger.Warn("Create: appointment type=%q already exists", t.Name)
				return ErrAppointmentTypeAlreadyExists
			}
			s.logger.Error("Create: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: successfully created appointment type=%q", t.Name)
	return models.FromDomain(t), nil
}

// Get получает тип встречи по имени
func (s *Service) Get(ctx context.Context, name string) (*models.AppointmentTypeResponse, error) {
	t, err := s.get(ctx, "Get", name)
	if err != nil {
		return nil, err
	}
	return models.FromDomain(t), nil
}

// List возвращает имена всех типов встреч
func (s *Service) List(ctx context.Context) (*models.AppointmentTypeListResponse, error) {
	names, err := s.appointmentTypeRepo.ListNames(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return &models.AppointmentTypeListResponse{Names: names}, nil
}

// Update обновляет существующий тип встречи
// Поддерживает частичное обновление - обновляются только указанные поля
func (s *Service) Update(ctx context.Context, name string, req *models.UpdateAppointmentTypeRequest) (*models.AppointmentTypeResponse, error) {
	s.logger.Info("Update: updating appointment type=%q", name)

	var t *domain.AppointmentType
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Получаем существующий тип
		var err error
		if t, err = s.get(txCtx, "Update", name); err != nil {
			return err
		}

		// 2. Применяем обновления и валидируем
		if err := req.ApplyTo(t); err != nil {
			s.logger.Warn("Update: invalid request for appointment type=%q: %v", name, err)
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := validateTypeData(t); err != nil {
			s.logger.Warn("Update: validation failed for appointment type=%q: %v", name, err)
			return err
		}
		if req.SalesPersons != nil {
			if err := s.validateSalesPersons(txCtx, t.SalesPersons); err != nil {
				return err
			}
		}

		// 3. Сохраняем
		if err := s.appointmentTypeRepo.Update(txCtx, t); err != nil {
			if errors.Is(err, appointmentTypeRepo.ErrAppointmentTypeNotFound) {
				return ErrAppointmentTypeNotFound
			}
			s.logger.Error("Update: repository error for appointment type=%q: %v", name, err)
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: successfully updated appointment type=%q", name)
	return models.FromDomain(t), nil
}

// Delete удаляет тип встречи
// Уже созданные встречи сохраняют имя типа
func (s *Service) Delete(ctx context.Context, name string) error {
	s.logger.Info("Delete: deleting appointment type=%q", name)

	if err := s.appointmentTypeRepo.Delete(ctx, name); err != nil {
		if errors.Is(err, appointmentTypeRepo.ErrAppointmentTypeNotFound) {
			s.logger.Warn("Delete: appointment type=%q not found", name)
			return ErrAppointmentTypeNotFound
		}
		s.logger.Error("Delete: repository error for appointment type=%q: %v", name, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted appointment type=%q", name)
	return nil
}

// Вспомогательные методы

func (s *Service) get(ctx context.Context, op, name string) (*domain.AppointmentType, error) {
	t, err := s.appointmentTypeRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, appointmentTypeRepo.ErrAppointmentTypeNotFound) {
			s.logger.Warn("%s: appointment type=%q not found", op, name)
			return nil, ErrAppointmentTypeNotFound
		}
		s.logger.Error("%s: repository error for appointment type=%q: %v", op, name, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return t, nil
}

// validateSalesPersons проверяет, что продавцы существуют и не являются группами
func (s *Service) validateSalesPersons(ctx context.Context, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: sales person %s is listed twice", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}

		sp, err := s.salesPersonRepo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, salesPersonRepo.ErrSalesPersonNotFound) {
				return fmt.Errorf("%w: sales person %s does not exist", ErrInvalidInput, name)
			}
			s.logger.Error("validateSalesPersons: repository error for sales person=%s: %v", name, err)
			return fmt.Errorf("%w: validateSalesPersons - repository error: %v", ErrInternal, err)
		}
		if sp.IsGroup {
			return fmt.Errorf("%w: sales person %s is a group", ErrInvalidInput, name)
		}
	}
	return nil
}

// validateTypeData валидирует параметры типа встречи
func validateTypeData(t *domain.AppointmentType) error {
	// Длительность не больше суток
	if t.AppointmentDuration < 0 || t.AppointmentDuration > 1440 {
		return fmt.Errorf("%w: appointmentDuration must be between 0 and 1440", ErrInvalidInput)
	}

	if t.NumberOfAgents < 0 {
		return fmt.Errorf("%w: numberOfAgents must not be negative", ErrInvalidInput)
	}

	if t.AdvanceBookingDays < 0 || t.AdvanceBookingDays > 365 {
		return fmt.Errorf("%w: advanceBookingDays must be between 0 and 365", ErrInvalidInput)
	}

	for i, row := range t.Timeslots {
		if err := row.FromTime.Validate(); err != nil {
			return fmt.Errorf("%w: timeslot #%d: %v", ErrInvalidInput, i+1, err)
		}
		if err := row.ToTime.Validate(); err != nil {
			return fmt.Errorf("%w: timeslot #%d: %v", ErrInvalidInput, i+1, err)
		}
		if !row.FromTime.IsBefore(row.ToTime) {
			return fmt.Errorf("%w: timeslot #%d: from time must be before to time", ErrInvalidInput, i+1)
		}
	}

	days := make(map[string]struct{}, len(t.Holidays))
	for i, h := range t.Holidays {
		key := h.Date.Format(domain.DateFormat)
		if _, ok := days[key]; ok {
			return fmt.Errorf("%w: holiday #%d: date %s is listed twice", ErrInvalidInput, i+1, key)
		}
		days[key] = struct{}{}
	}

	return nil
}
