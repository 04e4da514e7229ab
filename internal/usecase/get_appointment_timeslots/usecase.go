package get_appointment_timeslots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	appointmentTypeRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointmenttype"
)

// UseCase use case для получения слотов типа встречи на дату
type UseCase struct {
	appointmentRepo     AppointmentRepository
	appointmentTypeRepo AppointmentTypeRepository
	logger              Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	appointmentTypeRepo AppointmentTypeRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:     appointmentRepo,
		appointmentTypeRepo: appointmentTypeRepo,
		logger:              logger,
	}
}

// Execute выполняет use case получения слотов
// Без даты или типа встречи возвращается пустой ответ
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp := &Response{
		Date:            domain.DateOnly(req.Date),
		AppointmentType: req.AppointmentType,
		Timeslots:       []domain.TimeslotAvailability{},
	}
	if req.Date.IsZero() || req.AppointmentType == "" {
		return resp, nil
	}

	uc.logger.Info("GetAppointmentTimeslots: type=%s, date=%s, exclude=%s",
		req.AppointmentType, resp.Date.Format(domain.DateFormat), req.Exclude)

	// 1. Получаем тип встречи
	t, err := uc.appointmentTypeRepo.GetByName(ctx, req.AppointmentType)
	if err != nil {
		if errors.Is(err, appointmentTypeRepo.ErrAppointmentTypeNotFound) {
			uc.logger.Warn("GetAppointmentTimeslots: appointment type=%s not found", req.AppointmentType)
			return nil, ErrAppointmentTypeNotFound
		}
		uc.logger.Error("GetAppointmentTimeslots: failed to get appointment type=%s: %v", req.AppointmentType, err)
		return nil, fmt.Errorf("%w: failed to get appointment type: %v", ErrInternal, err)
	}

	// 2. Выходной день
	resp.Holiday = t.IsHoliday(resp.Date)

	// 3. Генерируем слоты по расписанию типа
	slots := t.GetTimeslots(resp.Date)
	if slots == nil {
		resp.Timeslots = nil
		return resp, nil
	}

	// 4. Считаем занятость каждого слота
	resp.Timeslots, err = uc.calculateAvailability(ctx, slots, t, req.Exclude)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("GetAppointmentTimeslots: generated %d slots for type=%s, date=%s",
		len(resp.Timeslots), t.Name, resp.Date.Format(domain.DateFormat))
	return resp, nil
}

// Timeslots слоты типа встречи на дату в виде, который показывается в карточке встречи
func (uc *UseCase) Timeslots(ctx context.Context, date time.Time, appointmentType, exclude string) (*domain.TimeslotsResult, error) {
	resp, err := uc.Execute(ctx, &Request{Date: date, AppointmentType: appointmentType, Exclude: exclude})
	if err != nil {
		return nil, err
	}
	return &domain.TimeslotsResult{Holiday: resp.Holiday, Timeslots: resp.Timeslots}, nil
}
