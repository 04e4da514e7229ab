package book_appointment

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/appointments"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
)

// UseCase use case для записи клиента на встречу
// Встреча создаётся и сразу подтверждается, при необходимости создаётся лид
type UseCase struct {
	leadService        LeadService
	appointmentService AppointmentService
	txManager          TransactionManager
	timeProvider       domain.TimeProvider
	logger             Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	leadService LeadService,
	appointmentService AppointmentService,
	txManager TransactionManager,
	timeProvider domain.TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		leadService:        leadService,
		appointmentService: appointmentService,
		txManager:          txManager,
		timeProvider:       timeProvider,
		logger:             logger,
	}
}

// Execute выполняет use case записи
// Использует сериализуемую транзакцию, чтобы два клиента не заняли последнее место в слоте
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: party=%q, type=%s, date=%s, time=%s, user=%s",
		req.PartyName, req.AppointmentType, req.Date.Format(domain.DateFormat), req.StartTime, req.User)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Время встречи не в прошлом
	scheduled := req.StartTime.On(domain.DateOnly(req.Date))
	if err := validateBookingTime(scheduled, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("BookAppointment: %s is in the past", scheduled.Format(domain.DateTimeFormat))
		return nil, err
	}

	resp := &Response{}
	opts := appointments.SaveOptions{User: req.User}

	// 3. Операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Лид
		partyName := req.PartyName
		if partyName == "" {
			lead, err := uc.leadService.Create(txCtx, &domain.Lead{
				LeadName: req.CustomerName,
				MobileNo: req.ContactMobile,
				EmailID:  req.ContactEmail,
				Notes:    req.Description,
			}, leads.SaveOptions{})
			if err != nil {
				uc.logger.Warn("BookAppointment: failed to create lead for %q: %v", req.CustomerName, err)
				return err
			}
			partyName = lead.Name
			resp.LeadCreated = true
		}

		// 3.2. Черновик встречи
		created, err := uc.appointmentService.Create(txCtx, &domain.Appointment{
			AppointmentType:   req.AppointmentType,
			AppointmentFor:    domain.PartyTypeLead,
			PartyName:         partyName,
			ScheduledDt:       &scheduled,
			SalesPerson:       req.SalesPerson,
			Opportunity:       req.Opportunity,
			AppointmentSource: req.AppointmentSource,
			Remarks:           req.Remarks,
			Description:       req.Description,
		}, opts)
		if err != nil {
			return err
		}

		// 3.3. Подтверждение
		submitted, err := uc.appointmentService.Submit(txCtx, created.Appointment.Name, opts)
		if err != nil {
			return err
		}

		resp.Appointment = submitted.Appointment
		resp.Warnings = submitted.Warnings
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("BookAppointment: appointment=%s booked for lead=%s, status=%s",
		resp.Appointment.Name, resp.Appointment.PartyName, resp.Appointment.Status)
	return resp, nil
}
