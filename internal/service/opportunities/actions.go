package opportunities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	mastersRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/masters"
)

// SetIsLost помечает возможность потерянной с причинами или открывает её снова
// Конвертированную возможность нельзя пометить потерянной
func (s *Service) SetIsLost(ctx context.Context, name string, isLost bool, reasons []string, detailedReason string, opts SaveOptions) (*domain.Opportunity, error) {
	s.logger.Info("SetIsLost: opportunity=%s is_lost=%t", name, isLost)

	var opp *domain.Opportunity
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		if opp, err = s.get(txCtx, "SetIsLost", name); err != nil {
			return err
		}
		return s.setIsLost(txCtx, opp, isLost, reasons, detailedReason, opts)
	})
	if err != nil {
		return nil, err
	}
	return opp, nil
}

func (s *Service) setIsLost(ctx context.Context, opp *domain.Opportunity, isLost bool, reasons []string, detailedReason string, opts SaveOptions) error {
	facts, err := s.statusSync.OpportunityFacts(ctx, opp.Name)
	if err != nil {
		return err
	}

	if err := opp.SetLost(isLost, facts.IsConverted, reasons, detailedReason); err != nil {
		return err
	}

	opts.IgnoreMandatory = true
	if err := s.save(ctx, opp, opts); err != nil {
		return err
	}

	s.logger.Info("setIsLost: opportunity=%s status=%s", opp.Name, opp.Status)
	return nil
}

// SetMultipleStatus проставляет статус нескольким возможностям
func (s *Service) SetMultipleStatus(ctx context.Context, names []string, status domain.OpportunityStatus, opts SaveOptions) error {
	if !status.IsValid() {
		return domain.Invalid("Status %q is not a valid Opportunity status", status)
	}

	for _, name := range names {
		err := s.txManager.Do(ctx, func(txCtx context.Context) error {
			opp, err := s.get(txCtx, "SetMultipleStatus", name)
			if err != nil {
				return err
			}
			opp.Status = status
			return s.save(txCtx, opp, opts)
		})
		if err != nil {
			return err
		}
	}

	s.logger.Info("SetMultipleStatus: %d opportunities set to %s", len(names), status)
	return nil
}

// ScheduleFollowUp добавляет follow up на дату или обновляет уже запланированный
func (s *Service) ScheduleFollowUp(ctx context.Context, name string, date *time.Time, toDiscuss string, opts SaveOptions) (*domain.Opportunity, error) {
	if date == nil || date.IsZero() {
		return nil, domain.Invalid("Follow Up Date is mandatory")
	}
	if domain.DateOnly(*date).Before(domain.DateOnly(s.timeProvider.Now())) {
		return nil, domain.Invalid("Cannot schedule follow up for past date")
	}

	var opp *domain.Opportunity
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		if opp, err = s.get(txCtx, "ScheduleFollowUp", name); err != nil {
			return err
		}
		if err := opp.AddFollowUp(*date, domain.CleanWhitespace(toDiscuss)); err != nil {
			return err
		}
		return s.save(txCtx, opp, opts)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ScheduleFollowUp: opportunity=%s follow up on %s", name, date.Format(domain.DateFormat))
	return opp, nil
}

// SubmitCommunication записывает коммуникацию с клиентом по возможности
// При UpdateFollowUp отмечает дату контакта в первом незакрытом follow up
func (s *Service) SubmitCommunication(ctx context.Context, req SubmitCommunicationRequest, opts SaveOptions) (*domain.Opportunity, error) {
	remarks := domain.CleanWhitespace(req.Remarks)
	if remarks == "" {
		return nil, domain.Invalid("Remarks are mandatory for Communication")
	}

	var opp *domain.Opportunity
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		if opp, err = s.get(txCtx, "SubmitCommunication", req.Name); err != nil {
			return err
		}
		return s.submitCommunication(txCtx, opp, remarks, req.ContactDate, req.UpdateFollowUp, opts)
	})
	if err != nil {
		return nil, err
	}
	return opp, nil
}

func (s *Service) submitCommunication(ctx context.Context, opp *domain.Opportunity, remarks string, contactDate time.Time, updateFollowUp bool, opts SaveOptions) error {
	now := s.timeProvider.Now()
	if contactDate.IsZero() {
		contactDate = now
	}

	if err := s.createCommunication(ctx, opp, remarks, contactDate, opts.User); err != nil {
		return err
	}

	if updateFollowUp && opp.SetFollowUpContactDate(contactDate) {
		opts.IgnoreMandatory = true
		return s.save(ctx, opp, opts)
	}

	// Коммуникация меняет статус Open на Replied
	refreshed, err := s.statusSync.RefreshOpportunity(ctx, opp.Name, "")
	if err != nil {
		return err
	}
	*opp = *refreshed
	return nil
}

func (s *Service) createCommunication(ctx context.Context, opp *domain.Opportunity, remarks string, date time.Time, user string) error {
	comm := &domain.Communication{
		ReferenceDoctype:  domain.DoctypeOpportunity,
		ReferenceName:     opp.Name,
		CommunicationType: domain.CommunicationTypeFeedback,
		Subject:           communicationSubject,
		Content:           remarks,
		Sender:            user,
		SentOrReceived:    domain.CommunicationReceived,
		CommunicationDate: date,
	}
	comm.AddLink(opp.OpportunityFrom, opp.PartyName)

	if _, err := s.communicationRepo.Create(ctx, comm); err != nil {
		s.logger.Error("createCommunication: repository error for opportunity=%s: %v", opp.Name, err)
		return fmt.Errorf("%w: createCommunication - repository error: %v", ErrInternal, err)
	}
	return nil
}

// SubmitCommunicationWithAction записывает коммуникацию и выполняет действие по возможности
func (s *Service) SubmitCommunicationWithAction(ctx context.Context, req SubmitWithActionRequest, opts SaveOptions) (*SubmitWithActionResult, error) {
	remarks := domain.CleanWhitespace(req.Remarks)
	if remarks == "" {
		return nil, domain.Invalid("Remarks are mandatory for Communication")
	}

	switch req.Action {
	case "", domain.ActionScheduleFollowUp, domain.ActionMarkAsLost, domain.ActionMarkAsClosed, domain.ActionCreateAppointment:
	default:
		return nil, domain.Invalid("Invalid Action %q", req.Action)
	}

	now := s.timeProvider.Now()
	today := domain.DateOnly(now)
	result := &SubmitWithActionResult{Opportunity: req.Name}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		opp, err := s.get(txCtx, "SubmitCommunicationWithAction", req.Name)
		if err != nil {
			return err
		}

		// 1. Закрытые возможности не принимают коммуникации
		if opp.Status == domain.OpportunityStatusLost || opp.Status == domain.OpportunityStatusConverted {
			return domain.Invalid("Opportunity is already %s", opp.Status)
		}

		// 2. Отметка контакта в графике
		opp.SetFollowUpContactDate(today)

		// 3. Действие
		switch req.Action {
		case domain.ActionScheduleFollowUp:
			if req.FollowUpDate == nil || req.FollowUpDate.IsZero() {
				return domain.Invalid("Follow Up Date is mandatory")
			}
			if domain.DateOnly(*req.FollowUpDate).Before(today) {
				return domain.Invalid("Cannot schedule follow up for past date")
			}
			if err := opp.AddFollowUp(*req.FollowUpDate, remarks); err != nil {
				return err
			}

		case domain.ActionMarkAsLost:
			facts, err := s.statusSync.OpportunityFacts(txCtx, opp.Name)
			if err != nil {
				return err
			}
			if err := opp.SetLost(true, facts.IsConverted, req.LostReasons, remarks); err != nil {
				return err
			}

		case domain.ActionMarkAsClosed:
			opp.Status = domain.OpportunityStatusClosed

		case domain.ActionCreateAppointment:
			appointment, err := s.makeAppointment(txCtx, opp)
			if err != nil {
				return err
			}
			result.Appointment = appointment
		}

		// 4. Коммуникация и сохранение
		if err := s.createCommunication(txCtx, opp, remarks, now, opts.User); err != nil {
			return err
		}

		opts.IgnoreMandatory = true
		return s.save(txCtx, opp, opts)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("SubmitCommunicationWithAction: opportunity=%s action=%q", req.Name, req.Action)
	return result, nil
}

// MakeAppointment черновик встречи для возможности
func (s *Service) MakeAppointment(ctx context.Context, name string) (*domain.Appointment, error) {
	opp, err := s.get(ctx, "MakeAppointment", name)
	if err != nil {
		return nil, err
	}
	return s.makeAppointment(ctx, opp)
}

func (s *Service) makeAppointment(ctx context.Context, opp *domain.Opportunity) (*domain.Appointment, error) {
	var appointmentType string
	if opp.OpportunityType != "" {
		oppType, err := s.mastersRepo.GetOpportunityType(ctx, opp.OpportunityType)
		switch {
		case err == nil:
			appointmentType = oppType.DefaultAppointmentType
		case errors.Is(err, mastersRepo.ErrNotFound):
			s.logger.Warn("makeAppointment: opportunity type=%s not found", opp.OpportunityType)
		default:
			s.logger.Error("makeAppointment: repository error for opportunity type=%s: %v", opp.OpportunityType, err)
			return nil, fmt.Errorf("%w: makeAppointment - repository error: %v", ErrInternal, err)
		}
	}

	appointment := opp.NewAppointment(appointmentType)
	if err := s.drafter.SetMissingValues(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// FollowUpEvents запланированные follow up за период для календаря
func (s *Service) FollowUpEvents(ctx context.Context, start, end time.Time) ([]domain.OpportunityFollowUpEvent, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end is before start", ErrInvalidInput)
	}

	events, err := s.opportunityRepo.FollowUpEvents(ctx, start, end)
	if err != nil {
		s.logger.Error("FollowUpEvents: repository error: %v", err)
		return nil, fmt.Errorf("%w: FollowUpEvents - repository error: %v", ErrInternal, err)
	}
	return events, nil
}
