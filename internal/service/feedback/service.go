package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CRM/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/appointment"
	feedbackRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/feedback"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	opportunityRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/opportunity"
)

// Service сервис отзывов клиентов
type Service struct {
	feedbackRepo      FeedbackRepository
	communicationRepo CommunicationRepository
	leadRepo          LeadRepository
	opportunityRepo   OpportunityRepository
	appointmentRepo   AppointmentRepository
	txManager         TransactionManager
	timeProvider      domain.TimeProvider
	logger            Logger
}

// NewService создает новый экземпляр сервиса отзывов
func NewService(
	feedbackRepo FeedbackRepository,
	communicationRepo CommunicationRepository,
	leadRepo LeadRepository,
	opportunityRepo OpportunityRepository,
	appointmentRepo AppointmentRepository,
	txManager TransactionManager,
	timeProvider domain.TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		feedbackRepo:      feedbackRepo,
		communicationRepo: communicationRepo,
		leadRepo:          leadRepo,
		opportunityRepo:   opportunityRepo,
		appointmentRepo:   appointmentRepo,
		txManager:         txManager,
		timeProvider:      timeProvider,
		logger:            logger,
	}
}

// Submit записывает отзыв или комментарий в единственную запись по документу-основанию
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	// 1. Валидация
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.Invalid("Message cannot be empty")
	}
	if req.ReferenceDoctype == "" || req.ReferenceName == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	s.logger.Info("Submit: %s for %s %s", kindName(req.Kind), req.ReferenceDoctype, req.ReferenceName)

	var saved *domain.CustomerFeedback
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2. Получаем запись по основанию или готовим новую
		f, prev, err := s.getOrMake(txCtx, req.ReferenceDoctype, req.ReferenceName)
		if err != nil {
			return err
		}

		// 3. Записываем сообщение
		now := s.timeProvider.Now()
		f.Record(req.Kind, message, now)

		// 4. Сохраняем и пишем коммуникации
		if err := s.save(txCtx, f, prev, req.User); err != nil {
			return err
		}
		saved = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		ContactRemarks:   saved.ContactRemarks,
		CustomerFeedback: saved.CustomerFeedback,
		ContactDt:        saved.ContactDt(),
		FeedbackDt:       saved.FeedbackDt(),
	}, nil
}

// Get получает отзыв по имени
func (s *Service) Get(ctx context.Context, name string) (*domain.CustomerFeedback, error) {
	f, err := s.feedbackRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, feedbackRepo.ErrFeedbackNotFound) {
			return nil, ErrFeedbackNotFound
		}
		s.logger.Error("Get: repository error for feedback=%s: %v", name, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}
	return f, nil
}

// GetByReference получает отзыв по документу-основанию
func (s *Service) GetByReference(ctx context.Context, doctype, name string) (*domain.CustomerFeedback, error) {
	f, err := s.feedbackRepo.GetByReference(ctx, doctype, name)
	if err != nil {
		if errors.Is(err, feedbackRepo.ErrFeedbackNotFound) {
			return nil, ErrFeedbackNotFound
		}
		s.logger.Error("GetByReference: repository error for %s %s: %v", doctype, name, err)
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}
	return f, nil
}

// getOrMake возвращает запись и её сохранённую копию (nil для новой)
func (s *Service) getOrMake(ctx context.Context, doctype, name string) (*domain.CustomerFeedback, *domain.CustomerFeedback, error) {
	f, err := s.feedbackRepo.GetByReference(ctx, doctype, name)
	if err == nil {
		prev := *f
		return f, &prev, nil
	}
	if !errors.Is(err, feedbackRepo.ErrFeedbackNotFound) {
		s.logger.Error("Submit: repository error for %s %s: %v", doctype, name, err)
		return nil, nil, fmt.Errorf("%w: Submit - repository error: %v", ErrInternal, err)
	}

	partyType, partyName, err := s.partyFromReference(ctx, doctype, name)
	if err != nil {
		return nil, nil, err
	}
	if partyName == "" {
		return nil, nil, domain.Invalid("Could not determine party from reference document %s %s", doctype, name)
	}

	f = &domain.CustomerFeedback{ReferenceDoctype: doctype, ReferenceName: name}
	f.SetParty(partyType, partyName)
	return f, nil, nil
}

// partyFromReference определяет сторону по документу-основанию
func (s *Service) partyFromReference(ctx context.Context, doctype, name string) (string, string, error) {
	switch doctype {
	case domain.DoctypeOpportunity:
		opp, err := s.opportunityRepo.GetByName(ctx, name)
		if err != nil {
			return "", "", s.referenceError(err, doctype, name, errors.Is(err, opportunityRepo.ErrOpportunityNotFound))
		}
		return opp.OpportunityFrom, opp.PartyName, nil

	case domain.DoctypeAppointment:
		apt, err := s.appointmentRepo.GetByName(ctx, name)
		if err != nil {
			return "", "", s.referenceError(err, doctype, name, errors.Is(err, appointmentRepo.ErrAppointmentNotFound))
		}
		return apt.AppointmentFor, apt.PartyName, nil

	case domain.DoctypeLead:
		lead, err := s.leadRepo.GetByName(ctx, name)
		if err != nil {
			return "", "", s.referenceError(err, doctype, name, errors.Is(err, leadRepo.ErrLeadNotFound))
		}
		return domain.DoctypeLead, lead.Name, nil
	}

	return "", "", fmt.Errorf("%w: unsupported reference type %s", ErrInvalidInput, doctype)
}

func (s *Service) referenceError(err error, doctype, name string, notFound bool) error {
	if notFound {
		return fmt.Errorf("%w: %s %s does not exist", ErrReferenceNotFound, doctype, name)
	}
	s.logger.Error("partyFromReference: repository error for %s %s: %v", doctype, name, err)
	return fmt.Errorf("%w: partyFromReference - repository error: %v", ErrInternal, err)
}

// save заполняет имя клиента, статус и пишет коммуникации по изменившимся полям
func (s *Service) save(ctx context.Context, f, prev *domain.CustomerFeedback, user string) error {
	if f.FeedbackFrom == "" || f.PartyName == "" {
		return domain.Invalid("Party is mandatory")
	}
	if f.FeedbackFrom != domain.PartyTypeLead {
		return &domain.ValidationError{
			Message: fmt.Sprintf("Party Type %s is not allowed", f.FeedbackFrom),
			Kind:    domain.ErrInvalidPartyType,
		}
	}

	lead, err := s.leadRepo.GetByName(ctx, f.PartyName)
	if err != nil {
		if errors.Is(err, leadRepo.ErrLeadNotFound) {
			return domain.Invalid("Lead %s does not exist", f.PartyName)
		}
		s.logger.Error("save: repository error for lead=%s: %v", f.PartyName, err)
		return fmt.Errorf("%w: save - repository error: %v", ErrInternal, err)
	}
	f.CustomerName = lead.CustomerName()
	f.Refresh()

	if f.IsNew() {
		if _, err := s.feedbackRepo.Create(ctx, f); err != nil {
			s.logger.Error("save: repository error: %v", err)
			return fmt.Errorf("%w: save - repository error: %v", ErrInternal, err)
		}
	} else if err := s.feedbackRepo.Update(ctx, f); err != nil {
		if errors.Is(err, feedbackRepo.ErrFeedbackNotFound) {
			return ErrFeedbackNotFound
		}
		s.logger.Error("save: repository error for feedback=%s: %v", f.Name, err)
		return fmt.Errorf("%w: save - repository error: %v", ErrInternal, err)
	}

	for _, c := range f.Communications(prev, user, s.timeProvider.Now()) {
		c := c
		if _, err := s.communicationRepo.Create(ctx, &c); err != nil {
			s.logger.Error("save: communication error for feedback=%s: %v", f.Name, err)
			return fmt.Errorf("%w: save - communication error: %v", ErrInternal, err)
		}
	}
	return nil
}

func kindName(kind string) string {
	if kind == domain.FeedbackKindFeedback {
		return "feedback"
	}
	return "remark"
}
