package statussync

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	opportunityRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/opportunity"
)

// Service пересчитывает статусы лидов и возможностей по связанным документам
type Service struct {
	leadRepo          LeadRepository
	opportunityRepo   OpportunityRepository
	appointmentRepo   AppointmentRepository
	communicationRepo CommunicationRepository
	timeProvider      domain.TimeProvider
	logger            Logger
}

// NewService создает новый экземпляр сервиса статусов
func NewService(
	leadRepo LeadRepository,
	opportunityRepo OpportunityRepository,
	appointmentRepo AppointmentRepository,
	communicationRepo CommunicationRepository,
	timeProvider domain.TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		leadRepo:          leadRepo,
		opportunityRepo:   opportunityRepo,
		appointmentRepo:   appointmentRepo,
		communicationRepo: communicationRepo,
		timeProvider:      timeProvider,
		logger:            logger,
	}
}

// LeadFacts факты о возможностях лида
func (s *Service) LeadFacts(ctx context.Context, lead string) (domain.LeadStatusFacts, error) {
	facts, err := s.opportunityRepo.PartyStatusFacts(ctx, domain.PartyTypeLead, lead)
	if err != nil {
		s.logger.Error("LeadFacts: repository error for lead=%s: %v", lead, err)
		return domain.LeadStatusFacts{}, fmt.Errorf("%w: LeadFacts - repository error: %v", ErrInternal, err)
	}
	return facts, nil
}

// RefreshLead пересчитывает и сохраняет статус лида
// explicit (если задан) применяется до карты статусов
func (s *Service) RefreshLead(ctx context.Context, name string, explicit domain.LeadStatus) (domain.LeadStatus, error) {
	lead, err := s.leadRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, leadRepo.ErrLeadNotFound) {
			s.logger.Warn("RefreshLead: lead=%s not found", name)
			return "", ErrLeadNotFound
		}
		s.logger.Error("RefreshLead: repository error for lead=%s: %v", name, err)
		return "", fmt.Errorf("%w: RefreshLead - repository error: %v", ErrInternal, err)
	}

	facts, err := s.LeadFacts(ctx, name)
	if err != nil {
		return "", err
	}

	status := domain.DeriveLeadStatus(lead.Status, explicit, facts)
	if status == lead.Status {
		return status, nil
	}

	if err := s.leadRepo.UpdateStatus(ctx, name, status); err != nil {
		s.logger.Error("RefreshLead: failed to update status of lead=%s: %v", name, err)
		return "", fmt.Errorf("%w: RefreshLead - update status: %v", ErrInternal, err)
	}

	s.logger.Info("RefreshLead: lead=%s status %s -> %s", name, lead.Status, status)
	return status, nil
}

// OpportunityFacts факты, определяющие статус возможности
// Котировки в сервисе не ведутся, поэтому их признаки всегда false
func (s *Service) OpportunityFacts(ctx context.Context, name string) (domain.OpportunityStatusFacts, error) {
	converted, err := s.appointmentRepo.ExistsSubmittedForOpportunity(ctx, name)
	if err != nil {
		s.logger.Error("OpportunityFacts: appointment lookup failed for opportunity=%s: %v", name, err)
		return domain.OpportunityStatusFacts{}, fmt.Errorf("%w: OpportunityFacts - appointment lookup: %v", ErrInternal, err)
	}

	hasCommunication, err := s.communicationRepo.HasNonAutomated(ctx, domain.DoctypeOpportunity, name)
	if err != nil {
		s.logger.Error("OpportunityFacts: communication lookup failed for opportunity=%s: %v", name, err)
		return domain.OpportunityStatusFacts{}, fmt.Errorf("%w: OpportunityFacts - communication lookup: %v", ErrInternal, err)
	}

	return domain.OpportunityStatusFacts{
		IsConverted:      converted,
		HasCommunication: hasCommunication,
	}, nil
}

// RefreshOpportunity пересчитывает статус возможности, сохраняет его и обновляет статус лида
func (s *Service) RefreshOpportunity(ctx context.Context, name string, explicit domain.OpportunityStatus) (*domain.Opportunity, error) {
	opp, err := s.opportunityRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, opportunityRepo.ErrOpportunityNotFound) {
			s.logger.Warn("RefreshOpportunity: opportunity=%s not found", name)
			return nil, ErrOpportunityNotFound
		}
		s.logger.Error("RefreshOpportunity: repository error for opportunity=%s: %v", name, err)
		return nil, fmt.Errorf("%w: RefreshOpportunity - repository error: %v", ErrInternal, err)
	}

	facts, err := s.OpportunityFacts(ctx, name)
	if err != nil {
		return nil, err
	}

	previous := opp.Status
	opp.DeriveStatus(explicit, facts, s.timeProvider.Now())

	if opp.Status != previous {
		if err := s.opportunityRepo.UpdateStatus(ctx, name, opp.Status); err != nil {
			s.logger.Error("RefreshOpportunity: failed to update status of opportunity=%s: %v", name, err)
			return nil, fmt.Errorf("%w: RefreshOpportunity - update status: %v", ErrInternal, err)
		}
		s.logger.Info("RefreshOpportunity: opportunity=%s status %s -> %s", name, previous, opp.Status)
	}

	if err := s.RefreshOpportunityParty(ctx, opp); err != nil {
		return nil, err
	}
	return opp, nil
}

// RefreshOpportunityParty обновляет статус лида, для которого создана возможность
func (s *Service) RefreshOpportunityParty(ctx context.Context, opp *domain.Opportunity) error {
	return s.refreshParty(ctx, opp, "")
}

// ResetOpportunityParty выставляет лиду явный статус после удаления возможности
func (s *Service) ResetOpportunityParty(ctx context.Context, opp *domain.Opportunity, status domain.LeadStatus) error {
	return s.refreshParty(ctx, opp, status)
}

func (s *Service) refreshParty(ctx context.Context, opp *domain.Opportunity, explicit domain.LeadStatus) error {
	if opp.OpportunityFrom != domain.PartyTypeLead || opp.PartyName == "" {
		return nil
	}

	_, err := s.RefreshLead(ctx, opp.PartyName, explicit)
	if errors.Is(err, ErrLeadNotFound) {
		return nil
	}
	return err
}
