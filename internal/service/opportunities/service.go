package opportunities

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	opportunityRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/opportunity"
	salesPersonRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/salesperson"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
)

// Service сервис для работы с возможностями
type Service struct {
	opportunityRepo   OpportunityRepository
	leadRepo          LeadRepository
	salesPersonRepo   SalesPersonRepository
	mastersRepo       MastersRepository
	communicationRepo CommunicationRepository
	statusSync        StatusSync
	notifier          Notifier
	drafter           AppointmentDrafter
	txManager         TransactionManager
	settings          domain.CRMSettings
	timeProvider      domain.TimeProvider
	logger            Logger
}

// NewService создает новый экземпляр сервиса возможностей
func NewService(
	opportunityRepo OpportunityRepository,
	leadRepo LeadRepository,
	salesPersonRepo SalesPersonRepository,
	mastersRepo MastersRepository,
	communicationRepo CommunicationRepository,
	statusSync StatusSync,
	notifier Notifier,
	drafter AppointmentDrafter,
	txManager TransactionManager,
	settings domain.CRMSettings,
	timeProvider domain.TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		opportunityRepo:   opportunityRepo,
		leadRepo:          leadRepo,
		salesPersonRepo:   salesPersonRepo,
		mastersRepo:       mastersRepo,
		communicationRepo: communicationRepo,
		statusSync:        statusSync,
		notifier:          notifier,
		drafter:           drafter,
		txManager:         txManager,
		settings:          settings,
		timeProvider:      timeProvider,
		logger:            logger,
	}
}

// Create валидирует и создает возможность
// После вставки обновляет статус лида и ставит в очередь приветственное уведомление
func (s *Service) Create(ctx context.Context, opp *domain.Opportunity, opts SaveOptions) (*domain.Opportunity, error) {
	s.logger.Info("Create: creating opportunity for %s %s by user=%s", opp.OpportunityFrom, opp.PartyName, opts.User)

	opp.Name = ""
	for i := range opp.ContactSchedule {
		opp.ContactSchedule[i].IsNew = true
	}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.validate(txCtx, opp, opts); err != nil {
			return err
		}

		if _, err := s.opportunityRepo.Create(txCtx, opp); err != nil {
			s.logger.Error("Create: repository error: %v", err)
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}

		if err := s.statusSync.RefreshOpportunityParty(txCtx, opp); err != nil {
			return err
		}

		return s.sendGreeting(txCtx, opp)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: opportunity=%s created with status=%s", opp.Name, opp.Status)
	return opp, nil
}

// Update валидирует и сохраняет возможность
// Строки графика без ID считаются добавленными в этом сохранении
func (s *Service) Update(ctx context.Context, opp *domain.Opportunity, opts SaveOptions) (*domain.Opportunity, error) {
	s.logger.Info("Update: updating opportunity=%s by user=%s", opp.Name, opts.User)

	if opp.Name == "" {
		return nil, fmt.Errorf("%w: opportunity name is required", ErrInvalidInput)
	}
	for i := range opp.ContactSchedule {
		opp.ContactSchedule[i].IsNew = opp.ContactSchedule[i].ID == 0
	}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		stored, err := s.get(txCtx, "Update", opp.Name)
		if err != nil {
			return err
		}
		opp.Owner = stored.Owner
		opp.CreatedAt = stored.CreatedAt

		return s.save(txCtx, opp, opts)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Update: opportunity=%s saved with status=%s", opp.Name, opp.Status)
	return opp, nil
}

// Get получает возможность с признаками доступных уведомлений и их счётчиками
func (s *Service) Get(ctx context.Context, name string) (*Details, error) {
	opp, err := s.get(ctx, "Get", name)
	if err != nil {
		return nil, err
	}

	counts, err := s.notifier.Counts(ctx, domain.DoctypeOpportunity, name)
	if err != nil {
		return nil, err
	}

	canNotify := make(map[domain.NotificationType]bool, len(notificationTypes))
	for _, t := range notificationTypes {
		canNotify[t] = opp.CanNotify(t) == nil
	}

	return &Details{
		Opportunity:        opp,
		CanNotify:          canNotify,
		NotificationCounts: counts,
	}, nil
}

// Delete удаляет возможность и возвращает лиду статус Interested
func (s *Service) Delete(ctx context.Context, name string) error {
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		opp, err := s.get(txCtx, "Delete", name)
		if err != nil {
			return err
		}

		if err := s.opportunityRepo.Delete(txCtx, name); err != nil {
			if errors.Is(err, opportunityRepo.ErrOpportunityNotFound) {
				return ErrOpportunityNotFound
			}
			s.logger.Error("Delete: repository error for opportunity=%s: %v", name, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}

		return s.statusSync.ResetOpportunityParty(txCtx, opp, domain.LeadStatusInterested)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Delete: opportunity=%s deleted", name)
	return nil
}

// CustomerDetails поля стороны (лида) для возможности
func (s *Service) CustomerDetails(ctx context.Context, partyType, partyName string) (*domain.CustomerDetails, error) {
	lead, err := s.party(ctx, partyType, partyName)
	if err != nil {
		return nil, err
	}
	details := domain.CustomerDetailsFromLead(lead)
	return &details, nil
}

// save валидирует существующую возможность, сохраняет её и обновляет статус лида
func (s *Service) save(ctx context.Context, opp *domain.Opportunity, opts SaveOptions) error {
	if err := s.validate(ctx, opp, opts); err != nil {
		return err
	}

	if err := s.opportunityRepo.Update(ctx, opp); err != nil {
		if errors.Is(err, opportunityRepo.ErrOpportunityNotFound) {
			return ErrOpportunityNotFound
		}
		s.logger.Error("save: repository error for opportunity=%s: %v", opp.Name, err)
		return fmt.Errorf("%w: save - repository error: %v", ErrInternal, err)
	}

	return s.statusSync.RefreshOpportunityParty(ctx, opp)
}

// validate заполняет недостающие поля и проверяет возможность перед сохранением
func (s *Service) validate(ctx context.Context, opp *domain.Opportunity, opts SaveOptions) error {
	now := s.timeProvider.Now()

	// 1. Данные клиента из лида
	lead, err := s.party(ctx, opp.OpportunityFrom, opp.PartyName)
	if err != nil {
		return err
	}
	opp.ApplyCustomerDetails(domain.CustomerDetailsFromLead(lead))

	// 2. Продавец по умолчанию - продавец текущего пользователя
	if opp.SalesPerson == "" && opp.Name == "" && opts.User != "" {
		salesPerson, err := s.salesPersonRepo.FindByUser(ctx, opts.User)
		if err != nil {
			s.logger.Error("validate: sales person lookup failed for user=%s: %v", opts.User, err)
			return fmt.Errorf("%w: validate - sales person lookup: %v", ErrInternal, err)
		}
		opp.SalesPerson = salesPerson
	}

	if err := s.setSalesPersonDetails(ctx, opp); err != nil {
		return err
	}

	// 3. Контактный номер
	if s.settings.OpportunityContactNoMandatory && !opts.IgnoreMandatory && opp.ContactPhone == "" && opp.ContactMobile == "" {
		return domain.Invalid("Contact No is mandatory")
	}

	// 4. График follow up
	if err := opp.ValidateFollowUps(now); err != nil {
		return err
	}

	// 5. Статус и заголовок
	if opp.Status != "" && !opp.Status.IsValid() {
		return domain.Invalid("Status %q is not a valid Opportunity status", opp.Status)
	}
	if opp.TransactionDate.IsZero() {
		opp.TransactionDate = domain.DateOnly(now)
	}

	var facts domain.OpportunityStatusFacts
	if opp.Name != "" {
		if facts, err = s.statusSync.OpportunityFacts(ctx, opp.Name); err != nil {
			return err
		}
	}
	opp.DeriveStatus("", facts, now)
	opp.SetTitle()

	return nil
}

func (s *Service) setSalesPersonDetails(ctx context.Context, opp *domain.Opportunity) error {
	opp.SalesPersonMobileNo = ""
	opp.SalesPersonEmail = ""

	if opp.SalesPerson == "" {
		return nil
	}

	sp, err := s.salesPersonRepo.GetByName(ctx, opp.SalesPerson)
	if err != nil {
		if errors.Is(err, salesPersonRepo.ErrSalesPersonNotFound) {
			return domain.Invalid("Sales Person %s does not exist", opp.SalesPerson)
		}
		s.logger.Error("setSalesPersonDetails: repository error for sales person=%s: %v", opp.SalesPerson, err)
		return fmt.Errorf("%w: setSalesPersonDetails - repository error: %v", ErrInternal, err)
	}

	opp.SalesPersonMobileNo = sp.ContactMobile
	opp.SalesPersonEmail = sp.ContactEmail
	return nil
}

// party лид, для которого создаётся возможность
func (s *Service) party(ctx context.Context, partyType, partyName string) (*domain.Lead, error) {
	if partyType == "" || partyName == "" {
		return nil, domain.Invalid("Party is mandatory")
	}
	if !domain.IsAllowedPartyType(partyType) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Opportunity From must be %s", domain.CommaAnd(domain.AllowedPartyTypes)),
			Kind:    domain.ErrInvalidPartyType,
		}
	}

	lead, err := s.leadRepo.GetByName(ctx, partyName)
	if err != nil {
		if errors.Is(err, leadRepo.ErrLeadNotFound) {
			s.logger.Warn("party: lead=%s not found", partyName)
			return nil, ErrLeadNotFound
		}
		s.logger.Error("party: repository error for lead=%s: %v", partyName, err)
		return nil, fmt.Errorf("%w: party - repository error: %v", ErrInternal, err)
	}
	return lead, nil
}

func (s *Service) get(ctx context.Context, op, name string) (*domain.Opportunity, error) {
	opp, err := s.opportunityRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, opportunityRepo.ErrOpportunityNotFound) {
			s.logger.Warn("%s: opportunity=%s not found", op, name)
			return nil, ErrOpportunityNotFound
		}
		s.logger.Error("%s: repository error for opportunity=%s: %v", op, name, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return opp, nil
}

func (s *Service) sendGreeting(ctx context.Context, opp *domain.Opportunity) error {
	if err := opp.CanNotify(domain.NotificationOpportunityGreeting); err != nil {
		return nil
	}

	_, err := s.notifier.EnqueueAutomated(ctx, notifications.Request{
		ReferenceDoctype: domain.DoctypeOpportunity,
		ReferenceName:    opp.Name,
		NotificationType: domain.NotificationOpportunityGreeting,
		Receiver:         opp.Receiver(),
		Party:            opp.PartyName,
	})
	return err
}
