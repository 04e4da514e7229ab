package make_opportunity_from_lead_form

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
	"github.com/m04kA/SMC-CRM/internal/service/opportunities"
)

// UseCase обращение с сайта: лид, открытая возможность и входящая коммуникация
type UseCase struct {
	limiter            RateLimiter
	leadRepo           LeadRepository
	leadService        LeadService
	opportunityService OpportunityService
	communicationRepo  CommunicationRepository
	txManager          TransactionManager
	timeProvider       domain.TimeProvider
	settings           Settings
	logger             Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	limiter RateLimiter,
	leadRepo LeadRepository,
	leadService LeadService,
	opportunityService OpportunityService,
	communicationRepo CommunicationRepository,
	txManager TransactionManager,
	timeProvider domain.TimeProvider,
	settings Settings,
	logger Logger,
) *UseCase {
	return &UseCase{
		limiter:            limiter,
		leadRepo:           leadRepo,
		leadService:        leadService,
		opportunityService: opportunityService,
		communicationRepo:  communicationRepo,
		txManager:          txManager,
		timeProvider:       timeProvider,
		settings:           settings,
		logger:             logger,
	}
}

// Execute обрабатывает отправку формы
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	// 1. Лимит отправок с одного адреса
	info, err := uc.limiter.Allow(ctx, req.ClientIP)
	if err != nil {
		uc.logger.Error("Execute: rate limiter error for ip=%s: %v", req.ClientIP, err)
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrInternal, err)
	}
	if !info.Allowed {
		uc.logger.Warn("Execute: rate limit exceeded for ip=%s", req.ClientIP)
		return nil, ErrRateLimited
	}

	// 2. Валидация
	if err := validateRequest(&req); err != nil {
		uc.logger.Warn("Execute: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("Execute: lead form from sender=%s subject=%q", req.Sender, req.Subject)

	resp := &Response{Result: ResultOK}
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3. Лид отправителя
		lead, created, err := uc.upsertLead(txCtx, req)
		if err != nil {
			return err
		}
		resp.Lead = lead.Name
		resp.LeadCreated = created

		// 4. Открытая возможность
		opp := &domain.Opportunity{
			OpportunityFrom: domain.PartyTypeLead,
			PartyName:       lead.Name,
			Status:          domain.OpportunityStatusOpen,
			Title:           req.Subject,
			OpportunityType: uc.settings.QueryOptions[req.Subject],
		}
		opp.ContactEmail = req.Sender

		opp, err = uc.opportunityService.Create(txCtx, opp, opportunities.SaveOptions{IgnoreMandatory: true})
		if err != nil {
			return err
		}
		resp.Opportunity = opp.Name

		// 5. Входящая коммуникация
		comm := &domain.Communication{
			ReferenceDoctype:  domain.DoctypeOpportunity,
			ReferenceName:     opp.Name,
			CommunicationType: domain.CommunicationTypeCommunication,
			Subject:           req.Subject,
			Content:           req.Message,
			Sender:            req.Sender,
			SenderFullName:    req.FullName,
			SentOrReceived:    domain.CommunicationReceived,
			CommunicationDate: uc.timeProvider.Now(),
		}
		comm.AddLink(opp.OpportunityFrom, opp.PartyName)

		if _, err := uc.communicationRepo.Create(txCtx, comm); err != nil {
			uc.logger.Error("Execute: communication error for opportunity=%s: %v", opp.Name, err)
			return fmt.Errorf("%w: communication: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Execute: lead form processed, lead=%s opportunity=%s", resp.Lead, resp.Opportunity)
	return resp, nil
}

// upsertLead находит лид по email или создает новый.
// Новый мобильный номер становится основным, прежний переходит во второй.
func (uc *UseCase) upsertLead(ctx context.Context, req Request) (*domain.Lead, bool, error) {
	existing, err := uc.leadRepo.FindByEmail(ctx, req.Sender)
	if err != nil && !errors.Is(err, leadRepo.ErrLeadNotFound) {
		uc.logger.Error("upsertLead: repository error for sender=%s: %v", req.Sender, err)
		return nil, false, fmt.Errorf("%w: find lead: %v", ErrInternal, err)
	}

	if existing == nil {
		lead := &domain.Lead{
			EmailID:     req.Sender,
			LeadName:    req.FullName,
			CompanyName: req.Organization,
			Designation: req.Designation,
			Phone:       req.PhoneNo,
			MobileNo:    req.MobileNo,
			Country:     req.Country,
			Source:      uc.settings.DefaultLeadSource,
		}
		if lead.LeadName == "" {
			lead.LeadName = nameFromEmail(req.Sender)
		}

		created, err := uc.leadService.Create(ctx, lead, leads.SaveOptions{IgnoreMandatory: true})
		if err != nil {
			return nil, false, err
		}
		return created, true, nil
	}

	changed := false
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
			changed = true
		}
	}
	set(&existing.LeadName, req.FullName)
	set(&existing.CompanyName, req.Organization)
	set(&existing.Phone, req.PhoneNo)
	set(&existing.Designation, req.Designation)

	// новый номер становится основным, только если старый был
	if req.MobileNo != "" && existing.MobileNo != "" && existing.MobileNo != req.MobileNo {
		existing.MobileNo2 = existing.MobileNo
		existing.MobileNo = req.MobileNo
		changed = true
	}

	if !changed {
		return existing, false, nil
	}

	updated, err := uc.leadService.Update(ctx, existing, leads.SaveOptions{IgnoreMandatory: true})
	if err != nil {
		return nil, false, err
	}
	return updated, false, nil
}
