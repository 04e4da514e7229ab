package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-CRM/internal/domain"
	leadRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/lead"
)

// Service сервис для работы с лидами
type Service struct {
	leadRepo     LeadRepository
	statusSync   StatusSync
	timeProvider domain.TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса лидов
func NewService(
	leadRepo LeadRepository,
	statusSync StatusSync,
	timeProvider domain.TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		leadRepo:     leadRepo,
		statusSync:   statusSync,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Create валидирует и создает лид
func (s *Service) Create(ctx context.Context, lead *domain.Lead, opts SaveOptions) (*domain.Lead, error) {
	s.logger.Info("Create: creating lead lead_name=%q company_name=%q", lead.LeadName, lead.CompanyName)

	lead.Name = ""
	if err := s.validate(ctx, lead, opts); err != nil {
		return nil, err
	}

	created, err := s.leadRepo.Create(ctx, lead)
	if err != nil {
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: lead=%s created", created.Name)
	return created, nil
}

// Update валидирует и сохраняет лид
func (s *Service) Update(ctx context.Context, lead *domain.Lead, opts SaveOptions) (*domain.Lead, error) {
	s.logger.Info("Update: updating lead=%s", lead.Name)

	if lead.Name == "" {
		return nil, fmt.Errorf("%w: lead name is required", ErrInvalidInput)
	}

	if _, err := s.Get(ctx, lead.Name); err != nil {
		return nil, err
	}

	if err := s.validate(ctx, lead, opts); err != nil {
		return nil, err
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		if errors.Is(err, leadRepo.ErrLeadNotFound) {
			return nil, ErrLeadNotFound
		}
		s.logger.Error("Update: repository error for lead=%s: %v", lead.Name, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: lead=%s saved with status=%s", lead.Name, lead.Status)
	return lead, nil
}

// Get получает лид по имени
func (s *Service) Get(ctx context.Context, name string) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, leadRepo.ErrLeadNotFound) {
			s.logger.Warn("Get: lead=%s not found", name)
			return nil, ErrLeadNotFound
		}
		s.logger.Error("Get: repository error for lead=%s: %v", name, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}
	return lead, nil
}

// Delete удаляет лид без связанных документов
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.leadRepo.Delete(ctx, name); err != nil {
		switch {
		case errors.Is(err, leadRepo.ErrLeadNotFound):
			s.logger.Warn("Delete: lead=%s not found", name)
			return ErrLeadNotFound
		case errors.Is(err, leadRepo.ErrLinked):
			s.logger.Warn("Delete: lead=%s is linked with other records", name)
			return ErrLeadLinked
		}
		s.logger.Error("Delete: repository error for lead=%s: %v", name, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: lead=%s deleted", name)
	return nil
}

// Search поиск лидов для автодополнения
func (s *Service) Search(ctx context.Context, txt string, start, pageLen int) ([]domain.LeadSearchResult, error) {
	if start < 0 {
		start = 0
	}
	if pageLen <= 0 {
		pageLen = domain.DefaultPageLength
	}
	if pageLen > domain.MaxPageLength {
		pageLen = domain.MaxPageLength
	}

	results, err := s.leadRepo.Search(ctx, strings.TrimSpace(txt), start, pageLen)
	if err != nil {
		s.logger.Error("Search: repository error for txt=%q: %v", txt, err)
		return nil, fmt.Errorf("%w: Search - repository error: %v", ErrInternal, err)
	}
	return results, nil
}

// MakeOpportunity строит несохранённую возможность по лиду
func (s *Service) MakeOpportunity(ctx context.Context, name string) (*domain.Opportunity, error) {
	lead, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	opp := lead.NewOpportunity()
	opp.TransactionDate = domain.DateOnly(s.timeProvider.Now())
	return opp, nil
}

// ContactDetails контактные данные лида
func (s *Service) ContactDetails(ctx context.Context, name string) (*domain.ContactDetails, error) {
	lead, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	details := lead.ContactDetails()
	return &details, nil
}

// AddressDetails адрес лида
func (s *Service) AddressDetails(ctx context.Context, name string) (*domain.AddressDetails, error) {
	lead, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	details := lead.AddressDetails()
	return &details, nil
}

// LeadFromCommunication находит лид отправителя по email, затем по мобильному номеру,
// иначе создает новый лид без проверки обязательных полей
func (s *Service) LeadFromCommunication(ctx context.Context, sender CommunicationSender) (string, error) {
	if sender.Email != "" {
		lead, err := s.find(ctx, "LeadFromCommunication", s.leadRepo.FindByEmail, sender.Email)
		if err != nil || lead != nil {
			return leadName(lead), err
		}
	}

	if sender.Phone != "" {
		lead, err := s.find(ctx, "LeadFromCommunication", s.leadRepo.FindByMobile, sender.Phone)
		if err != nil || lead != nil {
			return leadName(lead), err
		}
	}

	created, err := s.Create(ctx, &domain.Lead{
		LeadName: sender.FullName,
		EmailID:  sender.Email,
		MobileNo: sender.Phone,
	}, SaveOptions{IgnoreMandatory: true})
	if err != nil {
		return "", err
	}
	return created.Name, nil
}

// FindByPhoneNumber имя лида, у которого телефон или мобильный оканчивается на number
// Пустая строка, если лид не найден
func (s *Service) FindByPhoneNumber(ctx context.Context, number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", nil
	}

	lead, err := s.find(ctx, "FindByPhoneNumber", s.leadRepo.FindByPhoneSuffix, number)
	if err != nil {
		return "", err
	}
	return leadName(lead), nil
}

// validate нормализует лид, проверяет уникальность email и выставляет статус
func (s *Service) validate(ctx context.Context, lead *domain.Lead, opts SaveOptions) error {
	if err := lead.Normalize(opts.IgnoreMandatory); err != nil {
		s.logger.Warn("validate: lead=%s is invalid: %v", lead.Name, err)
		return err
	}

	if lead.EmailID != "" {
		duplicates, err := s.leadRepo.DuplicateEmails(ctx, lead.EmailID, lead.Name)
		if err != nil {
			s.logger.Error("validate: duplicate email lookup failed: %v", err)
			return fmt.Errorf("%w: validate - duplicate email lookup: %v", ErrInternal, err)
		}
		if len(duplicates) > 0 {
			s.logger.Warn("validate: email %s already used by %v", lead.EmailID, duplicates)
			return &domain.ValidationError{
				Message: fmt.Sprintf("Email Address must be unique, Lead already exists for %s", domain.CommaAnd(duplicates)),
				Kind:    ErrDuplicateEmail,
			}
		}
	}

	var facts domain.LeadStatusFacts
	if lead.Name != "" {
		var err error
		if facts, err = s.statusSync.LeadFacts(ctx, lead.Name); err != nil {
			return err
		}
	}
	lead.Status = domain.DeriveLeadStatus(lead.Status, "", facts)

	return nil
}

func (s *Service) find(
	ctx context.Context,
	op string,
	lookup func(ctx context.Context, v string) (*domain.Lead, error),
	value string,
) (*domain.Lead, error) {
	lead, err := lookup(ctx, value)
	if err != nil {
		if errors.Is(err, leadRepo.ErrLeadNotFound) {
			return nil, nil
		}
		s.logger.Error("%s: lead lookup failed for %q: %v", op, value, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return lead, nil
}

func leadName(lead *domain.Lead) string {
	if lead == nil {
		return ""
	}
	return lead.Name
}
