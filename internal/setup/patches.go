package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

// Имена патчей данных
const (
	PatchRefactorLeadStatus            = "refactor_lead_status"
	PatchRefactorCustomerFeedbackParty = "refactor_customer_feedback_party"
)

// ErrUnknownPatch возвращается для незарегистрированного патча
var ErrUnknownPatch = errors.New("setup: unknown patch")

// leadStatusRenames старые статусы лидов -> новые
var leadStatusRenames = [][2]string{
	{"Quotation", string(domain.LeadStatusOpportunity)},
	{"Lost Quotation", string(domain.LeadStatusLostOpportunity)},
	{"Lead", string(domain.LeadStatusOpen)},
}

// Patcher патчи данных
type Patcher struct {
	leadRepo     LeadRepository
	feedbackRepo FeedbackRepository
	txManager    TransactionManager
	logger       Logger
}

// NewPatcher создает исполнителя патчей
func NewPatcher(leadRepo LeadRepository, feedbackRepo FeedbackRepository, txManager TransactionManager, logger Logger) *Patcher {
	return &Patcher{
		leadRepo:     leadRepo,
		feedbackRepo: feedbackRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Names зарегистрированные патчи в порядке применения
func (p *Patcher) Names() []string {
	return []string{PatchRefactorLeadStatus, PatchRefactorCustomerFeedbackParty}
}

// Run применяет патч в транзакции и возвращает число изменённых строк
func (p *Patcher) Run(ctx context.Context, name string) (int64, error) {
	var fn func(ctx context.Context) (int64, error)
	switch name {
	case PatchRefactorLeadStatus:
		fn = p.refactorLeadStatus
	case PatchRefactorCustomerFeedbackParty:
		fn = p.refactorCustomerFeedbackParty
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownPatch, name)
	}

	var affected int64
	err := p.txManager.Do(ctx, func(txCtx context.Context) error {
		n, err := fn(txCtx)
		affected = n
		return err
	})
	if err != nil {
		p.logger.Error("Patch %s: %v", name, err)
		return 0, err
	}

	p.logger.Info("Patch %s: %d rows updated", name, affected)
	return affected, nil
}

func (p *Patcher) refactorLeadStatus(ctx context.Context) (int64, error) {
	var total int64
	for _, r := range leadStatusRenames {
		n, err := p.leadRepo.RenameStatus(ctx, r[0], r[1])
		if err != nil {
			return 0, fmt.Errorf("rename lead status %q: %w", r[0], err)
		}
		total += n
	}
	return total, nil
}

// refactorCustomerFeedbackParty у отзывов без типа стороны сторона всегда лид
func (p *Patcher) refactorCustomerFeedbackParty(ctx context.Context) (int64, error) {
	n, err := p.feedbackRepo.SetFeedbackFromWhereEmpty(ctx, domain.PartyTypeLead)
	if err != nil {
		return 0, fmt.Errorf("set feedback party type: %w", err)
	}
	return n, nil
}
