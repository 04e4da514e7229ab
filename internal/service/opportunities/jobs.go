package opportunities

import (
	"context"
	"time"
)

// AutoMarkLost помечает потерянными возможности без изменений дольше настроенного срока
// Каждая возможность сохраняется в своей транзакции, ошибки логируются и пропускаются
func (s *Service) AutoMarkLost(ctx context.Context) (int, error) {
	if !s.settings.AutoLostEnabled() {
		s.logger.Info("AutoMarkLost: disabled")
		return 0, nil
	}

	modifiedBefore := s.timeProvider.Now().AddDate(0, 0, -s.settings.MarkOpportunityLostAfterDays)
	names, err := s.opportunityRepo.ListStaleForAutoLost(ctx, modifiedBefore)
	if err != nil {
		s.logger.Error("AutoMarkLost: repository error: %v", err)
		return 0, err
	}

	var reasons []string
	if s.settings.OpportunityAutoLostReason != "" {
		reasons = []string{s.settings.OpportunityAutoLostReason}
	}

	marked := 0
	for _, name := range names {
		err := s.txManager.Do(ctx, func(txCtx context.Context) error {
			opp, err := s.get(txCtx, "AutoMarkLost", name)
			if err != nil {
				return err
			}
			return s.setIsLost(txCtx, opp, true, reasons, "", SaveOptions{})
		})
		if err != nil {
			s.logger.Error("AutoMarkLost: opportunity=%s skipped: %v", name, err)
			continue
		}
		marked++
	}

	s.logger.Info("AutoMarkLost: %d of %d idle opportunities marked Lost (modified before %s)",
		marked, len(names), modifiedBefore.Format(time.DateOnly))
	return marked, nil
}
