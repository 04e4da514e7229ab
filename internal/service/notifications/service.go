package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CRM/internal/domain"
	notificationRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/notification"
)

// Service сервис очереди уведомлений (outbox)
// Доставка SMS выполняется внешним процессом, который забирает очередь и отмечает результат
type Service struct {
	repo         NotificationRepository
	settings     domain.NotificationSettings
	metrics      Metrics
	timeProvider domain.TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса уведомлений
func NewService(
	repo NotificationRepository,
	settings domain.NotificationSettings,
	metrics Metrics,
	timeProvider domain.TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		settings:     settings,
		metrics:      metrics,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// AutomatedEnabled включена ли автоматическая отправка уведомлений данного типа
func (s *Service) AutomatedEnabled(notificationType domain.NotificationType) bool {
	return s.settings.AutomatedEnabled(notificationType)
}

// Enqueue ставит уведомление в очередь без проверки настроек автоматической отправки
func (s *Service) Enqueue(ctx context.Context, req Request) (*domain.Notification, error) {
	if req.ReferenceDoctype == "" || req.ReferenceName == "" || req.NotificationType == "" {
		s.logger.Warn("Enqueue: reference and notification type are required")
		return nil, fmt.Errorf("%w: reference and notification type are required", ErrInvalidInput)
	}
	if req.Receiver == "" {
		s.logger.Warn("Enqueue: %s %s has no receiver for %s", req.ReferenceDoctype, req.ReferenceName, req.NotificationType)
		return nil, ErrNoReceiver
	}

	n, err := s.repo.Enqueue(ctx, &domain.Notification{
		ReferenceDoctype: req.ReferenceDoctype,
		ReferenceName:    req.ReferenceName,
		NotificationType: req.NotificationType,
		Medium:           domain.NotificationMediumSMS,
		Receiver:         req.Receiver,
		Party:            req.Party,
		ScheduledAt:      s.timeProvider.Now(),
	})
	if err != nil {
		s.logger.Error("Enqueue: repository error for %s %s: %v", req.ReferenceDoctype, req.ReferenceName, err)
		return nil, fmt.Errorf("%w: Enqueue - repository error: %v", ErrInternal, err)
	}

	s.metrics.ObserveNotification(string(req.NotificationType))
	s.logger.Info("Enqueue: %s queued for %s %s id=%d", req.NotificationType, req.ReferenceDoctype, req.ReferenceName, n.ID)
	return n, nil
}

// EnqueueAutomated ставит уведомление в очередь, если для типа включена автоматическая отправка
// Возвращает false, если отправка выключена или у документа нет получателя
func (s *Service) EnqueueAutomated(ctx context.Context, req Request) (bool, error) {
	if !s.settings.AutomatedEnabled(req.NotificationType) {
		s.logger.Info("EnqueueAutomated: %s is disabled, skipping %s %s", req.NotificationType, req.ReferenceDoctype, req.ReferenceName)
		return false, nil
	}

	if _, err := s.Enqueue(ctx, req); err != nil {
		if errors.Is(err, ErrNoReceiver) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Cancel отменяет неотправленные уведомления типа для документа
func (s *Service) Cancel(ctx context.Context, doctype, name string, notificationType domain.NotificationType) (int64, error) {
	cancelled, err := s.repo.CancelQueued(ctx, doctype, name, notificationType)
	if err != nil {
		s.logger.Error("Cancel: repository error for %s %s: %v", doctype, name, err)
		return 0, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if cancelled > 0 {
		s.logger.Info("Cancel: cancelled %d %s notifications for %s %s", cancelled, notificationType, doctype, name)
	}
	return cancelled, nil
}

// Counts счётчики уведомлений документа
func (s *Service) Counts(ctx context.Context, doctype, name string) ([]domain.NotificationCount, error) {
	counts, err := s.repo.Counts(ctx, doctype, name)
	if err != nil {
		s.logger.Error("Counts: repository error for %s %s: %v", doctype, name, err)
		return nil, fmt.Errorf("%w: Counts - repository error: %v", ErrInternal, err)
	}
	return counts, nil
}

// ListByReference уведомления документа
func (s *Service) ListByReference(ctx context.Context, doctype, name string) ([]domain.Notification, error) {
	list, err := s.repo.ListByReference(ctx, doctype, name)
	if err != nil {
		s.logger.Error("ListByReference: repository error for %s %s: %v", doctype, name, err)
		return nil, fmt.Errorf("%w: ListByReference - repository error: %v", ErrInternal, err)
	}
	return list, nil
}

// ListQueued уведомления, ожидающие доставки
func (s *Service) ListQueued(ctx context.Context, limit uint64) ([]domain.Notification, error) {
	if limit == 0 {
		limit = DefaultQueuedLimit
	}

	list, err := s.repo.ListQueued(ctx, s.timeProvider.Now(), limit)
	if err != nil {
		s.logger.Error("ListQueued: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListQueued - repository error: %v", ErrInternal, err)
	}
	return list, nil
}

// MarkSent отмечает уведомление доставленным
func (s *Service) MarkSent(ctx context.Context, id int64) error {
	if err := s.repo.MarkSent(ctx, id, s.timeProvider.Now()); err != nil {
		if errors.Is(err, notificationRepo.ErrNotificationNotFound) {
			s.logger.Warn("MarkSent: notification id=%d not found", id)
			return ErrNotificationNotFound
		}
		s.logger.Error("MarkSent: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: MarkSent - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("MarkSent: notification id=%d sent", id)
	return nil
}

// MarkFailed отмечает уведомление неотправленным с причиной
func (s *Service) MarkFailed(ctx context.Context, id int64, reason string) error {
	if err := s.repo.MarkFailed(ctx, id, reason); err != nil {
		if errors.Is(err, notificationRepo.ErrNotificationNotFound) {
			s.logger.Warn("MarkFailed: notification id=%d not found", id)
			return ErrNotificationNotFound
		}
		s.logger.Error("MarkFailed: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: MarkFailed - repository error: %v", ErrInternal, err)
	}

	s.logger.Warn("MarkFailed: notification id=%d failed: %s", id, reason)
	return nil
}
