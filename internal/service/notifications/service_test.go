package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	notificationRepo "github.com/m04kA/SMC-CRM/internal/infra/storage/notification"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeRepo struct {
	enqueued  []domain.Notification
	sent      []int64
	failed    map[int64]string
	cancelled int64
	err       error
}

func (f *fakeRepo) Enqueue(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	n.ID = int64(len(f.enqueued) + 1)
	n.Status = domain.NotificationStatusQueued
	f.enqueued = append(f.enqueued, *n)
	return n, nil
}

func (f *fakeRepo) ListQueued(_ context.Context, _ time.Time, limit uint64) ([]domain.Notification, error) {
	if uint64(len(f.enqueued)) > limit {
		return f.enqueued[:limit], nil
	}
	return f.enqueued, f.err
}

func (f *fakeRepo) ListByReference(_ context.Context, _, _ string) ([]domain.Notification, error) {
	return f.enqueued, f.err
}

func (f *fakeRepo) MarkSent(_ context.Context, id int64, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeRepo) MarkFailed(_ context.Context, id int64, reason string) error {
	if f.err != nil {
		return f.err
	}
	if f.failed == nil {
		f.failed = map[int64]string{}
	}
	f.failed[id] = reason
	return nil
}

func (f *fakeRepo) CancelQueued(_ context.Context, _, _ string, _ domain.NotificationType) (int64, error) {
	return f.cancelled, f.err
}

func (f *fakeRepo) Counts(_ context.Context, _, _ string) ([]domain.NotificationCount, error) {
	return nil, f.err
}

type fakeMetrics struct {
	observed []string
}

func (m *fakeMetrics) ObserveNotification(notificationType string) {
	m.observed = append(m.observed, notificationType)
}

var now = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func newService(repo *fakeRepo, m *fakeMetrics, templates ...string) *Service {
	settings := domain.NotificationSettings{AutomatedSMSEnabled: true, AutomatedTemplates: templates}
	return NewService(repo, settings, m, &domain.FixedTimeProvider{T: now}, logger.NewNop())
}

func TestService_Enqueue(t *testing.T) {
	repo := &fakeRepo{}
	m := &fakeMetrics{}
	svc := newService(repo, m)

	n, err := svc.Enqueue(context.Background(), Request{
		ReferenceDoctype: domain.DoctypeAppointment,
		ReferenceName:    "APT-00001",
		NotificationType: domain.NotificationCustomMessage,
		Receiver:         "03001234567",
		Party:            "LEAD-00001",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), n.ID)
	assert.Equal(t, domain.NotificationMediumSMS, n.Medium)
	assert.Equal(t, now, n.ScheduledAt)
	assert.Equal(t, []string{"Custom Message"}, m.observed)
}

func TestService_Enqueue_Validation(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeMetrics{})

	_, err := svc.Enqueue(context.Background(), Request{ReferenceDoctype: domain.DoctypeAppointment})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Enqueue(context.Background(), Request{
		ReferenceDoctype: domain.DoctypeAppointment,
		ReferenceName:    "APT-00001",
		NotificationType: domain.NotificationCustomMessage,
	})
	assert.ErrorIs(t, err, ErrNoReceiver)
}

func TestService_EnqueueAutomated(t *testing.T) {
	req := Request{
		ReferenceDoctype: domain.DoctypeOpportunity,
		ReferenceName:    "OPP-00001",
		NotificationType: domain.NotificationOpportunityGreeting,
		Receiver:         "03001234567",
	}

	t.Run("template missing", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newService(repo, &fakeMetrics{}, "Appointment Reminder")

		queued, err := svc.EnqueueAutomated(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, queued)
		assert.Empty(t, repo.enqueued)
	})

	t.Run("queued", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newService(repo, &fakeMetrics{}, "Opportunity Greeting")

		queued, err := svc.EnqueueAutomated(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, queued)
		assert.Len(t, repo.enqueued, 1)
	})

	t.Run("no receiver is skipped", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newService(repo, &fakeMetrics{}, "Opportunity Greeting")

		noReceiver := req
		noReceiver.Receiver = ""
		queued, err := svc.EnqueueAutomated(context.Background(), noReceiver)
		require.NoError(t, err)
		assert.False(t, queued)
	})

	t.Run("repository error", func(t *testing.T) {
		svc := newService(&fakeRepo{err: errors.New("db down")}, &fakeMetrics{}, "Opportunity Greeting")

		_, err := svc.EnqueueAutomated(context.Background(), req)
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestService_MarkSent_NotFound(t *testing.T) {
	svc := newService(&fakeRepo{err: notificationRepo.ErrNotificationNotFound}, &fakeMetrics{})

	err := svc.MarkSent(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestService_MarkFailed(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo, &fakeMetrics{})

	require.NoError(t, svc.MarkFailed(context.Background(), 3, "gateway timeout"))
	assert.Equal(t, "gateway timeout", repo.failed[3])
}
