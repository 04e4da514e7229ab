package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeService struct {
	queued     []domain.Notification
	sent       []int64
	failed     map[int64]string
	queuedLim  uint64
	cancelType domain.NotificationType
}

func (f *fakeService) Enqueue(ctx context.Context, req notifications.Request) (*domain.Notification, error) {
	if req.Receiver == "" {
		return nil, notifications.ErrNoReceiver
	}
	n := domain.Notification{
		ID:               int64(len(f.queued) + 1),
		ReferenceDoctype: req.ReferenceDoctype,
		ReferenceName:    req.ReferenceName,
		NotificationType: req.NotificationType,
		Receiver:         req.Receiver,
		Status:           domain.NotificationStatusQueued,
		ScheduledAt:      time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}
	f.queued = append(f.queued, n)
	return &n, nil
}

func (f *fakeService) Cancel(ctx context.Context, doctype, name string, notificationType domain.NotificationType) (int64, error) {
	f.cancelType = notificationType
	return 2, nil
}

func (f *fakeService) Counts(ctx context.Context, doctype, name string) ([]domain.NotificationCount, error) {
	return []domain.NotificationCount{{NotificationType: domain.NotificationAppointmentReminder, Count: 1}}, nil
}

func (f *fakeService) ListByReference(ctx context.Context, doctype, name string) ([]domain.Notification, error) {
	return f.queued, nil
}

func (f *fakeService) ListQueued(ctx context.Context, limit uint64) ([]domain.Notification, error) {
	f.queuedLim = limit
	return f.queued, nil
}

func (f *fakeService) MarkSent(ctx context.Context, id int64) error {
	if id > int64(len(f.queued)) {
		return notifications.ErrNotificationNotFound
	}
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeService) MarkFailed(ctx context.Context, id int64, reason string) error {
	f.failed[id] = reason
	return nil
}

func newRouter(svc NotificationService) *mux.Router {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/notifications", h.Enqueue).Methods(http.MethodPost)
	r.HandleFunc("/notifications", h.ListByReference).Methods(http.MethodGet)
	r.HandleFunc("/notifications", h.Cancel).Methods(http.MethodDelete)
	r.HandleFunc("/notifications/counts", h.Counts).Methods(http.MethodGet)
	r.HandleFunc("/notifications/queued", h.ListQueued).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/sent", h.MarkSent).Methods(http.MethodPost)
	r.HandleFunc("/notifications/{id}/failed", h.MarkFailed).Methods(http.MethodPost)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandler_Outbox(t *testing.T) {
	svc := &fakeService{failed: map[int64]string{}}
	r := newRouter(svc)

	rec := do(r, http.MethodPost, "/notifications",
		`{"referenceDoctype":"Appointment","referenceName":"APP-00001","notificationType":"Custom Message","receiver":"03001234567"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)
	assert.Contains(t, rec.Body.String(), `"status":"Queued"`)

	rec = do(r, http.MethodPost, "/notifications",
		`{"referenceDoctype":"Appointment","referenceName":"APP-00001","notificationType":"Custom Message"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(r, http.MethodGet, "/notifications/queued", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(notifications.DefaultQueuedLimit), svc.queuedLim)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/notifications/queued?limit=0", "").Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/notifications/1/sent", "").Code)
	assert.Equal(t, []int64{1}, svc.sent)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/notifications/9/sent", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/notifications/abc/sent", "").Code)

	rec = do(r, http.MethodPost, "/notifications/1/failed", `{"reason":"gateway timeout"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "gateway timeout", svc.failed[1])
}

func TestHandler_ByReference(t *testing.T) {
	svc := &fakeService{failed: map[int64]string{}}
	r := newRouter(svc)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/notifications?referenceDoctype=Appointment", "").Code)

	rec := do(r, http.MethodGet, "/notifications/counts?referenceDoctype=Appointment&referenceName=APP-00001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"notificationType":"Appointment Reminder"`)

	rec = do(r, http.MethodDelete, "/notifications?referenceDoctype=Appointment&referenceName=APP-00001&notificationType=Appointment%20Reminder", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cancelled":2}`, rec.Body.String())
	assert.Equal(t, domain.NotificationAppointmentReminder, svc.cancelType)
}
