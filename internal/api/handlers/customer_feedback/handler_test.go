package customer_feedback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/api/middleware"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/feedback"
	"github.com/m04kA/SMC-CRM/pkg/logger"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

type fakeService struct {
	records   map[string]*domain.CustomerFeedback
	submitErr error
	lastReq   feedback.SubmitRequest
}

func newFakeService() *fakeService {
	contactDate := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	return &fakeService{records: map[string]*domain.CustomerFeedback{
		"CF-0001": {
			Name:             "CF-0001",
			ReferenceDoctype: domain.DoctypeAppointment,
			ReferenceName:    "APT-0007",
			FeedbackFrom:     domain.PartyTypeLead,
			PartyName:        "CRM-LEAD-0001",
			CustomerName:     "Sara Khan",
			Status:           domain.FeedbackStatusPending,
			ContactDate:      &contactDate,
			ContactTime:      types.MustTimeString("14:30"),
			ContactRemarks:   "Перезвонить завтра",
		},
	}}
}

func (f *fakeService) Submit(ctx context.Context, req feedback.SubmitRequest) (*feedback.SubmitResult, error) {
	f.lastReq = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, domain.Invalid("Message is mandatory")
	}
	now := time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC)
	if req.Kind == "Feedback" {
		return &feedback.SubmitResult{CustomerFeedback: req.Message, FeedbackDt: &now}, nil
	}
	return &feedback.SubmitResult{ContactRemarks: req.Message, ContactDt: &now}, nil
}

func (f *fakeService) Get(ctx context.Context, name string) (*domain.CustomerFeedback, error) {
	rec, ok := f.records[name]
	if !ok {
		return nil, feedback.ErrFeedbackNotFound
	}
	return rec, nil
}

func (f *fakeService) GetByReference(ctx context.Context, doctype, name string) (*domain.CustomerFeedback, error) {
	for _, rec := range f.records {
		if rec.ReferenceDoctype == doctype && rec.ReferenceName == name {
			return rec, nil
		}
	}
	return nil, feedback.ErrFeedbackNotFound
}

func newRouter(svc FeedbackService) *mux.Router {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/customer-feedback", h.Submit).Methods(http.MethodPost)
	r.HandleFunc("/customer-feedback", h.GetByReference).Methods(http.MethodGet)
	r.HandleFunc("/customer-feedback/{name}", h.Get).Methods(http.MethodGet)
	return r
}

func do(r http.Handler, method, path, body, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Submit(t *testing.T) {
	svc := newFakeService()
	r := newRouter(svc)

	rec := do(r, http.MethodPost, "/customer-feedback",
		`{"referenceDoctype":"Appointment","referenceName":"APT-0007","kind":"Feedback","message":"Всё понравилось"}`,
		"manager@example.com")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"customerFeedback":"Всё понравилось"`)
	assert.Contains(t, rec.Body.String(), `"feedbackDt":"2026-10-17T11:00:00Z"`)
	assert.NotContains(t, rec.Body.String(), `"contactDt"`)
	assert.Equal(t, "manager@example.com", svc.lastReq.User)
	assert.Equal(t, "Feedback", svc.lastReq.Kind)
}

func TestHandler_SubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		submitErr  error
		body       string
		wantStatus int
	}{
		{
			name:       "invalid body",
			body:       `[`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty message",
			body:       `{"referenceDoctype":"Lead","referenceName":"CRM-LEAD-0001","kind":"Remarks"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown reference",
			submitErr:  feedback.ErrReferenceNotFound,
			body:       `{"referenceDoctype":"Lead","referenceName":"CRM-LEAD-9999","message":"hi"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unsupported doctype",
			submitErr:  feedback.ErrInvalidInput,
			body:       `{"referenceDoctype":"Invoice","referenceName":"INV-1","message":"hi"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "internal error",
			submitErr:  errors.New("db is down"),
			body:       `{"referenceDoctype":"Lead","referenceName":"CRM-LEAD-0001","message":"hi"}`,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			svc.submitErr = tt.submitErr

			rec := do(newRouter(svc), http.MethodPost, "/customer-feedback", tt.body, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Get(t *testing.T) {
	r := newRouter(newFakeService())

	rec := do(r, http.MethodGet, "/customer-feedback/CF-0001", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"contactDate":"2026-10-12"`)
	assert.Contains(t, rec.Body.String(), `"contactTime":"14:30"`)
	assert.Contains(t, rec.Body.String(), `"status":"Pending"`)
	assert.NotContains(t, rec.Body.String(), `"feedbackTime"`)

	rec = do(r, http.MethodGet, "/customer-feedback/CF-0404", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetByReference(t *testing.T) {
	r := newRouter(newFakeService())

	rec := do(r, http.MethodGet, "/customer-feedback?referenceDoctype=Appointment&referenceName=APT-0007", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"CF-0001"`)

	rec = do(r, http.MethodGet, "/customer-feedback?referenceDoctype=Appointment", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet, "/customer-feedback?referenceDoctype=Lead&referenceName=CRM-LEAD-0001", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
