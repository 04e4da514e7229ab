package make_opportunity_from_lead_form

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leadForm "github.com/m04kA/SMC-CRM/internal/usecase/make_opportunity_from_lead_form"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeUseCase struct {
	lastReq leadForm.Request
	err     error
}

func (f *fakeUseCase) Execute(ctx context.Context, req leadForm.Request) (*leadForm.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &leadForm.Response{Result: leadForm.ResultOK, Lead: "LEAD-00001", LeadCreated: true, Opportunity: "CRM-OPP-00001"}, nil
}

func post(h *Handler, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/web-form/lead", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.7:53211"
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_Handle(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, logger.NewNop())

	rec := post(h, `{"sender":"john@example.com","fullName":"John","message":"Need a quote"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":"okay","lead":"LEAD-00001","leadCreated":true,"opportunity":"CRM-OPP-00001"}`, rec.Body.String())
	assert.Equal(t, "10.0.0.7", uc.lastReq.ClientIP)
	assert.Equal(t, "john@example.com", uc.lastReq.Sender)

	rec = post(h, `{"sender":"john@example.com","message":"again"}`, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.9", uc.lastReq.ClientIP)
}

func TestHandler_Handle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "rate limited", err: leadForm.ErrRateLimited, wantStatus: http.StatusTooManyRequests},
		{name: "invalid input", err: leadForm.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "internal", err: leadForm.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, logger.NewNop())
			rec := post(h, `{"sender":"john@example.com","message":"hi"}`, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
