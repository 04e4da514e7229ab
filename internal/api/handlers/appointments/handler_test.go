package appointments

import (
	"context"
	"encoding/json"
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
	"github.com/m04kA/SMC-CRM/internal/service/appointments"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeAppointmentService struct {
	appts map[string]*domain.Appointment

	createErr   error
	lastOpts    appointments.SaveOptions
	lastChanges appointments.AfterSubmitChanges
	lastQuery   domain.SalesPersonQuery
	lastType    string
}

func newFakeService() *fakeAppointmentService {
	return &fakeAppointmentService{appts: map[string]*domain.Appointment{}}
}

func (f *fakeAppointmentService) Create(ctx context.Context, a *domain.Appointment, opts appointments.SaveOptions) (*appointments.SaveResult, error) {
	f.lastOpts = opts
	if f.createErr != nil {
		return nil, f.createErr
	}
	a.Name = "APP-00001"
	a.Status = domain.AppointmentStatusDraft
	f.appts[a.Name] = a
	return &appointments.SaveResult{Appointment: a, Warnings: domain.Warnings{"Sales Person is not available"}}, nil
}

func (f *fakeAppointmentService) Update(ctx context.Context, a *domain.Appointment, opts appointments.SaveOptions) (*appointments.SaveResult, error) {
	if a.DocStatus != domain.DocStatusDraft {
		return nil, appointments.ErrNotDraft
	}
	f.appts[a.Name] = a
	return &appointments.SaveResult{Appointment: a}, nil
}

func (f *fakeAppointmentService) Get(ctx context.Context, name string) (*appointments.Details, error) {
	a, ok := f.appts[name]
	if !ok {
		return nil, appointments.ErrAppointmentNotFound
	}
	cp := *a
	return &appointments.Details{
		Appointment: &cp,
		Timeslots: &domain.TimeslotsResult{Timeslots: []domain.TimeslotAvailability{
			domain.NewTimeslotAvailability(domain.Timeslot{
				Start: time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 10, 20, 11, 0, 0, 0, time.UTC),
			}, 2, 1),
		}},
	}, nil
}

func (f *fakeAppointmentService) Delete(ctx context.Context, name string, opts appointments.SaveOptions) error {
	return nil
}

func (f *fakeAppointmentService) Submit(ctx context.Context, name string, opts appointments.SaveOptions) (*appointments.SaveResult, error) {
	a, ok := f.appts[name]
	if !ok {
		return nil, appointments.ErrAppointmentNotFound
	}
	if a.ScheduledDt == nil {
		return nil, domain.Invalid("Scheduled Date is mandatory")
	}
	a.DocStatus = domain.DocStatusSubmitted
	a.Status = domain.AppointmentStatusOpen
	return &appointments.SaveResult{Appointment: a}, nil
}

func (f *fakeAppointmentService) Cancel(ctx context.Context, name string, opts appointments.SaveOptions) (*domain.Appointment, error) {
	a, ok := f.appts[name]
	if !ok {
		return nil, appointments.ErrAppointmentNotFound
	}
	if a.DocStatus != domain.DocStatusSubmitted {
		return nil, appointments.ErrNotSubmitted
	}
	a.DocStatus = domain.DocStatusCancelled
	a.Status = domain.AppointmentStatusCancelled
	return a, nil
}

func (f *fakeAppointmentService) UpdateAfterSubmit(ctx context.Context, name string, changes appointments.AfterSubmitChanges, opts appointments.SaveOptions) (*appointments.SaveResult, error) {
	f.lastChanges = changes
	return &appointments.SaveResult{Appointment: &domain.Appointment{Name: name}}, nil
}

func (f *fakeAppointmentService) UpdateStatus(ctx context.Context, name string, status domain.AppointmentStatus, opts appointments.SaveOptions) (*domain.Appointment, error) {
	if !status.IsRequestable() {
		return nil, domain.Invalid("Status %q cannot be set on an Appointment", status)
	}
	return &domain.Appointment{Name: name, Status: status}, nil
}

func (f *fakeAppointmentService) Reschedule(ctx context.Context, name string) (*domain.Appointment, error) {
	return &domain.Appointment{PreviousAppointment: name}, nil
}

func (f *fakeAppointmentService) Events(ctx context.Context, start, end time.Time) ([]domain.AppointmentEvent, error) {
	return []domain.AppointmentEvent{{
		Name:        "APP-00001",
		Status:      domain.AppointmentStatusOpen,
		ScheduledDt: start.Add(10 * time.Hour),
		EndDt:       start.Add(11 * time.Hour),
	}}, nil
}

func (f *fakeAppointmentService) SalesPersonQuery(ctx context.Context, appointmentType string, q domain.SalesPersonQuery) ([]domain.SalesPersonOption, error) {
	f.lastType, f.lastQuery = appointmentType, q
	return []domain.SalesPersonOption{{Name: "Ali", Availability: domain.SalesPersonAvailable}}, nil
}

func newRouter(svc AppointmentService) *mux.Router {
	h := NewHandler(svc, time.UTC, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/appointments", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/appointments/events", h.Events).Methods(http.MethodGet)
	r.HandleFunc("/appointments/sales-persons", h.SalesPersons).Methods(http.MethodGet)
	r.HandleFunc("/appointments/{name}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/appointments/{name}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/appointments/{name}", h.UpdateAfterSubmit).Methods(http.MethodPatch)
	r.HandleFunc("/appointments/{name}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/appointments/{name}/submit", h.Submit).Methods(http.MethodPost)
	r.HandleFunc("/appointments/{name}/cancel", h.Cancel).Methods(http.MethodPost)
	r.HandleFunc("/appointments/{name}/status", h.UpdateStatus).Methods(http.MethodPost)
	r.HandleFunc("/appointments/{name}/reschedule", h.Reschedule).Methods(http.MethodGet)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), "agent@example.com"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateSubmitCancel(t *testing.T) {
	svc := newFakeService()
	r := newRouter(svc)

	rec := do(r, http.MethodPost, "/appointments",
		`{"appointmentType":"Service","partyName":"LEAD-00001","scheduledDate":"2026-10-20","scheduledTime":"10:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "agent@example.com", svc.lastOpts.User)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "APP-00001", body["name"])
	assert.Equal(t, []interface{}{"Sales Person is not available"}, body["warnings"])

	a := svc.appts["APP-00001"]
	require.NotNil(t, a.ScheduledDt)
	assert.Equal(t, time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC), *a.ScheduledDt)

	rec = do(r, http.MethodPost, "/appointments/APP-00001/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, "/appointments/APP-00001/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Open"`)

	rec = do(r, http.MethodPut, "/appointments/APP-00001", `{"appointmentType":"Service"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, "/appointments/APP-00001/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Cancelled"`)
}

func TestHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
	}{
		{name: "bad datetime", body: `{"scheduledDt":"tomorrow"}`, wantStatus: http.StatusBadRequest},
		{name: "bad time", body: `{"scheduledDate":"2026-10-20","scheduledTime":"25:99"}`, wantStatus: http.StatusBadRequest},
		{
			name:       "slot taken",
			body:       `{"scheduledDt":"2026-10-20T10:00:00Z"}`,
			createErr:  &domain.ValidationError{Message: "slot 10:00 is full", Kind: domain.ErrSlotUnavailable},
			wantStatus: http.StatusConflict,
		},
		{name: "lead missing", body: `{}`, createErr: appointments.ErrLeadNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			svc.createErr = tt.createErr
			rec := do(newRouter(svc), http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Get_WithTimeslots(t *testing.T) {
	svc := newFakeService()
	svc.appts["APP-00001"] = &domain.Appointment{Name: "APP-00001", Status: domain.AppointmentStatusDraft}

	rec := do(newRouter(svc), http.MethodGet, "/appointments/APP-00001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Timeslots []struct {
			Start     string `json:"start"`
			Available int    `json:"available"`
		} `json:"timeslots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Timeslots, 1)
	assert.Equal(t, "2026-10-20T10:00:00Z", body.Timeslots[0].Start)
	assert.Equal(t, 1, body.Timeslots[0].Available)
}

func TestHandler_UpdateAfterSubmit_OnlyPassedFields(t *testing.T) {
	svc := newFakeService()

	rec := do(newRouter(svc), http.MethodPatch, "/appointments/APP-00001", `{"remarks":"call before"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastChanges.Remarks)
	assert.Equal(t, "call before", *svc.lastChanges.Remarks)
	assert.Nil(t, svc.lastChanges.SalesPerson)
	assert.Nil(t, svc.lastChanges.Description)
}

func TestHandler_UpdateStatus(t *testing.T) {
	r := newRouter(newFakeService())

	rec := do(r, http.MethodPost, "/appointments/APP-00001/status", `{"status":"Checked In"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Checked In"`)

	rec = do(r, http.MethodPost, "/appointments/APP-00001/status", `{"status":"Cancelled"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_EventsAndSalesPersons(t *testing.T) {
	svc := newFakeService()
	r := newRouter(svc)

	rec := do(r, http.MethodGet, "/appointments/events?start=2026-10-20&end=2026-10-21", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"start":"2026-10-20T10:00:00Z"`)

	rec = do(r, http.MethodGet, "/appointments/events?end=2026-10-21", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodGet,
		"/appointments/sales-persons?appointmentType=Service&txt=al&allowed=Ali,Omar&start=2026-10-20%2010:00:00&end=2026-10-20%2011:00:00&exclude=APP-00002&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Service", svc.lastType)
	assert.Equal(t, "al", svc.lastQuery.Txt)
	assert.Equal(t, []string{"Ali", "Omar"}, svc.lastQuery.Allowed)
	assert.Equal(t, "APP-00002", svc.lastQuery.Exclude)
	assert.Equal(t, uint64(5), svc.lastQuery.Limit)
	require.NotNil(t, svc.lastQuery.Start)
	assert.Equal(t, 10, svc.lastQuery.Start.Hour())
	assert.Contains(t, rec.Body.String(), `"availability":"Available"`)

	rec = do(r, http.MethodGet, "/appointments/sales-persons", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
