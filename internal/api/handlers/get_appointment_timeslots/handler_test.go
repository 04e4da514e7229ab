package get_appointment_timeslots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	getTimeslots "github.com/m04kA/SMC-CRM/internal/usecase/get_appointment_timeslots"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeUseCase struct {
	lastReq *getTimeslots.Request
}

func (f *fakeUseCase) Execute(ctx context.Context, req *getTimeslots.Request) (*getTimeslots.Response, error) {
	f.lastReq = req
	switch req.AppointmentType {
	case "Unknown":
		return nil, getTimeslots.ErrAppointmentTypeNotFound
	case "Walk In":
		return &getTimeslots.Response{Date: req.Date, AppointmentType: req.AppointmentType}, nil
	}
	start := req.Date.Add(10 * time.Hour)
	return &getTimeslots.Response{
		Date:            req.Date,
		AppointmentType: req.AppointmentType,
		Timeslots: []domain.TimeslotAvailability{
			domain.NewTimeslotAvailability(domain.Timeslot{Start: start, End: start.Add(time.Hour)}, 3, 1),
		},
	}, nil
}

func newRouter(uc GetAppointmentTimeslotsUseCase) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/appointment-types/{name}/timeslots", NewHandler(uc, time.UTC, logger.NewNop()).Handle).Methods(http.MethodGet)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_Handle(t *testing.T) {
	uc := &fakeUseCase{}
	r := newRouter(uc)

	rec := get(r, "/appointment-types/Service/timeslots?date=2026-10-20&exclude=APP-00003")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"date":"2026-10-20",
		"appointmentType":"Service",
		"timeslots":[{"start":"2026-10-20T10:00:00Z","end":"2026-10-20T11:00:00Z","numberOfAgents":3,"booked":1,"available":2}]
	}`, rec.Body.String())
	assert.Equal(t, "APP-00003", uc.lastReq.Exclude)

	rec = get(r, "/appointment-types/Walk%20In/timeslots?date=2026-10-20")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2026-10-20","appointmentType":"Walk In","timeslots":null}`, rec.Body.String())
}

func TestHandler_Handle_Errors(t *testing.T) {
	r := newRouter(&fakeUseCase{})

	assert.Equal(t, http.StatusBadRequest, get(r, "/appointment-types/Service/timeslots").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/appointment-types/Service/timeslots?date=tomorrow").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/appointment-types/Unknown/timeslots?date=2026-10-20").Code)
}
