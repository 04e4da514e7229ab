package appointment_types

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/service/appointmenttypes"
	"github.com/m04kA/SMC-CRM/internal/service/appointmenttypes/models"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeService struct {
	types map[string]*models.AppointmentTypeResponse
}

func (f *fakeService) Create(ctx context.Context, req *models.CreateAppointmentTypeRequest) (*models.AppointmentTypeResponse, error) {
	if req.AppointmentDuration <= 0 {
		return nil, appointmenttypes.ErrInvalidInput
	}
	if _, ok := f.types[req.Name]; ok {
		return nil, appointmenttypes.ErrAppointmentTypeAlreadyExists
	}
	resp := &models.AppointmentTypeResponse{Name: req.Name, AppointmentDuration: req.AppointmentDuration}
	f.types[req.Name] = resp
	return resp, nil
}

func (f *fakeService) Get(ctx context.Context, name string) (*models.AppointmentTypeResponse, error) {
	t, ok := f.types[name]
	if !ok {
		return nil, appointmenttypes.ErrAppointmentTypeNotFound
	}
	return t, nil
}

func (f *fakeService) List(ctx context.Context) (*models.AppointmentTypeListResponse, error) {
	resp := &models.AppointmentTypeListResponse{Names: []string{}}
	for name := range f.types {
		resp.Names = append(resp.Names, name)
	}
	return resp, nil
}

func (f *fakeService) Update(ctx context.Context, name string, req *models.UpdateAppointmentTypeRequest) (*models.AppointmentTypeResponse, error) {
	t, err := f.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if req.AppointmentDuration != nil {
		t.AppointmentDuration = *req.AppointmentDuration
	}
	return t, nil
}

func (f *fakeService) Delete(ctx context.Context, name string) error {
	if _, ok := f.types[name]; !ok {
		return appointmenttypes.ErrAppointmentTypeNotFound
	}
	delete(f.types, name)
	return nil
}

func newRouter(svc AppointmentTypeService) *mux.Router {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/appointment-types", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/appointment-types", h.List).Methods(http.MethodGet)
	r.HandleFunc("/appointment-types/{name}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/appointment-types/{name}", h.Update).Methods(http.MethodPatch)
	r.HandleFunc("/appointment-types/{name}", h.Delete).Methods(http.MethodDelete)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Lifecycle(t *testing.T) {
	r := newRouter(&fakeService{types: map[string]*models.AppointmentTypeResponse{}})

	rec := do(r, http.MethodPost, "/appointment-types", `{"name":"Service","appointmentDuration":60,"numberOfAgents":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(r, http.MethodPost, "/appointment-types", `{"name":"Service","appointmentDuration":60}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, "/appointment-types", `{"name":"Broken","appointmentDuration":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPatch, "/appointment-types/Service", `{"appointmentDuration":30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"appointmentDuration":30`)

	rec = do(r, http.MethodGet, "/appointment-types", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"names":["Service"]}`, rec.Body.String())

	rec = do(r, http.MethodDelete, "/appointment-types/Service", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodGet, "/appointment-types/Service", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
