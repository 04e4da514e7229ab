package territories

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/territories"
	"github.com/m04kA/SMC-CRM/pkg/logger"
)

type fakeService struct {
	nodes  map[string]*domain.Territory
	linked map[string]bool
	err    error
}

func newFakeService() *fakeService {
	root := &domain.Territory{TreeNode: domain.TreeNode{Name: domain.RootTerritory, IsGroup: true}, TerritoryName: domain.RootTerritory}
	return &fakeService{
		nodes:  map[string]*domain.Territory{root.Name: root},
		linked: map[string]bool{},
	}
}

func (f *fakeService) Create(ctx context.Context, t *domain.Territory) (*domain.Territory, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t.TerritoryName == "" {
		return nil, territories.ErrInvalidInput
	}
	if t.Name == "" {
		t.Name = t.TerritoryName
	}
	if _, ok := f.nodes[t.Name]; ok {
		return nil, territories.ErrTerritoryAlreadyExists
	}
	parent, ok := f.nodes[t.Parent]
	if !ok || !parent.IsGroup {
		return nil, domain.Invalid("Parent %s must be a group", t.Parent)
	}
	f.nodes[t.Name] = t
	return t, nil
}

func (f *fakeService) Update(ctx context.Context, t *domain.Territory) (*domain.Territory, error) {
	f.nodes[t.Name] = t
	return t, nil
}

func (f *fakeService) Get(ctx context.Context, name string) (*domain.Territory, error) {
	t, ok := f.nodes[name]
	if !ok {
		return nil, territories.ErrTerritoryNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeService) List(ctx context.Context, parent string) ([]domain.Territory, error) {
	var out []domain.Territory
	for _, t := range f.nodes {
		if t.Parent == parent {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeService) Delete(ctx context.Context, name string) error {
	if _, ok := f.nodes[name]; !ok {
		return territories.ErrTerritoryNotFound
	}
	for _, t := range f.nodes {
		if t.Parent == name {
			return territories.ErrHasChildren
		}
	}
	if f.linked[name] {
		return territories.ErrLinked
	}
	delete(f.nodes, name)
	return nil
}

func (f *fakeService) Subtree(ctx context.Context, name string) ([]string, error) {
	if _, ok := f.nodes[name]; !ok {
		return nil, territories.ErrTerritoryNotFound
	}
	names := []string{name}
	for _, t := range f.nodes {
		if t.Parent == name {
			names = append(names, t.Name)
		}
	}
	return names, nil
}

func newRouter(svc TerritoryService) *mux.Router {
	h := NewHandler(svc, logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/territories", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/territories", h.List).Methods(http.MethodGet)
	r.HandleFunc("/territories/{name}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/territories/{name}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/territories/{name}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/territories/{name}/subtree", h.Subtree).Methods(http.MethodGet)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_TreeLifecycle(t *testing.T) {
	svc := newFakeService()
	r := newRouter(svc)

	rec := do(r, http.MethodPost, "/territories", `{"territoryName":"Punjab","parent":"All Territories","isGroup":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Punjab"`)

	rec = do(r, http.MethodPost, "/territories", `{"territoryName":"Lahore","parent":"Punjab"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// лист не может быть родителем
	rec = do(r, http.MethodPost, "/territories", `{"territoryName":"Gulberg","parent":"Lahore"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(r, http.MethodPost, "/territories", `{"territoryName":"Lahore","parent":"Punjab"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodGet, "/territories?parent=Punjab", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"territoryName":"Lahore"`)

	rec = do(r, http.MethodGet, "/territories/Punjab/subtree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Lahore"`)

	rec = do(r, http.MethodPut, "/territories/Lahore", `{"territoryName":"Lahore City","parent":"Punjab"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lahore City", svc.nodes["Lahore"].TerritoryName)

	rec = do(r, http.MethodDelete, "/territories/Punjab", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodDelete, "/territories/Lahore", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodGet, "/territories/Lahore", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *fakeService)
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid body",
			method:     http.MethodPost,
			path:       "/territories",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty name",
			method:     http.MethodPost,
			path:       "/territories",
			body:       `{"parent":"All Territories"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "linked territory",
			setup:      func(f *fakeService) { f.linked[domain.RootTerritory] = true },
			method:     http.MethodDelete,
			path:       "/territories/All%20Territories",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "storage failure",
			setup:      func(f *fakeService) { f.err = errors.New("connection reset") },
			method:     http.MethodPost,
			path:       "/territories",
			body:       `{"territoryName":"Sindh","parent":"All Territories"}`,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown subtree",
			method:     http.MethodGet,
			path:       "/territories/Mars/subtree",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			if tt.setup != nil {
				tt.setup(svc)
			}

			rec := do(newRouter(svc), tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
