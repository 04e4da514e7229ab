package territories

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/territories"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "территория не найдена"
	msgAlreadyExists      = "территория с таким именем уже существует"
	msgHasChildren        = "у территории есть дочерние узлы"
	msgLinked             = "территория используется в других документах"
)

type Handler struct {
	service TerritoryService
	logger  Logger
}

func NewHandler(service TerritoryService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/territories
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req TerritoryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /territories - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	t := &domain.Territory{TerritoryName: req.TerritoryName}
	t.Name = req.Name
	t.Parent = req.Parent
	t.IsGroup = req.IsGroup

	created, err := h.service.Create(r.Context(), t)
	if err != nil {
		h.respondError(w, "POST /territories", req.Name, err)
		return
	}

	h.logger.Info("POST /territories - Territory created: name=%s, parent=%s", created.Name, created.Parent)
	handlers.RespondJSON(w, http.StatusCreated, fromDomain(created))
}

// Get GET /api/v1/territories/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	t, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /territories/{name}", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDomain(t))
}

// List GET /api/v1/territories?parent=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("parent"))
	if err != nil {
		h.respondError(w, "GET /territories", "", err)
		return
	}

	resp := ListResponse{Territories: make([]TerritoryResponse, len(list))}
	for i := range list {
		resp.Territories[i] = fromDomain(&list[i])
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Update PUT /api/v1/territories/{name}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req TerritoryRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /territories/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	t, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "PUT /territories/{name}", name, err)
		return
	}
	t.TerritoryName = req.TerritoryName
	t.Parent = req.Parent
	t.IsGroup = req.IsGroup

	saved, err := h.service.Update(r.Context(), t)
	if err != nil {
		h.respondError(w, "PUT /territories/{name}", name, err)
		return
	}

	h.logger.Info("PUT /territories/{name} - Territory saved: name=%s, parent=%s", name, saved.Parent)
	handlers.RespondJSON(w, http.StatusOK, fromDomain(saved))
}

// Delete DELETE /api/v1/territories/{name}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.service.Delete(r.Context(), name); err != nil {
		h.respondError(w, "DELETE /territories/{name}", name, err)
		return
	}

	h.logger.Info("DELETE /territories/{name} - Territory deleted: name=%s", name)
	handlers.RespondNoContent(w)
}

// Subtree GET /api/v1/territories/{name}/subtree
func (h *Handler) Subtree(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	names, err := h.service.Subtree(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /territories/{name}/subtree", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SubtreeResponse{Names: names})
}

func (h *Handler) respondError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, territories.ErrTerritoryNotFound):
		h.logger.Warn("%s - Territory not found: name=%s", op, name)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, territories.ErrTerritoryAlreadyExists):
		h.logger.Warn("%s - Territory already exists: name=%s", op, name)
		handlers.RespondConflict(w, msgAlreadyExists)

	case errors.Is(err, territories.ErrHasChildren):
		h.logger.Warn("%s - Territory has children: name=%s", op, name)
		handlers.RespondConflict(w, msgHasChildren)

	case errors.Is(err, territories.ErrLinked):
		h.logger.Warn("%s - Territory is linked: name=%s", op, name)
		handlers.RespondConflict(w, msgLinked)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: name=%s, error=%v", op, name, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, territories.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: name=%s, error=%v", op, name, err)
		handlers.RespondInternalError(w)
	}
}
