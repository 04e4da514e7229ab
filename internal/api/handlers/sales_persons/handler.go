package sales_persons

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/middleware"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/salespersons"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "продавец не найден"
	msgAlreadyExists      = "продавец с таким именем уже существует"
	msgHasChildren        = "у продавца есть дочерние узлы"
	msgLinked             = "продавец используется в других документах"
)

type Handler struct {
	service SalesPersonService
	logger  Logger
}

func NewHandler(service SalesPersonService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/sales-persons
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SalesPersonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /sales-persons - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	sp := &domain.SalesPerson{}
	sp.Name = req.Name
	req.applyTo(sp)

	created, err := h.service.Create(r.Context(), sp)
	if err != nil {
		h.respondError(w, "POST /sales-persons", req.Name, err)
		return
	}

	h.logger.Info("POST /sales-persons - Sales person created: name=%s, parent=%s", created.Name, created.Parent)
	handlers.RespondJSON(w, http.StatusCreated, fromDomain(created))
}

// Get GET /api/v1/sales-persons/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	sp, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /sales-persons/{name}", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDomain(sp))
}

// List GET /api/v1/sales-persons?parent=
// Без parent возвращает корневые узлы
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("parent"))
	if err != nil {
		h.respondError(w, "GET /sales-persons", "", err)
		return
	}

	resp := ListResponse{SalesPersons: make([]SalesPersonResponse, len(list))}
	for i := range list {
		resp.SalesPersons[i] = fromDomain(&list[i])
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Update PUT /api/v1/sales-persons/{name}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req SalesPersonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /sales-persons/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	sp, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "PUT /sales-persons/{name}", name, err)
		return
	}
	req.applyTo(sp)

	saved, err := h.service.Update(r.Context(), sp)
	if err != nil {
		h.respondError(w, "PUT /sales-persons/{name}", name, err)
		return
	}

	h.logger.Info("PUT /sales-persons/{name} - Sales person saved: name=%s, parent=%s", name, saved.Parent)
	handlers.RespondJSON(w, http.StatusOK, fromDomain(saved))
}

// Delete DELETE /api/v1/sales-persons/{name}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.service.Delete(r.Context(), name); err != nil {
		h.respondError(w, "DELETE /sales-persons/{name}", name, err)
		return
	}

	h.logger.Info("DELETE /sales-persons/{name} - Sales person deleted: name=%s", name)
	handlers.RespondNoContent(w)
}

// Subtree GET /api/v1/sales-persons/{name}/subtree
func (h *Handler) Subtree(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	names, err := h.service.Subtree(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /sales-persons/{name}/subtree", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, SubtreeResponse{Names: names})
}

// Me GET /api/v1/sales-persons/me
// Продавец, привязанный к пользователю запроса
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUserID(r.Context())

	name, err := h.service.FromUser(r.Context(), user)
	if err != nil {
		h.respondError(w, "GET /sales-persons/me", user, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUserResponse{SalesPerson: name})
}

// Timeline GET /api/v1/sales-persons/{name}/timeline
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	points, err := h.service.Timeline(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /sales-persons/{name}/timeline", name, err)
		return
	}

	resp := TimelineResponse{Points: make([]TimelinePointResponse, len(points))}
	for i, p := range points {
		resp.Points[i] = TimelinePointResponse{Date: handlers.FormatDate(&p.Date), Count: p.Count}
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) respondError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, salespersons.ErrSalesPersonNotFound):
		h.logger.Warn("%s - Sales person not found: name=%s", op, name)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, salespersons.ErrSalesPersonAlreadyExists):
		h.logger.Warn("%s - Sales person already exists: name=%s", op, name)
		handlers.RespondConflict(w, msgAlreadyExists)

	case errors.Is(err, salespersons.ErrHasChildren):
		h.logger.Warn("%s - Sales person has children: name=%s", op, name)
		handlers.RespondConflict(w, msgHasChildren)

	case errors.Is(err, salespersons.ErrLinked):
		h.logger.Warn("%s - Sales person is linked: name=%s", op, name)
		handlers.RespondConflict(w, msgLinked)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: name=%s, error=%v", op, name, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, salespersons.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: name=%s, error=%v", op, name, err)
		handlers.RespondInternalError(w)
	}
}
