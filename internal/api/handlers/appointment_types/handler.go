package appointment_types

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/appointmenttypes"
	"github.com/m04kA/SMC-CRM/internal/service/appointmenttypes/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "тип встречи не найден"
	msgAlreadyExists      = "тип встречи с таким именем уже существует"
	msgInvalidData        = "некорректные данные типа встречи"
)

type Handler struct {
	service AppointmentTypeService
	logger  Logger
}

func NewHandler(service AppointmentTypeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/appointment-types
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAppointmentTypeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointment-types - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.respondError(w, "POST /appointment-types", req.Name, err)
		return
	}

	h.logger.Info("POST /appointment-types - Appointment type created: name=%s", result.Name)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// Get GET /api/v1/appointment-types/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	result, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /appointment-types/{name}", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// List GET /api/v1/appointment-types
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, "GET /appointment-types", "", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update PATCH /api/v1/appointment-types/{name}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req models.UpdateAppointmentTypeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointment-types/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), name, &req)
	if err != nil {
		h.respondError(w, "PATCH /appointment-types/{name}", name, err)
		return
	}

	h.logger.Info("PATCH /appointment-types/{name} - Appointment type updated: name=%s", name)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete DELETE /api/v1/appointment-types/{name}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.service.Delete(r.Context(), name); err != nil {
		h.respondError(w, "DELETE /appointment-types/{name}", name, err)
		return
	}

	h.logger.Info("DELETE /appointment-types/{name} - Appointment type deleted: name=%s", name)
	handlers.RespondNoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, appointmenttypes.ErrAppointmentTypeNotFound):
		h.logger.Warn("%s - Appointment type not found: name=%s", op, name)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, appointmenttypes.ErrAppointmentTypeAlreadyExists):
		h.logger.Warn("%s - Appointment type already exists: name=%s", op, name)
		handlers.RespondConflict(w, msgAlreadyExists)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: name=%s, error=%v", op, name, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, appointmenttypes.ErrInvalidInput):
		h.logger.Warn("%s - Invalid data: name=%s, error=%v", op, name, err)
		handlers.RespondBadRequest(w, msgInvalidData)

	default:
		h.logger.Error("%s - Failed: name=%s, error=%v", op, name, err)
		handlers.RespondInternalError(w)
	}
}
