package customer_feedback

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/middleware"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/feedback"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "отзыв не найден"
	msgReferenceNotFound  = "документ-основание не найден"
	msgMissingReference   = "не указан документ-основание"
)

type Handler struct {
	service FeedbackService
	logger  Logger
}

func NewHandler(service FeedbackService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Submit POST /api/v1/customer-feedback
// Создаёт запись по документу-основанию или дописывает существующую
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /customer-feedback - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	user, _ := middleware.GetUserID(r.Context())
	res, err := h.service.Submit(r.Context(), feedback.SubmitRequest{
		ReferenceDoctype: req.ReferenceDoctype,
		ReferenceName:    req.ReferenceName,
		Kind:             req.Kind,
		Message:          req.Message,
		User:             user,
	})
	if err != nil {
		h.respondError(w, "POST /customer-feedback", req.ReferenceName, err)
		return
	}

	h.logger.Info("POST /customer-feedback - Feedback submitted: reference=%s %s, kind=%s",
		req.ReferenceDoctype, req.ReferenceName, req.Kind)
	handlers.RespondJSON(w, http.StatusOK, fromSubmitResult(res))
}

// Get GET /api/v1/customer-feedback/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	f, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /customer-feedback/{name}", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDomain(f))
}

// GetByReference GET /api/v1/customer-feedback?referenceDoctype=&referenceName=
func (h *Handler) GetByReference(w http.ResponseWriter, r *http.Request) {
	doctype := r.URL.Query().Get("referenceDoctype")
	name := r.URL.Query().Get("referenceName")
	if doctype == "" || name == "" {
		handlers.RespondBadRequest(w, msgMissingReference)
		return
	}

	f, err := h.service.GetByReference(r.Context(), doctype, name)
	if err != nil {
		h.respondError(w, "GET /customer-feedback", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDomain(f))
}

func (h *Handler) respondError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, feedback.ErrFeedbackNotFound):
		h.logger.Warn("%s - Feedback not found: name=%s", op, name)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, feedback.ErrReferenceNotFound):
		h.logger.Warn("%s - Reference not found: name=%s", op, name)
		handlers.RespondNotFound(w, msgReferenceNotFound)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: name=%s, error=%v", op, name, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, feedback.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: name=%s, error=%v", op, name, err)
		handlers.RespondInternalError(w)
	}
}
