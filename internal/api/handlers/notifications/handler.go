package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/notifications"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidID          = "некорректный ID уведомления"
	msgInvalidLimit       = "некорректный limit"
	msgMissingReference   = "не указан документ"
	msgNotFound           = "уведомление не найдено или уже обработано"
	msgNoReceiver         = "у документа нет номера получателя"
)

// Handler очередь исходящих уведомлений
// Отправка выполняется внешним шлюзом, который забирает очередь и отмечает результат
type Handler struct {
	service NotificationService
	logger  Logger
}

func NewHandler(service NotificationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Enqueue POST /api/v1/notifications
func (h *Handler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /notifications - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	n, err := h.service.Enqueue(r.Context(), notifications.Request{
		ReferenceDoctype: req.ReferenceDoctype,
		ReferenceName:    req.ReferenceName,
		NotificationType: domain.NotificationType(req.NotificationType),
		Receiver:         req.Receiver,
		Party:            req.Party,
	})
	if err != nil {
		h.respondError(w, "POST /notifications", req.ReferenceName, err)
		return
	}

	h.logger.Info("POST /notifications - Notification queued: id=%d, type=%s, reference=%s %s",
		n.ID, n.NotificationType, n.ReferenceDoctype, n.ReferenceName)
	handlers.RespondJSON(w, http.StatusCreated, dto.NotificationsFromDomain([]domain.Notification{*n})[0])
}

// ListByReference GET /api/v1/notifications?referenceDoctype=&referenceName=
func (h *Handler) ListByReference(w http.ResponseWriter, r *http.Request) {
	doctype, name, ok := h.reference(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListByReference(r.Context(), doctype, name)
	if err != nil {
		h.respondError(w, "GET /notifications", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ListResponse{Notifications: dto.NotificationsFromDomain(list)})
}

// Counts GET /api/v1/notifications/counts?referenceDoctype=&referenceName=
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	doctype, name, ok := h.reference(w, r)
	if !ok {
		return
	}

	counts, err := h.service.Counts(r.Context(), doctype, name)
	if err != nil {
		h.respondError(w, "GET /notifications/counts", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, CountsResponse{Counts: dto.NotificationCountsFromDomain(counts)})
}

// Cancel DELETE /api/v1/notifications?referenceDoctype=&referenceName=&notificationType=
// Отменяет уведомления документа, ещё не отправленные шлюзом
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	doctype, name, ok := h.reference(w, r)
	if !ok {
		return
	}
	notificationType := domain.NotificationType(r.URL.Query().Get("notificationType"))

	cancelled, err := h.service.Cancel(r.Context(), doctype, name, notificationType)
	if err != nil {
		h.respondError(w, "DELETE /notifications", name, err)
		return
	}

	h.logger.Info("DELETE /notifications - Notifications cancelled: reference=%s %s, type=%s, count=%d",
		doctype, name, notificationType, cancelled)
	handlers.RespondJSON(w, http.StatusOK, CancelResponse{Cancelled: cancelled})
}

// ListQueued GET /api/v1/notifications/queued?limit=
func (h *Handler) ListQueued(w http.ResponseWriter, r *http.Request) {
	limit, err := handlers.QueryInt(r, "limit", notifications.DefaultQueuedLimit)
	if err != nil || limit <= 0 {
		handlers.RespondBadRequest(w, msgInvalidLimit)
		return
	}

	list, err := h.service.ListQueued(r.Context(), uint64(limit))
	if err != nil {
		h.respondError(w, "GET /notifications/queued", "", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ListResponse{Notifications: dto.NotificationsFromDomain(list)})
}

// MarkSent POST /api/v1/notifications/{id}/sent
func (h *Handler) MarkSent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkSent(r.Context(), id); err != nil {
		h.respondError(w, "POST /notifications/{id}/sent", strconv.FormatInt(id, 10), err)
		return
	}

	h.logger.Info("POST /notifications/{id}/sent - Notification sent: id=%d", id)
	handlers.RespondNoContent(w)
}

// MarkFailed POST /api/v1/notifications/{id}/failed
func (h *Handler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	var req MarkFailedRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /notifications/{id}/failed - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.MarkFailed(r.Context(), id, req.Reason); err != nil {
		h.respondError(w, "POST /notifications/{id}/failed", strconv.FormatInt(id, 10), err)
		return
	}

	h.logger.Warn("POST /notifications/{id}/failed - Notification failed: id=%d, reason=%s", id, req.Reason)
	handlers.RespondNoContent(w)
}

func (h *Handler) reference(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	doctype := r.URL.Query().Get("referenceDoctype")
	name := r.URL.Query().Get("referenceName")
	if doctype == "" || name == "" {
		handlers.RespondBadRequest(w, msgMissingReference)
		return "", "", false
	}
	return doctype, name, true
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("%s %s - Invalid notification ID: %v", r.Method, r.URL.Path, err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op, ref string, err error) {
	switch {
	case errors.Is(err, notifications.ErrNotificationNotFound):
		h.logger.Warn("%s - Notification not found: ref=%s", op, ref)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, notifications.ErrNoReceiver):
		h.logger.Warn("%s - No receiver: ref=%s", op, ref)
		handlers.RespondError(w, http.StatusUnprocessableEntity, msgNoReceiver)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: ref=%s, error=%v", op, ref, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, notifications.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: ref=%s, error=%v", op, ref, err)
		handlers.RespondInternalError(w)
	}
}
