package appointments

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	"github.com/m04kA/SMC-CRM/internal/api/middleware"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/appointments"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректная дата"
	msgInvalidPaging      = "некорректные параметры постраничного вывода"
	msgNotFound           = "встреча не найдена"
	msgLeadNotFound       = "лид не найден"
	msgNotDraft           = "встреча уже подтверждена"
	msgNotSubmitted       = "встреча не подтверждена"
	msgMissingType        = "не указан тип встречи"
)

type Handler struct {
	service AppointmentService
	loc     *time.Location
	logger  Logger
}

func NewHandler(service AppointmentService, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		service: service,
		loc:     loc,
		logger:  logger,
	}
}

// Create POST /api/v1/appointments
// Создаёт черновик встречи
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	a := &domain.Appointment{}
	if err := req.ApplyTo(a, h.loc); err != nil {
		h.logger.Warn("POST /appointments - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	res, err := h.service.Create(r.Context(), a, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /appointments", "", err)
		return
	}

	h.logger.Info("POST /appointments - Appointment created: appointment=%s, warnings=%d", res.Appointment.Name, len(res.Warnings))
	handlers.RespondJSON(w, http.StatusCreated, fromSaveResult(res))
}

// Get GET /api/v1/appointments/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	details, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /appointments/{name}", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, fromDetails(details))
}

// Update PUT /api/v1/appointments/{name}
// Меняет только черновик
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req dto.AppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	details, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "PUT /appointments/{name}", name, err)
		return
	}
	a := details.Appointment
	if err := req.ApplyTo(a, h.loc); err != nil {
		h.logger.Warn("PUT /appointments/{name} - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	res, err := h.service.Update(r.Context(), a, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "PUT /appointments/{name}", name, err)
		return
	}

	h.logger.Info("PUT /appointments/{name} - Appointment saved: appointment=%s", name)
	handlers.RespondJSON(w, http.StatusOK, fromSaveResult(res))
}

// Delete DELETE /api/v1/appointments/{name}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.service.Delete(r.Context(), name, h.saveOptions(r)); err != nil {
		h.respondError(w, "DELETE /appointments/{name}", name, err)
		return
	}

	h.logger.Info("DELETE /appointments/{name} - Appointment deleted: appointment=%s", name)
	handlers.RespondNoContent(w)
}

// Submit POST /api/v1/appointments/{name}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	res, err := h.service.Submit(r.Context(), name, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /appointments/{name}/submit", name, err)
		return
	}

	h.logger.Info("POST /appointments/{name}/submit - Appointment submitted: appointment=%s, status=%s", name, res.Appointment.Status)
	handlers.RespondJSON(w, http.StatusOK, fromSaveResult(res))
}

// Cancel POST /api/v1/appointments/{name}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	a, err := h.service.Cancel(r.Context(), name, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /appointments/{name}/cancel", name, err)
		return
	}

	h.logger.Info("POST /appointments/{name}/cancel - Appointment cancelled: appointment=%s", name)
	handlers.RespondJSON(w, http.StatusOK, dto.AppointmentFromDomain(a))
}

// UpdateAfterSubmit PATCH /api/v1/appointments/{name}
func (h *Handler) UpdateAfterSubmit(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req AfterSubmitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	res, err := h.service.UpdateAfterSubmit(r.Context(), name, appointments.AfterSubmitChanges{
		SalesPerson:            req.SalesPerson,
		ContactMobile:          req.ContactMobile,
		SecondaryContactMobile: req.SecondaryContactMobile,
		Remarks:                req.Remarks,
		VoiceOfCustomer:        req.VoiceOfCustomer,
		Description:            req.Description,
	}, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "PATCH /appointments/{name}", name, err)
		return
	}

	h.logger.Info("PATCH /appointments/{name} - Appointment updated after submit: appointment=%s", name)
	handlers.RespondJSON(w, http.StatusOK, fromSaveResult(res))
}

// UpdateStatus POST /api/v1/appointments/{name}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{name}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	a, err := h.service.UpdateStatus(r.Context(), name, domain.AppointmentStatus(req.Status), h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /appointments/{name}/status", name, err)
		return
	}

	h.logger.Info("POST /appointments/{name}/status - Status updated: appointment=%s, status=%s", name, a.Status)
	handlers.RespondJSON(w, http.StatusOK, dto.AppointmentFromDomain(a))
}

// Reschedule GET /api/v1/appointments/{name}/reschedule
// Возвращает несохранённую копию встречи для переноса
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	a, err := h.service.Reschedule(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /appointments/{name}/reschedule", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, dto.AppointmentFromDomain(a))
}

// Events GET /api/v1/appointments/events?start=&end=
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	start, err := handlers.ParseDate(r.URL.Query().Get("start"), h.loc)
	if err != nil || start == nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	end, err := handlers.ParseDate(r.URL.Query().Get("end"), h.loc)
	if err != nil || end == nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	events, err := h.service.Events(r.Context(), *start, *end)
	if err != nil {
		h.respondError(w, "GET /appointments/events", "", err)
		return
	}

	resp := EventsResponse{Events: make([]EventResponse, len(events))}
	for i, e := range events {
		resp.Events[i] = EventResponse{
			Name:         e.Name,
			CustomerName: e.CustomerName,
			Status:       string(e.Status),
			Start:        handlers.FormatDateTime(&e.ScheduledDt),
			End:          handlers.FormatDateTime(&e.EndDt),
		}
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// SalesPersons GET /api/v1/appointments/sales-persons?appointmentType=&txt=&start=&end=&exclude=&allowed=&offset=&limit=
// start и end задают слот, для которого считается доступность продавцов
func (h *Handler) SalesPersons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	appointmentType := q.Get("appointmentType")
	if appointmentType == "" {
		handlers.RespondBadRequest(w, msgMissingType)
		return
	}

	start, err := handlers.ParseDateTime(q.Get("start"), h.loc)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	end, err := handlers.ParseDateTime(q.Get("end"), h.loc)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	offset, err := handlers.QueryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		handlers.RespondBadRequest(w, msgInvalidPaging)
		return
	}
	limit, err := handlers.QueryInt(r, "limit", domain.DefaultPageLength)
	if err != nil || limit < 0 {
		handlers.RespondBadRequest(w, msgInvalidPaging)
		return
	}

	var allowed []string
	if raw := q.Get("allowed"); raw != "" {
		allowed = strings.Split(raw, ",")
	}

	options, err := h.service.SalesPersonQuery(r.Context(), appointmentType, domain.SalesPersonQuery{
		Txt:     q.Get("txt"),
		Allowed: allowed,
		Start:   start,
		End:     end,
		Exclude: q.Get("exclude"),
		Offset:  uint64(offset),
		Limit:   uint64(limit),
	})
	if err != nil {
		h.respondError(w, "GET /appointments/sales-persons", "", err)
		return
	}

	resp := SalesPersonsResponse{Results: make([]SalesPersonOptionResponse, len(options))}
	for i, o := range options {
		resp.Results[i] = SalesPersonOptionResponse{Name: o.Name, Availability: o.Availability}
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) saveOptions(r *http.Request) appointments.SaveOptions {
	user, _ := middleware.GetUserID(r.Context())
	return appointments.SaveOptions{User: user}
}

func (h *Handler) respondError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, appointments.ErrAppointmentNotFound):
		h.logger.Warn("%s - Appointment not found: appointment=%s", op, name)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, appointments.ErrLeadNotFound):
		h.logger.Warn("%s - Lead not found: appointment=%s", op, name)
		handlers.RespondNotFound(w, msgLeadNotFound)

	case errors.Is(err, appointments.ErrNotDraft):
		h.logger.Warn("%s - Appointment is not a draft: appointment=%s", op, name)
		handlers.RespondConflict(w, msgNotDraft)

	case errors.Is(err, appointments.ErrNotSubmitted):
		h.logger.Warn("%s - Appointment is not submitted: appointment=%s", op, name)
		handlers.RespondConflict(w, msgNotSubmitted)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: appointment=%s, error=%v", op, name, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, appointments.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: appointment=%s, error=%v", op, name, err)
		handlers.RespondInternalError(w)
	}
}
