package opportunities

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	"github.com/m04kA/SMC-CRM/internal/api/middleware"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/opportunities"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректная дата"
	msgInvalidStatus      = "некорректный статус возможности"
	msgEmptyNames         = "не указаны возможности"
	msgMissingParty       = "не указаны тип и имя контрагента"
	msgNotFound           = "возможность не найдена"
	msgLeadNotFound       = "лид не найден"
)

type Handler struct {
	service OpportunityService
	loc     *time.Location
	logger  Logger
}

func NewHandler(service OpportunityService, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		service: service,
		loc:     loc,
		logger:  logger,
	}
}

// Create POST /api/v1/opportunities
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.OpportunityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /opportunities - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	opp := &domain.Opportunity{}
	if err := req.ApplyTo(opp, h.loc); err != nil {
		h.logger.Warn("POST /opportunities - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	created, err := h.service.Create(r.Context(), opp, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /opportunities", "", err)
		return
	}

	h.logger.Info("POST /opportunities - Opportunity created: opportunity=%s, party=%s", created.Name, created.PartyName)
	handlers.RespondJSON(w, http.StatusCreated, dto.OpportunityFromDomain(created))
}

// Get GET /api/v1/opportunities/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	details, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /opportunities/{name}", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDetails(details))
}

// Update PUT /api/v1/opportunities/{name}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req dto.OpportunityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /opportunities/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	details, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "PUT /opportunities/{name}", name, err)
		return
	}
	opp := details.Opportunity
	if err := req.ApplyTo(opp, h.loc); err != nil {
		h.logger.Warn("PUT /opportunities/{name} - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	saved, err := h.service.Update(r.Context(), opp, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "PUT /opportunities/{name}", name, err)
		return
	}

	h.logger.Info("PUT /opportunities/{name} - Opportunity saved: opportunity=%s, status=%s", name, saved.Status)
	handlers.RespondJSON(w, http.StatusOK, dto.OpportunityFromDomain(saved))
}

// Delete DELETE /api/v1/opportunities/{name}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.service.Delete(r.Context(), name); err != nil {
		h.respondError(w, "DELETE /opportunities/{name}", name, err)
		return
	}

	h.logger.Info("DELETE /opportunities/{name} - Opportunity deleted: opportunity=%s", name)
	handlers.RespondNoContent(w)
}

// CustomerDetails GET /api/v1/opportunities/customer-details?partyType=&partyName=
func (h *Handler) CustomerDetails(w http.ResponseWriter, r *http.Request) {
	partyType := r.URL.Query().Get("partyType")
	partyName := r.URL.Query().Get("partyName")
	if partyType == "" || partyName == "" {
		handlers.RespondBadRequest(w, msgMissingParty)
		return
	}

	details, err := h.service.CustomerDetails(r.Context(), partyType, partyName)
	if err != nil {
		h.respondError(w, "GET /opportunities/customer-details", partyName, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, dto.CustomerDetailsFromDomain(*details))
}

// SetLost POST /api/v1/opportunities/{name}/lost
func (h *Handler) SetLost(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req SetLostRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /opportunities/{name}/lost - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	opp, err := h.service.SetIsLost(r.Context(), name, req.IsLost, req.LostReasons, req.DetailedReason, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /opportunities/{name}/lost", name, err)
		return
	}

	h.logger.Info("POST /opportunities/{name}/lost - Lost flag set: opportunity=%s, isLost=%t", name, req.IsLost)
	handlers.RespondJSON(w, http.StatusOK, dto.OpportunityFromDomain(opp))
}

// SetMultipleStatus POST /api/v1/opportunities/status
func (h *Handler) SetMultipleStatus(w http.ResponseWriter, r *http.Request) {
	var req SetMultipleStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /opportunities/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if len(req.Names) == 0 {
		handlers.RespondBadRequest(w, msgEmptyNames)
		return
	}
	status := domain.OpportunityStatus(req.Status)
	if !status.IsValid() {
		handlers.RespondBadRequest(w, msgInvalidStatus)
		return
	}

	if err := h.service.SetMultipleStatus(r.Context(), req.Names, status, h.saveOptions(r)); err != nil {
		h.respondError(w, "POST /opportunities/status", "", err)
		return
	}

	h.logger.Info("POST /opportunities/status - Status set: count=%d, status=%s", len(req.Names), status)
	handlers.RespondNoContent(w)
}

// ScheduleFollowUp POST /api/v1/opportunities/{name}/follow-ups
func (h *Handler) ScheduleFollowUp(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req ScheduleFollowUpRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /opportunities/{name}/follow-ups - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	date, err := handlers.ParseDate(req.Date, h.loc)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	opp, err := h.service.ScheduleFollowUp(r.Context(), name, date, req.ToDiscuss, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /opportunities/{name}/follow-ups", name, err)
		return
	}

	h.logger.Info("POST /opportunities/{name}/follow-ups - Follow up scheduled: opportunity=%s, date=%s", name, req.Date)
	handlers.RespondJSON(w, http.StatusOK, dto.OpportunityFromDomain(opp))
}

// SubmitCommunication POST /api/v1/opportunities/{name}/communications
func (h *Handler) SubmitCommunication(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req SubmitCommunicationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /opportunities/{name}/communications - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	contactDate, err := handlers.ParseDateTime(req.ContactDate, h.loc)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	sreq := opportunities.SubmitCommunicationRequest{
		Name:           name,
		Remarks:        req.Remarks,
		UpdateFollowUp: req.UpdateFollowUp,
	}
	if contactDate != nil {
		sreq.ContactDate = *contactDate
	}

	opp, err := h.service.SubmitCommunication(r.Context(), sreq, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /opportunities/{name}/communications", name, err)
		return
	}

	h.logger.Info("POST /opportunities/{name}/communications - Communication submitted: opportunity=%s", name)
	handlers.RespondJSON(w, http.StatusOK, dto.OpportunityFromDomain(opp))
}

// SubmitCommunicationWithAction POST /api/v1/opportunities/{name}/communications/action
func (h *Handler) SubmitCommunicationWithAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req SubmitWithActionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /opportunities/{name}/communications/action - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	followUpDate, err := handlers.ParseDate(req.FollowUpDate, h.loc)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	res, err := h.service.SubmitCommunicationWithAction(r.Context(), opportunities.SubmitWithActionRequest{
		Name:         name,
		Remarks:      req.Remarks,
		Action:       req.Action,
		FollowUpDate: followUpDate,
		LostReasons:  req.LostReasons,
	}, h.saveOptions(r))
	if err != nil {
		h.respondError(w, "POST /opportunities/{name}/communications/action", name, err)
		return
	}

	resp := SubmitWithActionResponse{Opportunity: res.Opportunity}
	if res.Appointment != nil {
		resp.Appointment = dto.AppointmentFromDomain(res.Appointment)
	}

	h.logger.Info("POST /opportunities/{name}/communications/action - Action done: opportunity=%s, action=%s", name, req.Action)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// MakeAppointment GET /api/v1/opportunities/{name}/make-appointment
// Возвращает несохранённый черновик встречи по возможности
func (h *Handler) MakeAppointment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	appt, err := h.service.MakeAppointment(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /opportunities/{name}/make-appointment", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, dto.AppointmentFromDomain(appt))
}

// FollowUpEvents GET /api/v1/opportunities/follow-up-events?start=&end=
func (h *Handler) FollowUpEvents(w http.ResponseWriter, r *http.Request) {
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

	events, err := h.service.FollowUpEvents(r.Context(), *start, *end)
	if err != nil {
		h.respondError(w, "GET /opportunities/follow-up-events", "", err)
		return
	}

	resp := FollowUpEventsResponse{Events: make([]dto.FollowUpEventResponse, len(events))}
	for i, e := range events {
		resp.Events[i] = dto.FollowUpEventResponse{
			Name:         e.Name,
			CustomerName: e.CustomerName,
			Status:       string(e.Status),
			ScheduleDate: handlers.FormatDate(&e.ScheduleDate),
		}
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) saveOptions(r *http.Request) opportunities.SaveOptions {
	user, _ := middleware.GetUserID(r.Context())
	return opportunities.SaveOptions{User: user}
}

func (h *Handler) respondError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, opportunities.ErrOpportunityNotFound):
		h.logger.Warn("%s - Opportunity not found: opportunity=%s", op, name)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, opportunities.ErrLeadNotFound):
		h.logger.Warn("%s - Lead not found: opportunity=%s", op, name)
		handlers.RespondNotFound(w, msgLeadNotFound)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: opportunity=%s, error=%v", op, name, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, opportunities.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: opportunity=%s, error=%v", op, name, err)
		handlers.RespondInternalError(w)
	}
}
