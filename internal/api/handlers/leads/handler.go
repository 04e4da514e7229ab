package leads

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/handlers/dto"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidPaging      = "некорректные параметры постраничного вывода"
	msgNotFound           = "лид не найден"
	msgLinked             = "лид связан с другими документами"
	msgMissingSender      = "нужен email или телефон отправителя"
)

type Handler struct {
	service LeadService
	logger  Logger
}

func NewHandler(service LeadService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Create POST /api/v1/leads
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.LeadRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /leads - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	lead := &domain.Lead{}
	req.ApplyTo(lead)

	created, err := h.service.Create(r.Context(), lead, leads.SaveOptions{})
	if err != nil {
		h.respondError(w, "POST /leads", "", err)
		return
	}

	h.logger.Info("POST /leads - Lead created: lead=%s", created.Name)
	handlers.RespondJSON(w, http.StatusCreated, dto.LeadFromDomain(created))
}

// Get GET /api/v1/leads/{name}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	lead, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /leads/{name}", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, dto.LeadFromDomain(lead))
}

// Update PUT /api/v1/leads/{name}
// Тело запроса заменяет все редактируемые поля лида
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req dto.LeadRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /leads/{name} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	lead, err := h.service.Get(r.Context(), name)
	if err != nil {
		h.respondError(w, "PUT /leads/{name}", name, err)
		return
	}
	req.ApplyTo(lead)

	saved, err := h.service.Update(r.Context(), lead, leads.SaveOptions{})
	if err != nil {
		h.respondError(w, "PUT /leads/{name}", name, err)
		return
	}

	h.logger.Info("PUT /leads/{name} - Lead saved: lead=%s, status=%s", name, saved.Status)
	handlers.RespondJSON(w, http.StatusOK, dto.LeadFromDomain(saved))
}

// Delete DELETE /api/v1/leads/{name}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.service.Delete(r.Context(), name); err != nil {
		h.respondError(w, "DELETE /leads/{name}", name, err)
		return
	}

	h.logger.Info("DELETE /leads/{name} - Lead deleted: lead=%s", name)
	handlers.RespondNoContent(w)
}

// Search GET /api/v1/leads?txt=&start=&pageLen=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start, err := handlers.QueryInt(r, "start", 0)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPaging)
		return
	}
	pageLen, err := handlers.QueryInt(r, "pageLen", domain.DefaultPageLength)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPaging)
		return
	}

	results, err := h.service.Search(r.Context(), r.URL.Query().Get("txt"), start, pageLen)
	if err != nil {
		h.respondError(w, "GET /leads", "", err)
		return
	}

	resp := SearchResponse{Results: make([]dto.LeadSearchResponse, len(results))}
	for i, res := range results {
		resp.Results[i] = dto.LeadSearchResponse{Name: res.Name, LeadName: res.LeadName, CompanyName: res.CompanyName}
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// MakeOpportunity GET /api/v1/leads/{name}/make-opportunity
// Возвращает несохранённую возможность, заполненную по лиду
func (h *Handler) MakeOpportunity(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	opp, err := h.service.MakeOpportunity(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /leads/{name}/make-opportunity", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, dto.OpportunityFromDomain(opp))
}

// ContactDetails GET /api/v1/leads/{name}/contact-details
func (h *Handler) ContactDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	details, err := h.service.ContactDetails(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /leads/{name}/contact-details", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, dto.ContactDetailsFromDomain(*details))
}

// AddressDetails GET /api/v1/leads/{name}/address-details
func (h *Handler) AddressDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	details, err := h.service.AddressDetails(r.Context(), name)
	if err != nil {
		h.respondError(w, "GET /leads/{name}/address-details", name, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, dto.AddressDetailsFromDomain(*details))
}

// FromCommunication POST /api/v1/leads/from-communication
func (h *Handler) FromCommunication(w http.ResponseWriter, r *http.Request) {
	var req FromCommunicationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /leads/from-communication - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.Email == "" && req.Phone == "" {
		handlers.RespondBadRequest(w, msgMissingSender)
		return
	}

	name, err := h.service.LeadFromCommunication(r.Context(), leads.CommunicationSender{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondError(w, "POST /leads/from-communication", "", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, LeadNameResponse{Lead: name})
}

// FindByPhone GET /api/v1/leads/by-phone?number=
// Пустое имя в ответе, если лид не найден
func (h *Handler) FindByPhone(w http.ResponseWriter, r *http.Request) {
	name, err := h.service.FindByPhoneNumber(r.Context(), r.URL.Query().Get("number"))
	if err != nil {
		h.respondError(w, "GET /leads/by-phone", "", err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, LeadNameResponse{Lead: name})
}

func (h *Handler) respondError(w http.ResponseWriter, op, name string, err error) {
	switch {
	case errors.Is(err, leads.ErrLeadNotFound):
		h.logger.Warn("%s - Lead not found: lead=%s", op, name)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, leads.ErrDuplicateEmail):
		h.logger.Warn("%s - Duplicate email: %v", op, err)
		handlers.RespondConflict(w, domain.ValidationMessage(err))

	case errors.Is(err, leads.ErrLeadLinked):
		h.logger.Warn("%s - Lead is linked: lead=%s", op, name)
		handlers.RespondConflict(w, msgLinked)

	case errors.Is(err, domain.ErrValidation):
		h.logger.Warn("%s - Validation failed: lead=%s, error=%v", op, name, err)
		handlers.RespondValidationError(w, err)

	case errors.Is(err, leads.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: %v", op, err)
		handlers.RespondBadRequest(w, err.Error())

	default:
		h.logger.Error("%s - Failed: lead=%s, error=%v", op, name, err)
		handlers.RespondInternalError(w)
	}
}
