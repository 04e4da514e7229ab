package make_opportunity_from_lead_form

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
	leadForm "github.com/m04kA/SMC-CRM/internal/usecase/make_opportunity_from_lead_form"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgRateLimited        = "слишком много запросов, попробуйте позже"
)

type Handler struct {
	useCase LeadFormUseCase
	logger  Logger
}

func NewHandler(useCase LeadFormUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/web-form/lead
// Публичный endpoint, вызывается без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LeadFormRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /web-form/lead - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	ip := clientIP(r)
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(ip))
	if err != nil {
		switch {
		case errors.Is(err, leadForm.ErrRateLimited):
			h.logger.Warn("POST /web-form/lead - Rate limited: ip=%s", ip)
			handlers.RespondTooManyRequests(w, msgRateLimited)

		case errors.Is(err, leads.ErrDuplicateEmail), errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /web-form/lead - Validation failed: ip=%s, sender=%s, error=%v", ip, req.Sender, err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, leadForm.ErrInvalidInput):
			h.logger.Warn("POST /web-form/lead - Invalid input: ip=%s, error=%v", ip, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /web-form/lead - Failed to process form: ip=%s, sender=%s, error=%v", ip, req.Sender, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /web-form/lead - Form processed: lead=%s, lead_created=%t, opportunity=%s",
		result.Lead, result.LeadCreated, result.Opportunity)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
