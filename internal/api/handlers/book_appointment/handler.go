package book_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/api/middleware"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/appointments"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
	bookAppointment "github.com/m04kA/SMC-CRM/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-CRM/pkg/types"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты встречи, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgSlotInPast         = "выбранное время уже прошло"
	msgLeadNotFound       = "лид не найден"
	msgDuplicateEmail     = "лид с таким email уже существует"
)

type Handler struct {
	useCase BookAppointmentUseCase
	loc     *time.Location
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		loc:     loc,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/book
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/book - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	user, _ := middleware.GetUserID(r.Context())

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(h.loc, user)
	if err != nil {
		h.logger.Warn("POST /appointments/book - Failed to parse request: %v", err)
		if errors.Is(err, types.ErrInvalidTimeString) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, bookAppointment.ErrSlotInPast):
			h.logger.Warn("POST /appointments/book - Slot in the past: date=%s, time=%s", req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, appointments.ErrLeadNotFound):
			h.logger.Warn("POST /appointments/book - Lead not found: lead=%s", req.PartyName)
			handlers.RespondNotFound(w, msgLeadNotFound)

		case errors.Is(err, leads.ErrDuplicateEmail):
			h.logger.Warn("POST /appointments/book - Duplicate email: %v", err)
			handlers.RespondConflict(w, msgDuplicateEmail)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /appointments/book - Validation failed: type=%s, date=%s, time=%s, error=%v",
				req.AppointmentType, req.Date, req.StartTime, err)
			handlers.RespondValidationError(w, err)

		case errors.Is(err, bookAppointment.ErrInvalidInput), errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("POST /appointments/book - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /appointments/book - Failed to book appointment: type=%s, date=%s, error=%v",
				req.AppointmentType, req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/book - Appointment booked: appointment=%s, lead=%s, lead_created=%t",
		result.Appointment.Name, result.Appointment.PartyName, result.LeadCreated)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
