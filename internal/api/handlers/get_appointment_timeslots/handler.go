package get_appointment_timeslots

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	getTimeslots "github.com/m04kA/SMC-CRM/internal/usecase/get_appointment_timeslots"
)

const (
	msgMissingDate             = "дата обязательна"
	msgInvalidDate             = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgAppointmentTypeNotFound = "тип встречи не найден"
)

type Handler struct {
	useCase GetAppointmentTimeslotsUseCase
	loc     *time.Location
	logger  Logger
}

func NewHandler(useCase GetAppointmentTimeslotsUseCase, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		loc:     loc,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointment-types/{name}/timeslots
// Query params: date (required, YYYY-MM-DD), exclude (встреча, не учитываемая в занятости)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentType := mux.Vars(r)["name"]

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /appointment-types/{name}/timeslots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := handlers.ParseDate(dateStr, h.loc)
	if err != nil {
		h.logger.Warn("GET /appointment-types/{name}/timeslots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getTimeslots.Request{
		Date:            *date,
		AppointmentType: appointmentType,
		Exclude:         r.URL.Query().Get("exclude"),
	})
	if err != nil {
		switch {
		case errors.Is(err, getTimeslots.ErrAppointmentTypeNotFound):
			h.logger.Warn("GET /appointment-types/{name}/timeslots - Appointment type not found: type=%s", appointmentType)
			handlers.RespondNotFound(w, msgAppointmentTypeNotFound)

		default:
			h.logger.Error("GET /appointment-types/{name}/timeslots - Failed to get timeslots: type=%s, date=%s, error=%v",
				appointmentType, dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointment-types/{name}/timeslots - Timeslots retrieved: type=%s, date=%s, slots_count=%d",
		appointmentType, dateStr, len(result.Timeslots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
