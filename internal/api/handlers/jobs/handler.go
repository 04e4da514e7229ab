package jobs

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/jobs"
)

const (
	msgUnknownJob = "задача не найдена"
	msgJobFailed  = "задача завершилась с ошибкой"
)

// JobsResponse зарегистрированные задачи
type JobsResponse struct {
	Jobs []string `json:"jobs"`
}

type Handler struct {
	runner JobRunner
	logger Logger
}

func NewHandler(runner JobRunner, logger Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger,
	}
}

// List GET /api/v1/jobs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, JobsResponse{Jobs: h.runner.Names()})
}

// Run POST /api/v1/jobs/{name}/run
// Синхронно выполняет задачу, ответ отдаётся после завершения
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.runner.RunJob(r.Context(), name); err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			h.logger.Warn("POST /jobs/{name}/run - Unknown job: name=%s", name)
			handlers.RespondNotFound(w, msgUnknownJob)
			return
		}
		h.logger.Error("POST /jobs/{name}/run - Job failed: name=%s, error=%v", name, err)
		handlers.RespondError(w, http.StatusInternalServerError, msgJobFailed)
		return
	}

	h.logger.Info("POST /jobs/{name}/run - Job finished: name=%s", name)
	handlers.RespondNoContent(w)
}
