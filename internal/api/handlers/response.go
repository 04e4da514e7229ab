package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"

	// maxBodyBytes ограничение размера тела запроса
	maxBodyBytes = 1 << 20
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse тело ответа с ошибкой бизнес-правила
type ValidationErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку с указанным статусом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

func RespondTooManyRequests(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusTooManyRequests, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondValidationError отвечает 422 с сообщением бизнес-правила
// Ошибки, требующие другого кода (конфликт слота, повторный follow up), отдаются с 409
func RespondValidationError(w http.ResponseWriter, err error) {
	status := http.StatusUnprocessableEntity
	kind := ""
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		status = http.StatusConflict
		kind = "slot_unavailable"
	case errors.Is(err, domain.ErrFollowUpAlreadyScheduled):
		status = http.StatusConflict
		kind = "follow_up_already_scheduled"
	case errors.Is(err, domain.ErrInvalidPartyType):
		kind = "invalid_party_type"
	}

	RespondJSON(w, status, ValidationErrorResponse{
		Code:    status,
		Message: domain.ValidationMessage(err),
		Kind:    kind,
	})
}

// DecodeJSON читает JSON тело запроса в dst
// Пустое тело и неизвестные поля считаются ошибкой
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

// ParseDate разбирает дату YYYY-MM-DD как настенную дату в UTC, пустая строка - nil
// loc не используется: дата не несёт зоны
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.DateFormat, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}

// ParseDateTime разбирает дату и время в формате RFC3339 или YYYY-MM-DD HH:MM:SS
// Результат - настенное время loc с меткой UTC, как domain.RealTimeProvider.Now
// Время без зоны уже настенное и берётся как есть
func ParseDateTime(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if loc == nil {
			loc = time.UTC
		}
		t = domain.WallClock(t.In(loc))
		return &t, nil
	}
	t, err := time.ParseInLocation(domain.DateTimeFormat, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	return &t, nil
}

// FormatDate форматирует дату, nil - пустая строка
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(domain.DateFormat)
}

// FormatDateTime форматирует время в RFC3339, nil - пустая строка
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// QueryInt читает целый query параметр, def если параметр не передан
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}
