package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/alarm-clock/internal/application"
	"github.com/example/alarm-clock/internal/recurrence"
)

type alarmService interface {
	CreateAlarm(ctx context.Context, params application.CreateAlarmParams) (application.Alarm, error)
	GetAlarm(ctx context.Context, id string) (application.Alarm, error)
	ListAlarms(ctx context.Context) ([]application.Alarm, error)
	UpdateAlarm(ctx context.Context, params application.UpdateAlarmParams) (application.Alarm, error)
	SetEnabled(ctx context.Context, params application.SetEnabledParams) (application.Alarm, error)
	ChangePassword(ctx context.Context, params application.ChangePasswordParams) (application.Alarm, error)
	DeleteAlarm(ctx context.Context, id string) error
}

type AlarmHandler struct {
	service   alarmService
	responder responder
	logger    *slog.Logger
}

func NewAlarmHandler(service alarmService, logger *slog.Logger) *AlarmHandler {
	base := defaultLogger(logger)
	return &AlarmHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AlarmHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AlarmHandler", operation, attrs...)
}

func (h *AlarmHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createAlarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode alarm request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	alarm, err := h.service.CreateAlarm(r.Context(), application.CreateAlarmParams{
		Input:    req.toInput(),
		Password: req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("alarm_id", alarm.ID).InfoContext(r.Context(), "alarm created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, alarmResponse{Alarm: toAlarmDTO(alarm)})
}

func (h *AlarmHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	alarms, err := h.service.ListAlarms(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]alarmDTO, 0, len(alarms))
	for _, alarm := range alarms {
		dtos = append(dtos, toAlarmDTO(alarm))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmListResponse{Alarms: dtos})
}

func (h *AlarmHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	logger := h.log(r.Context(), "Get", "alarm_id", alarmID)

	alarm, err := h.service.GetAlarm(r.Context(), alarmID)
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Alarm: toAlarmDTO(alarm)})
}

func (h *AlarmHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing alarm id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	var req alarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "alarm_id", alarmID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode alarm request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "alarm_id", alarmID)

	alarm, err := h.service.UpdateAlarm(r.Context(), application.UpdateAlarmParams{
		AlarmID: alarmID,
		Input:   req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "alarm updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Alarm: toAlarmDTO(alarm)})
}

func (h *AlarmHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	var req setEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetEnabled", "alarm_id", alarmID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode toggle request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetEnabled", "alarm_id", alarmID, "enabled", req.Enabled)

	alarm, err := h.service.SetEnabled(r.Context(), application.SetEnabledParams{
		AlarmID:  alarmID,
		Enabled:  req.Enabled,
		Password: req.Password,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "alarm toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "alarm toggled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Alarm: toAlarmDTO(alarm)})
}

func (h *AlarmHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ChangePassword", "alarm_id", alarmID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode password request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "ChangePassword", "alarm_id", alarmID)

	alarm, err := h.service.ChangePassword(r.Context(), application.ChangePasswordParams{
		AlarmID: alarmID,
		Current: req.CurrentPassword,
		Next:    req.NewPassword,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "password rotation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "alarm password rotated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alarmResponse{Alarm: toAlarmDTO(alarm)})
}

func (h *AlarmHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alarmID, ok := AlarmIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alarmID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlarmID)
		return
	}

	logger := h.log(r.Context(), "Delete", "alarm_id", alarmID)

	if err := h.service.DeleteAlarm(r.Context(), alarmID); err != nil {
		logger.ErrorContext(r.Context(), "alarm deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "alarm deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type alarmDTO struct {
	ID            string `json:"id"`
	Label         string `json:"label,omitempty"`
	Hour          int    `json:"hour"`
	Minute        int    `json:"minute"`
	Enabled       bool   `json:"enabled"`
	RepeatDays    int    `json:"repeat_days"`
	RepeatSummary string `json:"repeat_summary"`
	RingtoneURI   string `json:"ringtone_uri,omitempty"`
	Vibrate       bool   `json:"vibrate"`
	SnoozeMinutes *int   `json:"snooze_minutes,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toAlarmDTO(alarm application.Alarm) alarmDTO {
	return alarmDTO{
		ID:            alarm.ID,
		Label:         alarm.Label,
		Hour:          alarm.Hour,
		Minute:        alarm.Minute,
		Enabled:       alarm.Enabled,
		RepeatDays:    alarm.RepeatMask,
		RepeatSummary: recurrence.Summarize(alarm.RepeatMask),
		RingtoneURI:   alarm.RingtoneURI,
		Vibrate:       alarm.Vibrate,
		SnoozeMinutes: alarm.SnoozeMinutes,
		CreatedAt:     alarm.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     alarm.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type alarmRequest struct {
	Label         string `json:"label"`
	Hour          int    `json:"hour"`
	Minute        int    `json:"minute"`
	RepeatDays    int    `json:"repeat_days"`
	RingtoneURI   string `json:"ringtone_uri"`
	Vibrate       bool   `json:"vibrate"`
	SnoozeMinutes *int   `json:"snooze_minutes"`
	Enabled       bool   `json:"enabled"`
}

func (r alarmRequest) toInput() application.AlarmInput {
	return application.AlarmInput{
		Label:         r.Label,
		Hour:          r.Hour,
		Minute:        r.Minute,
		RepeatMask:    r.RepeatDays,
		RingtoneURI:   r.RingtoneURI,
		Vibrate:       r.Vibrate,
		SnoozeMinutes: r.SnoozeMinutes,
		Enabled:       r.Enabled,
	}
}

type createAlarmRequest struct {
	alarmRequest
	Password string `json:"password"`
}

type setEnabledRequest struct {
	Enabled  bool   `json:"enabled"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type alarmResponse struct {
	Alarm alarmDTO `json:"alarm"`
}

type alarmListResponse struct {
	Alarms []alarmDTO `json:"alarms"`
}
