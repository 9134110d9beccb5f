package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/alarm-clock/internal/application"
)

type ringService interface {
	Session() (application.RingSession, bool)
	Dismiss(ctx context.Context, password string) error
}

type RingHandler struct {
	service   ringService
	responder responder
	logger    *slog.Logger
}

func NewRingHandler(service ringService, logger *slog.Logger) *RingHandler {
	base := defaultLogger(logger)
	return &RingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RingHandler", operation, attrs...)
}

// Status reports whether an alarm is ringing. A quiet state is a 200 with
// ringing=false, not an error; the client polls this endpoint.
func (h *RingHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	session, ok := h.service.Session()
	if !ok {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, ringStatusResponse{Ringing: false})
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, ringStatusResponse{
		Ringing:        true,
		AlarmID:        session.Alarm.ID,
		Label:          session.Alarm.Label,
		StartedAt:      session.StartedAt.UTC().Format(time.RFC3339),
		FailedAttempts: session.FailedAttempts,
	})
}

// Dismiss attempts to silence the ringing alarm with the supplied password.
func (h *RingHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Dismiss", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode dismiss request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Dismiss")

	if err := h.service.Dismiss(r.Context(), req.Password); err != nil {
		logger.ErrorContext(r.Context(), "dismissal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "alarm dismissed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type ringStatusResponse struct {
	Ringing        bool   `json:"ringing"`
	AlarmID        string `json:"alarm_id,omitempty"`
	Label          string `json:"label,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	FailedAttempts int    `json:"failed_attempts,omitempty"`
}

type dismissRequest struct {
	Password string `json:"password"`
}
