package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/alarm-clock/internal/recurrence"
)

const (
	passwordMinLength = 4
	passwordMaxLength = 64
)

// AlarmScheduler is the slice of ScheduleService the alarm service needs to
// keep wake requests in step with alarm mutations.
type AlarmScheduler interface {
	Schedule(ctx context.Context, alarm Alarm) (*ScheduleMapping, error)
	Cancel(ctx context.Context, alarmID string) error
}

// AlarmService orchestrates validation, credential handling, persistence, and
// scheduling for alarms.
type AlarmService struct {
	alarms      AlarmStore
	scheduler   AlarmScheduler
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAlarmService wires dependencies for the alarm service.
func NewAlarmService(alarms AlarmStore, scheduler AlarmScheduler, idGenerator func() string, now func() time.Time) *AlarmService {
	return NewAlarmServiceWithLogger(alarms, scheduler, idGenerator, now, nil)
}

// NewAlarmServiceWithLogger wires dependencies with a specified logger.
func NewAlarmServiceWithLogger(alarms AlarmStore, scheduler AlarmScheduler, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AlarmService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AlarmService{
		alarms:      alarms,
		scheduler:   scheduler,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AlarmService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AlarmService", operation, attrs...)
}

// CreateAlarm validates input, hashes the dismissal password, persists the
// alarm, and schedules its first wake request when enabled.
func (s *AlarmService) CreateAlarm(ctx context.Context, params CreateAlarmParams) (Alarm, error) {
	if s == nil {
		return Alarm{}, fmt.Errorf("AlarmService is nil")
	}
	if s.alarms == nil {
		return Alarm{}, fmt.Errorf("alarm store not configured")
	}

	normalized := normalizeAlarmInput(params.Input)
	vErr := validateAlarmInput(normalized)
	validatePassword(params.Password, "password", vErr)
	if vErr.HasErrors() {
		return Alarm{}, vErr
	}

	hash, salt, err := HashPassword(strings.TrimSpace(params.Password))
	if err != nil {
		return Alarm{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	alarm := Alarm{
		ID:            s.idGenerator(),
		Label:         normalized.Label,
		Hour:          normalized.Hour,
		Minute:        normalized.Minute,
		Enabled:       normalized.Enabled,
		RepeatMask:    normalized.RepeatMask,
		RingtoneURI:   normalized.RingtoneURI,
		Vibrate:       normalized.Vibrate,
		SnoozeMinutes: normalized.SnoozeMinutes,
		PasswordHash:  hash,
		PasswordSalt:  salt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	logger := s.loggerWith(ctx, "CreateAlarm", "alarm_id", alarm.ID)

	persisted, err := s.alarms.CreateAlarm(ctx, alarm)
	if err != nil {
		logger.ErrorContext(ctx, "failed to persist alarm", "error", err, "error_kind", ErrorKind(err))
		return Alarm{}, err
	}

	if persisted.Enabled && s.scheduler != nil {
		if _, err := s.scheduler.Schedule(ctx, persisted); err != nil {
			logger.ErrorContext(ctx, "failed to schedule new alarm", "error", err)
			return Alarm{}, err
		}
	}

	logger.InfoContext(ctx, "alarm created", "repeat", recurrence.Summarize(persisted.RepeatMask))
	return persisted, nil
}

// GetAlarm returns a single alarm by id.
func (s *AlarmService) GetAlarm(ctx context.Context, id string) (Alarm, error) {
	if s == nil {
		return Alarm{}, fmt.Errorf("AlarmService is nil")
	}
	if s.alarms == nil {
		return Alarm{}, fmt.Errorf("alarm store not configured")
	}
	return s.alarms.GetAlarm(ctx, id)
}

// ListAlarms returns all alarms in recency order.
func (s *AlarmService) ListAlarms(ctx context.Context) ([]Alarm, error) {
	if s == nil {
		return nil, fmt.Errorf("AlarmService is nil")
	}
	if s.alarms == nil {
		return nil, nil
	}
	return s.alarms.ListAlarms(ctx)
}

// UpdateAlarm validates input, updates the stored alarm preserving its
// identity and credentials, and replaces any outstanding wake request.
func (s *AlarmService) UpdateAlarm(ctx context.Context, params UpdateAlarmParams) (Alarm, error) {
	if s == nil {
		return Alarm{}, fmt.Errorf("AlarmService is nil")
	}
	if s.alarms == nil {
		return Alarm{}, fmt.Errorf("alarm store not configured")
	}

	existing, err := s.alarms.GetAlarm(ctx, params.AlarmID)
	if err != nil {
		return Alarm{}, err
	}

	normalized := normalizeAlarmInput(params.Input)
	vErr := validateAlarmInput(normalized)
	if vErr.HasErrors() {
		return Alarm{}, vErr
	}

	updated := existing
	updated.Label = normalized.Label
	updated.Hour = normalized.Hour
	updated.Minute = normalized.Minute
	updated.Enabled = normalized.Enabled
	updated.RepeatMask = normalized.RepeatMask
	updated.RingtoneURI = normalized.RingtoneURI
	updated.Vibrate = normalized.Vibrate
	updated.SnoozeMinutes = normalized.SnoozeMinutes
	updated.UpdatedAt = s.now()

	logger := s.loggerWith(ctx, "UpdateAlarm", "alarm_id", params.AlarmID)

	persisted, err := s.alarms.UpdateAlarm(ctx, updated)
	if err != nil {
		logger.ErrorContext(ctx, "failed to update alarm", "error", err, "error_kind", ErrorKind(err))
		return Alarm{}, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.Cancel(ctx, persisted.ID); err != nil {
			return Alarm{}, err
		}
		if persisted.Enabled {
			if _, err := s.scheduler.Schedule(ctx, persisted); err != nil {
				return Alarm{}, err
			}
		}
	}

	logger.InfoContext(ctx, "alarm updated")
	return persisted, nil
}

// SetEnabled toggles an alarm. Disabling is password-gated through the same
// verification path used to dismiss a ringing alarm; enabling is not.
func (s *AlarmService) SetEnabled(ctx context.Context, params SetEnabledParams) (Alarm, error) {
	if s == nil {
		return Alarm{}, fmt.Errorf("AlarmService is nil")
	}
	if s.alarms == nil {
		return Alarm{}, fmt.Errorf("alarm store not configured")
	}

	existing, err := s.alarms.GetAlarm(ctx, params.AlarmID)
	if err != nil {
		return Alarm{}, err
	}

	logger := s.loggerWith(ctx, "SetEnabled", "alarm_id", params.AlarmID, "enabled", params.Enabled)

	if !params.Enabled {
		ok, err := VerifyPassword(strings.TrimSpace(params.Password), existing.PasswordHash, existing.PasswordSalt)
		if err != nil {
			logger.ErrorContext(ctx, "stored credential is malformed", "error", err)
			return Alarm{}, err
		}
		if !ok {
			logger.InfoContext(ctx, "disable rejected", "error_kind", ErrorKind(ErrInvalidPassword))
			return Alarm{}, ErrInvalidPassword
		}
	}

	updated := existing
	updated.Enabled = params.Enabled
	updated.UpdatedAt = s.now()

	persisted, err := s.alarms.UpdateAlarm(ctx, updated)
	if err != nil {
		return Alarm{}, err
	}

	if s.scheduler != nil {
		if persisted.Enabled {
			if _, err := s.scheduler.Schedule(ctx, persisted); err != nil {
				return Alarm{}, err
			}
		} else {
			if err := s.scheduler.Cancel(ctx, persisted.ID); err != nil {
				return Alarm{}, err
			}
		}
	}

	logger.InfoContext(ctx, "alarm toggled")
	return persisted, nil
}

// ChangePassword rotates an alarm's dismissal password after verifying the
// current one.
func (s *AlarmService) ChangePassword(ctx context.Context, params ChangePasswordParams) (Alarm, error) {
	if s == nil {
		return Alarm{}, fmt.Errorf("AlarmService is nil")
	}
	if s.alarms == nil {
		return Alarm{}, fmt.Errorf("alarm store not configured")
	}

	existing, err := s.alarms.GetAlarm(ctx, params.AlarmID)
	if err != nil {
		return Alarm{}, err
	}

	logger := s.loggerWith(ctx, "ChangePassword", "alarm_id", params.AlarmID)

	ok, err := VerifyPassword(strings.TrimSpace(params.Current), existing.PasswordHash, existing.PasswordSalt)
	if err != nil {
		logger.ErrorContext(ctx, "stored credential is malformed", "error", err)
		return Alarm{}, err
	}
	if !ok {
		return Alarm{}, ErrInvalidPassword
	}

	vErr := &ValidationError{}
	validatePassword(params.Next, "password", vErr)
	if vErr.HasErrors() {
		return Alarm{}, vErr
	}

	hash, salt, err := HashPassword(strings.TrimSpace(params.Next))
	if err != nil {
		return Alarm{}, fmt.Errorf("failed to hash password: %w", err)
	}

	updated := existing
	updated.PasswordHash = hash
	updated.PasswordSalt = salt
	updated.UpdatedAt = s.now()

	persisted, err := s.alarms.UpdateAlarm(ctx, updated)
	if err != nil {
		return Alarm{}, err
	}

	logger.InfoContext(ctx, "alarm password rotated")
	return persisted, nil
}

// DeleteAlarm cancels any outstanding wake request and removes the alarm.
func (s *AlarmService) DeleteAlarm(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("AlarmService is nil")
	}
	if s.alarms == nil {
		return fmt.Errorf("alarm store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteAlarm", "alarm_id", id)

	if s.scheduler != nil {
		if err := s.scheduler.Cancel(ctx, id); err != nil {
			return err
		}
	}

	if err := s.alarms.DeleteAlarm(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		logger.ErrorContext(ctx, "failed to delete alarm", "error", err)
		return err
	}

	logger.InfoContext(ctx, "alarm deleted")
	return nil
}

func normalizeAlarmInput(input AlarmInput) AlarmInput {
	input.Label = strings.TrimSpace(input.Label)
	input.RingtoneURI = strings.TrimSpace(input.RingtoneURI)
	input.RepeatMask = recurrence.Clamp(input.RepeatMask)
	return input
}

func validateAlarmInput(input AlarmInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Hour < 0 || input.Hour > 23 {
		vErr.add("hour", "hour must be between 0 and 23")
	}
	if input.Minute < 0 || input.Minute > 59 {
		vErr.add("minute", "minute must be between 0 and 59")
	}
	if input.SnoozeMinutes != nil && *input.SnoozeMinutes <= 0 {
		vErr.add("snooze_minutes", "snooze minutes must be a positive integer or empty")
	}

	return vErr
}

func validatePassword(password, field string, vErr *ValidationError) {
	trimmed := strings.TrimSpace(password)
	switch {
	case trimmed == "":
		vErr.add(field, "password cannot be empty or whitespace only")
	case len(trimmed) < passwordMinLength:
		vErr.add(field, fmt.Sprintf("password must be at least %d characters", passwordMinLength))
	case len(trimmed) > passwordMaxLength:
		vErr.add(field, fmt.Sprintf("password must be at most %d characters", passwordMaxLength))
	}
}
