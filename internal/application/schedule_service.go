package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/alarm-clock/internal/recurrence"
)

// MappingStore captures the persistence interactions for schedule mappings.
// UpsertMapping must replace any existing row for the same alarm id.
type MappingStore interface {
	UpsertMapping(ctx context.Context, mapping ScheduleMapping) error
	GetMapping(ctx context.Context, alarmID string) (ScheduleMapping, error)
	DeleteMapping(ctx context.Context, alarmID string) error
}

// WakeNotifier is the platform notification subsystem the coordinator
// registers wake requests with. CancelWake is best-effort; the handle may be
// stale because the request already fired.
type WakeNotifier interface {
	RegisterWake(ctx context.Context, at time.Time, payload WakePayload) (string, error)
	CancelWake(ctx context.Context, externalID string) error
}

// ScheduleService coordinates alarms against the external notifier and the
// durable schedule mapping, keeping at most one outstanding wake request per
// alarm.
type ScheduleService struct {
	mappings MappingStore
	notifier WakeNotifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewScheduleService constructs a ScheduleService with the provided dependencies.
func NewScheduleService(mappings MappingStore, notifier WakeNotifier, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(mappings, notifier, now, nil)
}

// NewScheduleServiceWithLogger constructs a ScheduleService with a specified logger.
func NewScheduleServiceWithLogger(mappings MappingStore, notifier WakeNotifier, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		mappings: mappings,
		notifier: notifier,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// Schedule registers the next wake request for an alarm and persists the
// resulting mapping, replacing any existing one. Disabled alarms are a no-op
// and return a nil mapping.
func (s *ScheduleService) Schedule(ctx context.Context, alarm Alarm) (*ScheduleMapping, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.mappings == nil || s.notifier == nil {
		return nil, fmt.Errorf("schedule service not configured")
	}

	if !alarm.Enabled {
		return nil, nil
	}

	trigger := recurrence.NextTrigger(alarm.Hour, alarm.Minute, alarm.RepeatMask, s.now())
	logger := s.loggerWith(ctx, "Schedule", "alarm_id", alarm.ID, "trigger", trigger)

	externalID, err := s.notifier.RegisterWake(ctx, trigger, WakePayload{
		AlarmID: alarm.ID,
		Title:   alarmTitle(alarm),
		Body:    clockLabel(alarm.Hour, alarm.Minute),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to register wake request", "error", err)
		return nil, err
	}

	mapping := ScheduleMapping{
		AlarmID:     alarm.ID,
		ExternalID:  externalID,
		ScheduledAt: trigger,
	}
	if err := s.mappings.UpsertMapping(ctx, mapping); err != nil {
		logger.ErrorContext(ctx, "failed to persist schedule mapping", "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "alarm scheduled", "external_id", externalID)
	return &mapping, nil
}

// Cancel withdraws the outstanding wake request for an alarm, if any, and
// deletes its mapping. Notifier failures are swallowed: the request may have
// already fired and a stale handle is not actionable.
func (s *ScheduleService) Cancel(ctx context.Context, alarmID string) error {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	if s.mappings == nil {
		return fmt.Errorf("schedule service not configured")
	}

	logger := s.loggerWith(ctx, "Cancel", "alarm_id", alarmID)

	mapping, err := s.mappings.GetMapping(ctx, alarmID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.CancelWake(ctx, mapping.ExternalID); err != nil {
			logger.WarnContext(ctx, "best-effort wake cancellation failed", "external_id", mapping.ExternalID, "error", err)
		}
	}

	if err := s.mappings.DeleteMapping(ctx, alarmID); err != nil {
		logger.ErrorContext(ctx, "failed to delete schedule mapping", "error", err)
		return err
	}

	logger.InfoContext(ctx, "alarm schedule cancelled")
	return nil
}

// RescheduleAll cancels and re-registers the wake request of every enabled
// alarm. The unconditional cancel-then-create sequence is what makes the
// operation idempotent, so it is safe to run on every startup.
func (s *ScheduleService) RescheduleAll(ctx context.Context, alarms []Alarm) error {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}

	logger := s.loggerWith(ctx, "RescheduleAll", "total", len(alarms))

	scheduled := 0
	for _, alarm := range alarms {
		if !alarm.Enabled {
			continue
		}
		if err := s.Cancel(ctx, alarm.ID); err != nil {
			return fmt.Errorf("failed to cancel alarm %s: %w", alarm.ID, err)
		}
		if _, err := s.Schedule(ctx, alarm); err != nil {
			return fmt.Errorf("failed to schedule alarm %s: %w", alarm.ID, err)
		}
		scheduled++
	}

	logger.InfoContext(ctx, "rescheduled enabled alarms", "scheduled", scheduled)
	return nil
}

func alarmTitle(alarm Alarm) string {
	if alarm.Label != "" {
		return alarm.Label
	}
	return "Alarm"
}

// clockLabel renders a 12-hour wall-clock string such as "7:05 AM".
func clockLabel(hour, minute int) string {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, suffix)
}
