package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/alarm-clock/internal/recurrence"
)

// AlarmStore exposes the alarm lookup and mutation operations the services
// need from the external store.
type AlarmStore interface {
	CreateAlarm(ctx context.Context, alarm Alarm) (Alarm, error)
	GetAlarm(ctx context.Context, id string) (Alarm, error)
	UpdateAlarm(ctx context.Context, alarm Alarm) (Alarm, error)
	DeleteAlarm(ctx context.Context, id string) error
	ListAlarms(ctx context.Context) ([]Alarm, error)
}

// RingPlayer is the sound/vibration collaborator. Stop must be idempotent and
// safe to call when nothing is playing.
type RingPlayer interface {
	Start(vibrate bool, ringtoneURI string)
	Stop()
}

// WakeScheduler is the slice of ScheduleService the ring service needs to
// re-arm a repeating alarm after dismissal.
type WakeScheduler interface {
	Schedule(ctx context.Context, alarm Alarm) (*ScheduleMapping, error)
}

// RingService drives the lifecycle from a fired notification to a silenced or
// re-armed alarm. It owns the single in-memory ring session; there is no
// separate snooze state and no attempt limit, since the device owner must
// always be able to eventually silence the alarm.
type RingService struct {
	alarms    AlarmStore
	scheduler WakeScheduler
	player    RingPlayer
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	session *RingSession
}

// NewRingService constructs a RingService with the provided dependencies.
func NewRingService(alarms AlarmStore, scheduler WakeScheduler, player RingPlayer, now func() time.Time) *RingService {
	return NewRingServiceWithLogger(alarms, scheduler, player, now, nil)
}

// NewRingServiceWithLogger constructs a RingService with a specified logger.
func NewRingServiceWithLogger(alarms AlarmStore, scheduler WakeScheduler, player RingPlayer, now func() time.Time, logger *slog.Logger) *RingService {
	if now == nil {
		now = time.Now
	}
	return &RingService{
		alarms:    alarms,
		scheduler: scheduler,
		player:    player,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *RingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RingService", operation, attrs...)
}

// HandleFired transitions Idle to Ringing for the delivered alarm id. A
// duplicate delivery for the alarm that is already ringing is a no-op; a
// delivery for a different alarm replaces the current session.
func (s *RingService) HandleFired(ctx context.Context, alarmID string) (RingSession, error) {
	if s == nil {
		return RingSession{}, fmt.Errorf("RingService is nil")
	}
	if s.alarms == nil {
		return RingSession{}, fmt.Errorf("alarm store not configured")
	}

	logger := s.loggerWith(ctx, "HandleFired", "alarm_id", alarmID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && s.session.Alarm.ID == alarmID {
		logger.InfoContext(ctx, "duplicate fired event ignored")
		return *s.session, nil
	}

	alarm, err := s.alarms.GetAlarm(ctx, alarmID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load fired alarm", "error", err, "error_kind", ErrorKind(err))
		return RingSession{}, err
	}

	if s.session != nil && s.player != nil {
		s.player.Stop()
	}
	if s.player != nil {
		s.player.Start(alarm.Vibrate, alarm.RingtoneURI)
	}

	s.session = &RingSession{Alarm: alarm, StartedAt: s.now()}
	logger.InfoContext(ctx, "alarm ringing")
	return *s.session, nil
}

// Dismiss verifies the password against the ringing alarm. On success the
// player stops, the session is cleared, and a repeating alarm is re-armed for
// its next occurrence. A one-time alarm is left unscheduled; it already fired
// and owns no mapping. A wrong password increments the attempt counter and
// keeps ringing. The candidate is trimmed before verification, matching the
// normalization applied when the password was set.
func (s *RingService) Dismiss(ctx context.Context, password string) error {
	if s == nil {
		return fmt.Errorf("RingService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ErrNotRinging
	}

	alarm := s.session.Alarm
	logger := s.loggerWith(ctx, "Dismiss", "alarm_id", alarm.ID)

	ok, err := VerifyPassword(strings.TrimSpace(password), alarm.PasswordHash, alarm.PasswordSalt)
	if err != nil {
		logger.ErrorContext(ctx, "stored credential is malformed", "error", err)
		return err
	}
	if !ok {
		s.session.FailedAttempts++
		logger.InfoContext(ctx, "dismissal rejected", "failed_attempts", s.session.FailedAttempts)
		return ErrInvalidPassword
	}

	if s.player != nil {
		s.player.Stop()
	}
	s.session = nil

	// The alarm is silenced at this point; a failed re-arm must not undo
	// that. The startup rescheduling pass recovers any missing wake request.
	if alarm.RepeatMask != recurrence.OneTime && s.scheduler != nil {
		if _, err := s.scheduler.Schedule(ctx, alarm); err != nil {
			logger.ErrorContext(ctx, "failed to re-arm repeating alarm", "error", err)
		}
	}

	logger.InfoContext(ctx, "alarm dismissed")
	return nil
}

// Session returns a copy of the current ring session, if any.
func (s *RingService) Session() (RingSession, bool) {
	if s == nil {
		return RingSession{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return RingSession{}, false
	}
	return *s.session, true
}

// Silence clears the ring session without password verification and stops the
// player. It exists for explicit cancellation paths such as service shutdown,
// not for user-facing dismissal.
func (s *RingService) Silence(ctx context.Context) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}

	logger := s.loggerWith(ctx, "Silence", "alarm_id", s.session.Alarm.ID)
	if s.player != nil {
		s.player.Stop()
	}
	s.session = nil
	logger.InfoContext(ctx, "ring session cleared")
}
