// Package notify provides the local, timer-backed implementation of the wake
// notification subsystem. Each registered wake request arms a timer and is
// addressed by an opaque handle, mirroring how a platform notification
// scheduler hands back an identifier for later cancellation.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/alarm-clock/internal/application"
)

// FiredEvent is emitted when a registered wake request comes due.
type FiredEvent struct {
	ExternalID string
	Payload    application.WakePayload
	FiredAt    time.Time
}

// LocalNotifier registers wake requests against in-process timers and
// delivers fired events on a channel. It satisfies the notifier contract of
// the schedule service: handles are opaque strings, cancellation of an
// unknown or already fired handle reports an error that callers may treat as
// best-effort.
type LocalNotifier struct {
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	events chan FiredEvent
	closed bool
}

// Option configures a LocalNotifier.
type Option func(*LocalNotifier)

// WithClock overrides the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(n *LocalNotifier) {
		if now != nil {
			n.now = now
		}
	}
}

// WithLogger sets the notifier's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *LocalNotifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewLocalNotifier constructs a notifier with a buffered event channel. The
// buffer absorbs a burst of simultaneous fires without blocking timer
// goroutines.
func NewLocalNotifier(opts ...Option) *LocalNotifier {
	n := &LocalNotifier{
		now:    time.Now,
		logger: slog.Default(),
		timers: make(map[string]*time.Timer),
		events: make(chan FiredEvent, 16),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Events returns the channel on which fired wake requests are delivered.
func (n *LocalNotifier) Events() <-chan FiredEvent {
	return n.events
}

// RegisterWake arms a timer for the given instant and returns its handle. An
// instant in the past fires immediately rather than erroring; the caller's
// trigger calculation already guarantees future instants, so this is only a
// guard against clock drift between calculation and registration.
func (n *LocalNotifier) RegisterWake(_ context.Context, at time.Time, payload application.WakePayload) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return "", fmt.Errorf("notify: notifier is closed")
	}

	externalID := uuid.NewString()
	delay := at.Sub(n.now())
	if delay < 0 {
		delay = 0
	}

	n.timers[externalID] = time.AfterFunc(delay, func() {
		n.fire(externalID, payload)
	})

	n.logger.Debug("wake request registered",
		"external_id", externalID,
		"alarm_id", payload.AlarmID,
		"at", at,
	)
	return externalID, nil
}

// CancelWake disarms the timer for a handle. A handle that is unknown,
// already fired, or already cancelled yields an error so callers can log it;
// the schedule service treats that as best-effort and moves on.
func (n *LocalNotifier) CancelWake(_ context.Context, externalID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	timer, ok := n.timers[externalID]
	if !ok {
		return fmt.Errorf("notify: unknown wake handle %s", externalID)
	}
	delete(n.timers, externalID)

	if !timer.Stop() {
		return fmt.Errorf("notify: wake handle %s already fired", externalID)
	}
	return nil
}

func (n *LocalNotifier) fire(externalID string, payload application.WakePayload) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	delete(n.timers, externalID)
	event := FiredEvent{
		ExternalID: externalID,
		Payload:    payload,
		FiredAt:    n.now(),
	}
	n.mu.Unlock()

	select {
	case n.events <- event:
	default:
		n.logger.Warn("fired event dropped, consumer not keeping up",
			"external_id", externalID,
			"alarm_id", payload.AlarmID,
		)
	}
}

// Close disarms all outstanding timers and closes the event channel. Further
// registrations fail.
func (n *LocalNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true

	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
	close(n.events)
}

// Pending reports the number of armed wake requests.
func (n *LocalNotifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}
