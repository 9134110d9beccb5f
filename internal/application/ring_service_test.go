package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/alarm-clock/internal/recurrence"
)

func ringTestAlarm(t *testing.T, id string, mask int) Alarm {
	t.Helper()

	hash, salt, err := HashPassword("open sesame")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	alarm := testAlarm(id)
	alarm.RepeatMask = mask
	alarm.PasswordHash = hash
	alarm.PasswordSalt = salt
	return alarm
}

func TestRingServiceHandleFired(t *testing.T) {
	t.Parallel()

	t.Run("starts ringing for a known alarm", func(t *testing.T) {
		t.Parallel()

		alarm := ringTestAlarm(t, "alarm-1", recurrence.OneTime)
		player := &stubPlayer{}
		service := NewRingService(newStubAlarmStore(alarm), &stubScheduler{}, player, fixedClock(testMonday))

		session, err := service.HandleFired(context.Background(), "alarm-1")
		if err != nil {
			t.Fatalf("HandleFired failed: %v", err)
		}
		if session.Alarm.ID != "alarm-1" {
			t.Fatalf("expected session for alarm-1, got %s", session.Alarm.ID)
		}
		if session.FailedAttempts != 0 {
			t.Fatalf("fresh session must start with zero failed attempts, got %d", session.FailedAttempts)
		}
		if player.starts != 1 {
			t.Fatalf("expected 1 player start, got %d", player.starts)
		}
	})

	t.Run("duplicate delivery for the ringing alarm is a no-op", func(t *testing.T) {
		t.Parallel()

		alarm := ringTestAlarm(t, "alarm-1", recurrence.OneTime)
		player := &stubPlayer{}
		service := NewRingService(newStubAlarmStore(alarm), &stubScheduler{}, player, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("first HandleFired failed: %v", err)
		}
		if err := service.Dismiss(context.Background(), "wrong"); !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("expected ErrInvalidPassword, got %v", err)
		}

		session, err := service.HandleFired(context.Background(), "alarm-1")
		if err != nil {
			t.Fatalf("duplicate HandleFired failed: %v", err)
		}
		if session.FailedAttempts != 1 {
			t.Fatal("duplicate delivery must preserve the existing session")
		}
		if player.starts != 1 {
			t.Fatalf("duplicate delivery must not restart the player, starts=%d", player.starts)
		}
	})

	t.Run("a different alarm replaces the current session", func(t *testing.T) {
		t.Parallel()

		first := ringTestAlarm(t, "alarm-1", recurrence.OneTime)
		second := ringTestAlarm(t, "alarm-2", recurrence.OneTime)
		player := &stubPlayer{}
		service := NewRingService(newStubAlarmStore(first, second), &stubScheduler{}, player, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("first HandleFired failed: %v", err)
		}
		session, err := service.HandleFired(context.Background(), "alarm-2")
		if err != nil {
			t.Fatalf("second HandleFired failed: %v", err)
		}

		if session.Alarm.ID != "alarm-2" {
			t.Fatalf("expected alarm-2 to ring, got %s", session.Alarm.ID)
		}
		if player.stops != 1 || player.starts != 2 {
			t.Fatalf("expected stop/start handoff, starts=%d stops=%d", player.starts, player.stops)
		}
	})

	t.Run("unknown alarm id is rejected", func(t *testing.T) {
		t.Parallel()

		service := NewRingService(newStubAlarmStore(), &stubScheduler{}, &stubPlayer{}, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, ok := service.Session(); ok {
			t.Fatal("no session must exist after a rejected delivery")
		}
	})
}

func TestRingServiceDismiss(t *testing.T) {
	t.Parallel()

	t.Run("requires an active session", func(t *testing.T) {
		t.Parallel()

		service := NewRingService(newStubAlarmStore(), &stubScheduler{}, &stubPlayer{}, fixedClock(testMonday))

		if err := service.Dismiss(context.Background(), "anything"); !errors.Is(err, ErrNotRinging) {
			t.Fatalf("expected ErrNotRinging, got %v", err)
		}
	})

	t.Run("wrong password keeps ringing and counts the attempt", func(t *testing.T) {
		t.Parallel()

		alarm := ringTestAlarm(t, "alarm-1", recurrence.OneTime)
		player := &stubPlayer{}
		service := NewRingService(newStubAlarmStore(alarm), &stubScheduler{}, player, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("HandleFired failed: %v", err)
		}

		for i := 1; i <= 3; i++ {
			if err := service.Dismiss(context.Background(), "nope"); !errors.Is(err, ErrInvalidPassword) {
				t.Fatalf("attempt %d: expected ErrInvalidPassword, got %v", i, err)
			}
			session, ok := service.Session()
			if !ok {
				t.Fatalf("attempt %d: session must survive a wrong password", i)
			}
			if session.FailedAttempts != i {
				t.Fatalf("attempt %d: expected %d failed attempts, got %d", i, i, session.FailedAttempts)
			}
		}

		if player.stops != 0 {
			t.Fatal("player must keep ringing through failed attempts")
		}

		if err := service.Dismiss(context.Background(), "open sesame"); err != nil {
			t.Fatalf("correct password after failures must dismiss: %v", err)
		}
	})

	t.Run("one-time alarm is not re-armed", func(t *testing.T) {
		t.Parallel()

		alarm := ringTestAlarm(t, "alarm-1", recurrence.OneTime)
		scheduler := &stubScheduler{}
		player := &stubPlayer{}
		service := NewRingService(newStubAlarmStore(alarm), scheduler, player, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("HandleFired failed: %v", err)
		}
		if err := service.Dismiss(context.Background(), "open sesame"); err != nil {
			t.Fatalf("Dismiss failed: %v", err)
		}

		if len(scheduler.scheduledIDs()) != 0 {
			t.Fatal("a one-time alarm must not be rescheduled on dismissal")
		}
		if player.stops != 1 {
			t.Fatalf("expected 1 player stop, got %d", player.stops)
		}
		if _, ok := service.Session(); ok {
			t.Fatal("session must be cleared after dismissal")
		}
	})

	t.Run("repeating alarm is re-armed on dismissal", func(t *testing.T) {
		t.Parallel()

		mask := recurrence.WithDay(0, testMonday.Weekday(), true)
		alarm := ringTestAlarm(t, "alarm-1", mask)
		scheduler := &stubScheduler{}
		service := NewRingService(newStubAlarmStore(alarm), scheduler, &stubPlayer{}, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("HandleFired failed: %v", err)
		}
		if err := service.Dismiss(context.Background(), "open sesame"); err != nil {
			t.Fatalf("Dismiss failed: %v", err)
		}

		ids := scheduler.scheduledIDs()
		if len(ids) != 1 || ids[0] != "alarm-1" {
			t.Fatalf("expected alarm-1 to be re-armed, got %v", ids)
		}
	})

	t.Run("a whitespace-padded password still dismisses", func(t *testing.T) {
		t.Parallel()

		alarm := ringTestAlarm(t, "alarm-1", recurrence.OneTime)
		service := NewRingService(newStubAlarmStore(alarm), &stubScheduler{}, &stubPlayer{}, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("HandleFired failed: %v", err)
		}
		if err := service.Dismiss(context.Background(), "  open sesame  "); err != nil {
			t.Fatalf("padded password must dismiss: %v", err)
		}
		if _, ok := service.Session(); ok {
			t.Fatal("session must be cleared after dismissal")
		}
	})

	t.Run("dismissal succeeds even when the re-arm fails", func(t *testing.T) {
		t.Parallel()

		mask := recurrence.WithDay(0, testMonday.Weekday(), true)
		alarm := ringTestAlarm(t, "alarm-1", mask)
		scheduler := &stubScheduler{scheduleErr: errors.New("notifier unavailable")}
		player := &stubPlayer{}
		service := NewRingService(newStubAlarmStore(alarm), scheduler, player, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("HandleFired failed: %v", err)
		}
		if err := service.Dismiss(context.Background(), "open sesame"); err != nil {
			t.Fatalf("a correct password must silence the alarm regardless of re-arm outcome: %v", err)
		}

		if player.stops != 1 {
			t.Fatalf("expected the player to stop, stops=%d", player.stops)
		}
		if _, ok := service.Session(); ok {
			t.Fatal("session must be cleared even when the re-arm fails")
		}
	})

	t.Run("malformed stored credential surfaces an error", func(t *testing.T) {
		t.Parallel()

		alarm := testAlarm("alarm-1")
		alarm.PasswordHash = ""
		service := NewRingService(newStubAlarmStore(alarm), &stubScheduler{}, &stubPlayer{}, fixedClock(testMonday))

		if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
			t.Fatalf("HandleFired failed: %v", err)
		}
		if err := service.Dismiss(context.Background(), "open sesame"); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("expected ErrMissingCredential, got %v", err)
		}
	})
}

func TestRingServiceSilence(t *testing.T) {
	t.Parallel()

	alarm := ringTestAlarm(t, "alarm-1", recurrence.OneTime)
	player := &stubPlayer{}
	service := NewRingService(newStubAlarmStore(alarm), &stubScheduler{}, player, fixedClock(testMonday))

	service.Silence(context.Background())
	if player.stops != 0 {
		t.Fatal("silencing with no session must not touch the player")
	}

	if _, err := service.HandleFired(context.Background(), "alarm-1"); err != nil {
		t.Fatalf("HandleFired failed: %v", err)
	}
	service.Silence(context.Background())

	if player.stops != 1 {
		t.Fatalf("expected 1 player stop, got %d", player.stops)
	}
	if _, ok := service.Session(); ok {
		t.Fatal("session must be cleared by Silence")
	}
}
