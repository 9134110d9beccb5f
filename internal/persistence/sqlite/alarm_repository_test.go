package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/alarm-clock/internal/persistence"
)

func TestAlarmRepository_CreateAndGet(t *testing.T) {
	repo := NewAlarmRepository(setupPool(t))

	snooze := 10
	alarm := sampleAlarm("alarm-1")
	alarm.SnoozeMinutes = &snooze

	if err := repo.CreateAlarm(context.Background(), alarm); err != nil {
		t.Fatalf("CreateAlarm failed: %v", err)
	}

	got, err := repo.GetAlarm(context.Background(), "alarm-1")
	if err != nil {
		t.Fatalf("GetAlarm failed: %v", err)
	}

	if got.ID != "alarm-1" || got.Hour != 7 || got.Minute != 30 || got.RepeatMask != 42 {
		t.Fatalf("unexpected alarm row: %+v", got)
	}
	if got.Label == nil || *got.Label != "Wake up" {
		t.Fatalf("unexpected label: %v", got.Label)
	}
	if got.SnoozeMinutes == nil || *got.SnoozeMinutes != 10 {
		t.Fatalf("unexpected snooze minutes: %v", got.SnoozeMinutes)
	}
	if !got.Enabled || !got.Vibrate {
		t.Fatalf("boolean flags not round-tripped: %+v", got)
	}
	if !got.CreatedAt.Equal(repoTestTime) || !got.UpdatedAt.Equal(repoTestTime) {
		t.Fatalf("timestamps not round-tripped: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestAlarmRepository_OptionalFieldsRoundTripAsNull(t *testing.T) {
	repo := NewAlarmRepository(setupPool(t))

	alarm := sampleAlarm("alarm-1")
	alarm.Label = nil
	alarm.RingtoneURI = nil
	alarm.SnoozeMinutes = nil

	if err := repo.CreateAlarm(context.Background(), alarm); err != nil {
		t.Fatalf("CreateAlarm failed: %v", err)
	}

	got, err := repo.GetAlarm(context.Background(), "alarm-1")
	if err != nil {
		t.Fatalf("GetAlarm failed: %v", err)
	}
	if got.Label != nil || got.RingtoneURI != nil || got.SnoozeMinutes != nil {
		t.Fatalf("expected nil optional fields, got %+v", got)
	}
}

func TestAlarmRepository_GetMissingAlarm(t *testing.T) {
	repo := NewAlarmRepository(setupPool(t))

	if _, err := repo.GetAlarm(context.Background(), "ghost"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAlarmRepository_DuplicateIDIsRejected(t *testing.T) {
	repo := NewAlarmRepository(setupPool(t))

	if err := repo.CreateAlarm(context.Background(), sampleAlarm("alarm-1")); err != nil {
		t.Fatalf("CreateAlarm failed: %v", err)
	}
	if err := repo.CreateAlarm(context.Background(), sampleAlarm("alarm-1")); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAlarmRepository_ConstraintViolations(t *testing.T) {
	repo := NewAlarmRepository(setupPool(t))

	t.Run("hour outside range", func(t *testing.T) {
		alarm := sampleAlarm("alarm-hour")
		alarm.Hour = 24
		if err := repo.CreateAlarm(context.Background(), alarm); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("repeat mask outside range", func(t *testing.T) {
		alarm := sampleAlarm("alarm-mask")
		alarm.RepeatMask = 128
		if err := repo.CreateAlarm(context.Background(), alarm); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})

	t.Run("empty password hash", func(t *testing.T) {
		alarm := sampleAlarm("alarm-hash")
		alarm.PasswordHash = ""
		if err := repo.CreateAlarm(context.Background(), alarm); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})
}

func TestAlarmRepository_Update(t *testing.T) {
	repo := NewAlarmRepository(setupPool(t))

	if err := repo.CreateAlarm(context.Background(), sampleAlarm("alarm-1")); err != nil {
		t.Fatalf("CreateAlarm failed: %v", err)
	}

	updated := sampleAlarm("alarm-1")
	updated.Hour = 8
	updated.Enabled = false
	updated.UpdatedAt = repoTestTime.Add(time.Hour)

	if err := repo.UpdateAlarm(context.Background(), updated); err != nil {
		t.Fatalf("UpdateAlarm failed: %v", err)
	}

	got, err := repo.GetAlarm(context.Background(), "alarm-1")
	if err != nil {
		t.Fatalf("GetAlarm failed: %v", err)
	}
	if got.Hour != 8 || got.Enabled {
		t.Fatalf("update not applied: %+v", got)
	}
	if !got.CreatedAt.Equal(repoTestTime) {
		t.Fatalf("created_at must be immutable, got %v", got.CreatedAt)
	}

	t.Run("missing alarm yields ErrNotFound", func(t *testing.T) {
		missing := sampleAlarm("ghost")
		if err := repo.UpdateAlarm(context.Background(), missing); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAlarmRepository_DeleteRemovesMapping(t *testing.T) {
	pool := setupPool(t)
	alarms := NewAlarmRepository(pool)
	mappings := NewMappingRepository(pool)

	if err := alarms.CreateAlarm(context.Background(), sampleAlarm("alarm-1")); err != nil {
		t.Fatalf("CreateAlarm failed: %v", err)
	}
	if err := mappings.UpsertMapping(context.Background(), persistence.ScheduleMapping{
		AlarmID:     "alarm-1",
		ExternalID:  "wake-1",
		ScheduledAt: repoTestTime.Add(time.Hour),
	}); err != nil {
		t.Fatalf("UpsertMapping failed: %v", err)
	}

	if err := alarms.DeleteAlarm(context.Background(), "alarm-1"); err != nil {
		t.Fatalf("DeleteAlarm failed: %v", err)
	}

	if _, err := alarms.GetAlarm(context.Background(), "alarm-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected alarm to be gone, got %v", err)
	}
	if _, err := mappings.GetMapping(context.Background(), "alarm-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected mapping to be gone, got %v", err)
	}

	t.Run("deleting a missing alarm yields ErrNotFound", func(t *testing.T) {
		if err := alarms.DeleteAlarm(context.Background(), "ghost"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAlarmRepository_ListOrdersByRecency(t *testing.T) {
	repo := NewAlarmRepository(setupPool(t))

	older := sampleAlarm("alarm-old")
	older.UpdatedAt = repoTestTime

	newer := sampleAlarm("alarm-new")
	newer.CreatedAt = repoTestTime.Add(time.Hour)
	newer.UpdatedAt = repoTestTime.Add(time.Hour)

	for _, alarm := range []persistence.Alarm{older, newer} {
		if err := repo.CreateAlarm(context.Background(), alarm); err != nil {
			t.Fatalf("CreateAlarm(%s) failed: %v", alarm.ID, err)
		}
	}

	list, err := repo.ListAlarms(context.Background())
	if err != nil {
		t.Fatalf("ListAlarms failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 alarms, got %d", len(list))
	}
	if list[0].ID != "alarm-new" || list[1].ID != "alarm-old" {
		t.Fatalf("expected most recently updated first, got %s then %s", list[0].ID, list[1].ID)
	}
}
