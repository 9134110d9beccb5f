package persistence

import "time"

// Alarm is the persisted representation of an alarm row.
type Alarm struct {
	ID            string
	Label         *string
	Hour          int
	Minute        int
	Enabled       bool
	RepeatMask    int
	RingtoneURI   *string
	Vibrate       bool
	SnoozeMinutes *int
	PasswordHash  string
	PasswordSalt  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScheduleMapping links an alarm to its outstanding external wake request.
// At most one row exists per alarm id.
type ScheduleMapping struct {
	AlarmID     string
	ExternalID  string
	ScheduledAt time.Time
}
