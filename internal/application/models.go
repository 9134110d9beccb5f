package application

import "time"

// Alarm represents an alarm as exposed by the application services. Password
// credentials travel with the alarm because every alarm carries its own
// dismissal secret; the plaintext password never appears here.
type Alarm struct {
	ID            string
	Label         string
	Hour          int
	Minute        int
	Enabled       bool
	RepeatMask    int
	RingtoneURI   string
	Vibrate       bool
	SnoozeMinutes *int
	PasswordHash  string
	PasswordSalt  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AlarmInput captures caller provided alarm fields.
type AlarmInput struct {
	Label         string
	Hour          int
	Minute        int
	RepeatMask    int
	RingtoneURI   string
	Vibrate       bool
	SnoozeMinutes *int
	Enabled       bool
}

// ScheduleMapping links an alarm to its outstanding wake request with the
// notification subsystem. At most one mapping exists per alarm.
type ScheduleMapping struct {
	AlarmID     string
	ExternalID  string
	ScheduledAt time.Time
}

// WakePayload is the display content attached to a registered wake request.
type WakePayload struct {
	AlarmID string
	Title   string
	Body    string
}

// RingSession is the transient record of the currently firing alarm. It lives
// only for one ring episode and is never persisted.
type RingSession struct {
	Alarm          Alarm
	FailedAttempts int
	StartedAt      time.Time
}

// CreateAlarmParams wraps the data required to create an alarm.
type CreateAlarmParams struct {
	Input    AlarmInput
	Password string
}

// UpdateAlarmParams wraps the data required to update an existing alarm.
type UpdateAlarmParams struct {
	AlarmID string
	Input   AlarmInput
}

// SetEnabledParams wraps the data required to toggle an alarm. Password is
// only consulted when disabling.
type SetEnabledParams struct {
	AlarmID  string
	Enabled  bool
	Password string
}

// ChangePasswordParams wraps the data required to rotate an alarm's password.
type ChangePasswordParams struct {
	AlarmID  string
	Current  string
	Next     string
}
