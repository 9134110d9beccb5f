package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/alarm-clock/internal/application"
	"github.com/example/alarm-clock/internal/persistence"
)

var (
	alarmCounter   uint64
	mappingCounter uint64
)

var referenceTime = time.Date(2024, time.March, 4, 6, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so weekday oriented tests read naturally.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Alarm fixtures -----------------------------

// AlarmFixture represents a deterministic alarm record that can be
// materialised for application or persistence tests.
type AlarmFixture struct {
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

// AlarmOption configures the generated alarm fixture.
type AlarmOption func(*AlarmFixture)

// NewAlarmFixture returns a deterministic alarm fixture with optional overrides.
func NewAlarmFixture(opts ...AlarmOption) AlarmFixture {
	idx := atomic.AddUint64(&alarmCounter, 1)
	id := fmt.Sprintf("alarm-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AlarmFixture{
		ID:           id,
		Label:        fmt.Sprintf("Alarm %03d", idx),
		Hour:         7,
		Minute:       int(idx % 60),
		Enabled:      true,
		RepeatMask:   0,
		Vibrate:      true,
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		PasswordSalt: fmt.Sprintf("salt-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAlarmID overrides the generated alarm ID.
func WithAlarmID(id string) AlarmOption {
	return func(f *AlarmFixture) {
		f.ID = id
	}
}

// WithAlarmLabel overrides the generated label.
func WithAlarmLabel(label string) AlarmOption {
	return func(f *AlarmFixture) {
		f.Label = label
	}
}

// WithAlarmTime sets the wall-clock trigger time.
func WithAlarmTime(hour, minute int) AlarmOption {
	return func(f *AlarmFixture) {
		f.Hour = hour
		f.Minute = minute
	}
}

// WithAlarmEnabled sets the enabled flag.
func WithAlarmEnabled(enabled bool) AlarmOption {
	return func(f *AlarmFixture) {
		f.Enabled = enabled
	}
}

// WithAlarmRepeatMask sets the weekday repeat mask.
func WithAlarmRepeatMask(mask int) AlarmOption {
	return func(f *AlarmFixture) {
		f.RepeatMask = mask
	}
}

// WithAlarmRingtone sets the ringtone URI.
func WithAlarmRingtone(uri string) AlarmOption {
	return func(f *AlarmFixture) {
		f.RingtoneURI = uri
	}
}

// WithAlarmVibrate sets the vibrate flag.
func WithAlarmVibrate(vibrate bool) AlarmOption {
	return func(f *AlarmFixture) {
		f.Vibrate = vibrate
	}
}

// WithAlarmSnooze sets the snooze interval in minutes.
func WithAlarmSnooze(minutes int) AlarmOption {
	return func(f *AlarmFixture) {
		value := minutes
		f.SnoozeMinutes = &value
	}
}

// WithoutAlarmSnooze clears the snooze interval.
func WithoutAlarmSnooze() AlarmOption {
	return func(f *AlarmFixture) {
		f.SnoozeMinutes = nil
	}
}

// WithAlarmCredentials sets the stored password hash and salt.
func WithAlarmCredentials(hash, salt string) AlarmOption {
	return func(f *AlarmFixture) {
		f.PasswordHash = hash
		f.PasswordSalt = salt
	}
}

// WithAlarmPassword derives real credentials from a plaintext password.
func WithAlarmPassword(password string) AlarmOption {
	return func(f *AlarmFixture) {
		hash, salt, err := application.HashPassword(password)
		if err != nil {
			panic(fmt.Sprintf("testfixtures: failed to hash password: %v", err))
		}
		f.PasswordHash = hash
		f.PasswordSalt = salt
	}
}

// WithAlarmTimestamps sets both created and updated timestamps.
func WithAlarmTimestamps(created, updated time.Time) AlarmOption {
	return func(f *AlarmFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Alarm value.
func (f AlarmFixture) Application() application.Alarm {
	return application.Alarm{
		ID:            f.ID,
		Label:         f.Label,
		Hour:          f.Hour,
		Minute:        f.Minute,
		Enabled:       f.Enabled,
		RepeatMask:    f.RepeatMask,
		RingtoneURI:   f.RingtoneURI,
		Vibrate:       f.Vibrate,
		SnoozeMinutes: copyIntPtr(f.SnoozeMinutes),
		PasswordHash:  f.PasswordHash,
		PasswordSalt:  f.PasswordSalt,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Alarm value.
func (f AlarmFixture) Persistence() persistence.Alarm {
	var label, ringtone *string
	if f.Label != "" {
		value := f.Label
		label = &value
	}
	if f.RingtoneURI != "" {
		value := f.RingtoneURI
		ringtone = &value
	}
	return persistence.Alarm{
		ID:            f.ID,
		Label:         label,
		Hour:          f.Hour,
		Minute:        f.Minute,
		Enabled:       f.Enabled,
		RepeatMask:    f.RepeatMask,
		RingtoneURI:   ringtone,
		Vibrate:       f.Vibrate,
		SnoozeMinutes: copyIntPtr(f.SnoozeMinutes),
		PasswordHash:  f.PasswordHash,
		PasswordSalt:  f.PasswordSalt,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Input returns the fixture as an application.AlarmInput.
func (f AlarmFixture) Input() application.AlarmInput {
	return application.AlarmInput{
		Label:         f.Label,
		Hour:          f.Hour,
		Minute:        f.Minute,
		RepeatMask:    f.RepeatMask,
		RingtoneURI:   f.RingtoneURI,
		Vibrate:       f.Vibrate,
		SnoozeMinutes: copyIntPtr(f.SnoozeMinutes),
		Enabled:       f.Enabled,
	}
}

// ---------------------------- Mapping fixtures ----------------------------

// MappingFixture represents a deterministic schedule mapping record.
type MappingFixture struct {
	AlarmID     string
	ExternalID  string
	ScheduledAt time.Time
}

// MappingOption configures the generated mapping fixture.
type MappingOption func(*MappingFixture)

// NewMappingFixture returns a deterministic mapping fixture with optional overrides.
func NewMappingFixture(opts ...MappingOption) MappingFixture {
	idx := atomic.AddUint64(&mappingCounter, 1)
	fixture := MappingFixture{
		AlarmID:     fmt.Sprintf("alarm-%03d", idx),
		ExternalID:  fmt.Sprintf("wake-%03d", idx),
		ScheduledAt: referenceTime.Add(time.Duration(idx) * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMappingAlarmID sets the owning alarm ID.
func WithMappingAlarmID(id string) MappingOption {
	return func(f *MappingFixture) {
		f.AlarmID = id
	}
}

// WithMappingExternalID sets the wake request handle.
func WithMappingExternalID(id string) MappingOption {
	return func(f *MappingFixture) {
		f.ExternalID = id
	}
}

// WithMappingScheduledAt sets the scheduled trigger instant.
func WithMappingScheduledAt(t time.Time) MappingOption {
	return func(f *MappingFixture) {
		f.ScheduledAt = t
	}
}

// Application returns the fixture as an application.ScheduleMapping value.
func (f MappingFixture) Application() application.ScheduleMapping {
	return application.ScheduleMapping{
		AlarmID:     f.AlarmID,
		ExternalID:  f.ExternalID,
		ScheduledAt: f.ScheduledAt,
	}
}

// Persistence returns the fixture as a persistence.ScheduleMapping value.
func (f MappingFixture) Persistence() persistence.ScheduleMapping {
	return persistence.ScheduleMapping{
		AlarmID:     f.AlarmID,
		ExternalID:  f.ExternalID,
		ScheduledAt: f.ScheduledAt,
	}
}

// helper to deep copy optional ints.
func copyIntPtr(src *int) *int {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
