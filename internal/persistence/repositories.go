// Package persistence defines the storage contracts and row models for the
// alarm clock. Implementations live in the sqlite subpackage.
package persistence

import "context"

// AlarmRepository captures the durable operations on alarm rows.
type AlarmRepository interface {
	CreateAlarm(ctx context.Context, alarm Alarm) error
	GetAlarm(ctx context.Context, id string) (Alarm, error)
	UpdateAlarm(ctx context.Context, alarm Alarm) error
	DeleteAlarm(ctx context.Context, id string) error
	// ListAlarms returns all alarms in recency order (updated_at descending).
	ListAlarms(ctx context.Context) ([]Alarm, error)
}

// MappingRepository captures the durable operations on schedule mappings.
// UpsertMapping replaces any existing row for the same alarm id, which is the
// mechanism upholding the at-most-one-mapping invariant under concurrent
// schedule calls.
type MappingRepository interface {
	UpsertMapping(ctx context.Context, mapping ScheduleMapping) error
	GetMapping(ctx context.Context, alarmID string) (ScheduleMapping, error)
	DeleteMapping(ctx context.Context, alarmID string) error
	ListMappings(ctx context.Context) ([]ScheduleMapping, error)
}
