package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/alarm-clock/internal/persistence"
)

// AlarmRepository implements persistence.AlarmRepository using SQLite.
type AlarmRepository struct {
	pool *ConnectionPool
}

// NewAlarmRepository creates a new SQLite alarm repository.
func NewAlarmRepository(pool *ConnectionPool) *AlarmRepository {
	return &AlarmRepository{pool: pool}
}

const alarmColumns = `id, label, hour, minute, is_enabled, repeat_days,
	ringtone_uri, vibrate, snooze_minutes, password_hash, password_salt,
	created_at, updated_at`

// CreateAlarm stores a new alarm row.
func (r *AlarmRepository) CreateAlarm(ctx context.Context, alarm persistence.Alarm) error {
	if alarm.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO alarms (` + alarmColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		alarm.ID,
		nullString(alarm.Label),
		alarm.Hour,
		alarm.Minute,
		boolToInt(alarm.Enabled),
		alarm.RepeatMask,
		nullString(alarm.RingtoneURI),
		boolToInt(alarm.Vibrate),
		nullInt(alarm.SnoozeMinutes),
		alarm.PasswordHash,
		alarm.PasswordSalt,
		alarm.CreatedAt.UTC().Format(time.RFC3339),
		alarm.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetAlarm retrieves an alarm by id.
func (r *AlarmRepository) GetAlarm(ctx context.Context, id string) (persistence.Alarm, error) {
	query := `SELECT ` + alarmColumns + ` FROM alarms WHERE id = ?`
	return r.scanAlarm(r.pool.db.QueryRowContext(ctx, query, id))
}

// UpdateAlarm updates all mutable fields of an existing alarm row. The id and
// created_at are immutable.
func (r *AlarmRepository) UpdateAlarm(ctx context.Context, alarm persistence.Alarm) error {
	query := `
		UPDATE alarms SET
			label = ?, hour = ?, minute = ?, is_enabled = ?, repeat_days = ?,
			ringtone_uri = ?, vibrate = ?, snooze_minutes = ?,
			password_hash = ?, password_salt = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		nullString(alarm.Label),
		alarm.Hour,
		alarm.Minute,
		boolToInt(alarm.Enabled),
		alarm.RepeatMask,
		nullString(alarm.RingtoneURI),
		boolToInt(alarm.Vibrate),
		nullInt(alarm.SnoozeMinutes),
		alarm.PasswordHash,
		alarm.PasswordSalt,
		alarm.UpdatedAt.UTC().Format(time.RFC3339),
		alarm.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteAlarm removes an alarm and any schedule mapping it owns.
func (r *AlarmRepository) DeleteAlarm(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM alarms WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		if _, err := tx.Exec("DELETE FROM alarm_schedule_mapping WHERE alarm_id = ?", id); err != nil {
			return mapError(err)
		}
		return nil
	})
}

// ListAlarms returns all alarms ordered by updated_at descending, newest first.
func (r *AlarmRepository) ListAlarms(ctx context.Context) ([]persistence.Alarm, error) {
	query := `SELECT ` + alarmColumns + ` FROM alarms ORDER BY updated_at DESC, id`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	alarms := make([]persistence.Alarm, 0)
	for rows.Next() {
		alarm, err := r.scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, alarm)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return alarms, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AlarmRepository) scanAlarm(row rowScanner) (persistence.Alarm, error) {
	var alarm persistence.Alarm
	var label, ringtone sql.NullString
	var enabled, vibrate int
	var snooze sql.NullInt64
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&alarm.ID,
		&label,
		&alarm.Hour,
		&alarm.Minute,
		&enabled,
		&alarm.RepeatMask,
		&ringtone,
		&vibrate,
		&snooze,
		&alarm.PasswordHash,
		&alarm.PasswordSalt,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Alarm{}, mapError(err)
	}

	alarm.Enabled = enabled != 0
	alarm.Vibrate = vibrate != 0
	if label.Valid {
		alarm.Label = &label.String
	}
	if ringtone.Valid {
		alarm.RingtoneURI = &ringtone.String
	}
	if snooze.Valid {
		minutes := int(snooze.Int64)
		alarm.SnoozeMinutes = &minutes
	}

	if alarm.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Alarm{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if alarm.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Alarm{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return alarm, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
