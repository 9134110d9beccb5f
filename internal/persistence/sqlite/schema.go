package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaVersion is the version written to schema_version after a successful
// migration run.
const schemaVersion = 1

// initialSchema mirrors the alarm store layout: one table of alarm rows keyed
// by id with enabled/updated indexes, and one table of schedule mappings keyed
// by alarm id.
const initialSchema = `
CREATE TABLE IF NOT EXISTS alarms (
  id TEXT PRIMARY KEY,
  label TEXT,
  hour INTEGER NOT NULL CHECK(hour >= 0 AND hour <= 23),
  minute INTEGER NOT NULL CHECK(minute >= 0 AND minute <= 59),
  is_enabled INTEGER NOT NULL DEFAULT 1 CHECK(is_enabled IN (0, 1)),
  repeat_days INTEGER NOT NULL DEFAULT 0 CHECK(repeat_days >= 0 AND repeat_days <= 127),
  ringtone_uri TEXT,
  vibrate INTEGER NOT NULL DEFAULT 1 CHECK(vibrate IN (0, 1)),
  snooze_minutes INTEGER CHECK(snooze_minutes IS NULL OR snooze_minutes > 0),
  password_hash TEXT NOT NULL CHECK(length(password_hash) > 0),
  password_salt TEXT NOT NULL CHECK(length(password_salt) > 0),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alarms_enabled ON alarms(is_enabled);
CREATE INDEX IF NOT EXISTS idx_alarms_updated ON alarms(updated_at);

CREATE TABLE IF NOT EXISTS alarm_schedule_mapping (
  alarm_id TEXT PRIMARY KEY,
  os_schedule_id TEXT NOT NULL,
  scheduled_at TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
`

// Migrate brings the database up to the current schema version. It is safe to
// call on every startup; an already-migrated database is left untouched.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	return cp.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(initialSchema); err != nil {
			return fmt.Errorf("failed to apply initial schema: %w", err)
		}

		var current sql.NullInt64
		if err := tx.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&current); err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}

		if current.Valid && current.Int64 >= schemaVersion {
			return nil
		}

		if _, err := tx.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
		return nil
	})
}
