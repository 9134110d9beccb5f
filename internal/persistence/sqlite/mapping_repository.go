package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/alarm-clock/internal/persistence"
)

// MappingRepository implements persistence.MappingRepository using SQLite.
type MappingRepository struct {
	pool *ConnectionPool
}

// NewMappingRepository creates a new SQLite schedule mapping repository.
func NewMappingRepository(pool *ConnectionPool) *MappingRepository {
	return &MappingRepository{pool: pool}
}

// UpsertMapping inserts or replaces the mapping row for an alarm. The primary
// key on alarm_id makes the replace atomic, so at most one mapping can exist
// per alarm regardless of interleaved callers.
func (r *MappingRepository) UpsertMapping(ctx context.Context, mapping persistence.ScheduleMapping) error {
	if mapping.AlarmID == "" || mapping.ExternalID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT OR REPLACE INTO alarm_schedule_mapping (alarm_id, os_schedule_id, scheduled_at)
		VALUES (?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		mapping.AlarmID,
		mapping.ExternalID,
		mapping.ScheduledAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetMapping retrieves the mapping for an alarm id.
func (r *MappingRepository) GetMapping(ctx context.Context, alarmID string) (persistence.ScheduleMapping, error) {
	query := `
		SELECT alarm_id, os_schedule_id, scheduled_at
		FROM alarm_schedule_mapping
		WHERE alarm_id = ?
	`

	var mapping persistence.ScheduleMapping
	var scheduledAtStr string

	err := r.pool.db.QueryRowContext(ctx, query, alarmID).Scan(
		&mapping.AlarmID,
		&mapping.ExternalID,
		&scheduledAtStr,
	)
	if err != nil {
		return persistence.ScheduleMapping{}, mapError(err)
	}

	if mapping.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAtStr); err != nil {
		return persistence.ScheduleMapping{}, fmt.Errorf("failed to parse scheduled_at: %w", err)
	}

	return mapping, nil
}

// DeleteMapping removes the mapping for an alarm id. Deleting a mapping that
// does not exist is not an error; cancellation must be a safe no-op.
func (r *MappingRepository) DeleteMapping(ctx context.Context, alarmID string) error {
	_, err := r.pool.db.ExecContext(ctx, "DELETE FROM alarm_schedule_mapping WHERE alarm_id = ?", alarmID)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// ListMappings returns all mapping rows ordered by alarm id.
func (r *MappingRepository) ListMappings(ctx context.Context) ([]persistence.ScheduleMapping, error) {
	query := `
		SELECT alarm_id, os_schedule_id, scheduled_at
		FROM alarm_schedule_mapping
		ORDER BY alarm_id
	`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	mappings := make([]persistence.ScheduleMapping, 0)
	for rows.Next() {
		var mapping persistence.ScheduleMapping
		var scheduledAtStr string
		if err := rows.Scan(&mapping.AlarmID, &mapping.ExternalID, &scheduledAtStr); err != nil {
			return nil, mapError(err)
		}
		if mapping.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse scheduled_at: %w", err)
		}
		mappings = append(mappings, mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return mappings, nil
}
