package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresScheduleRepository stores doctor availability in the relational
// database.
type PostgresScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresScheduleRepository initializes a repo backed by pgxpool.
func NewPostgresScheduleRepository(pool *pgxpool.Pool) *PostgresScheduleRepository {
	if pool == nil {
		panic("scheduling: pgx pool required")
	}
	return &PostgresScheduleRepository{pool: pool}
}

// GetSchedule loads the slot duration and weekday windows for a doctor.
func (r *PostgresScheduleRepository) GetSchedule(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error) {
	schedule := &WeeklySchedule{DoctorID: doctorID}

	row := r.pool.QueryRow(ctx,
		`SELECT slot_duration_minutes FROM doctors WHERE id = $1`, doctorID)
	if err := row.Scan(&schedule.SlotDurationMinutes); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("scheduling: select doctor: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_minutes, end_minutes
		FROM doctor_availability
		WHERE doctor_id = $1
		ORDER BY weekday
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("scheduling: select windows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var window AvailabilityWindow
		if err := rows.Scan(&window.Weekday, &window.Start, &window.End); err != nil {
			return nil, fmt.Errorf("scheduling: scan window: %w", err)
		}
		schedule.Windows = append(schedule.Windows, window)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scheduling: iterate windows: %w", err)
	}
	return schedule, nil
}

// UpdateSchedule replaces a doctor's windows and slot duration in one
// transaction.
func (r *PostgresScheduleRepository) UpdateSchedule(ctx context.Context, schedule *WeeklySchedule) error {
	if err := schedule.Validate(); err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scheduling: begin update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE doctors SET slot_duration_minutes = $2 WHERE id = $1`,
		schedule.DoctorID, schedule.SlotDurationMinutes)
	if err != nil {
		return fmt.Errorf("scheduling: update slot duration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM doctor_availability WHERE doctor_id = $1`, schedule.DoctorID); err != nil {
		return fmt.Errorf("scheduling: clear windows: %w", err)
	}
	for _, window := range schedule.Windows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctor_availability (doctor_id, weekday, start_minutes, end_minutes)
			VALUES ($1, $2, $3, $4)
		`, schedule.DoctorID, window.Weekday, window.Start, window.End); err != nil {
			return fmt.Errorf("scheduling: insert window: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("scheduling: commit update: %w", err)
	}
	return nil
}
