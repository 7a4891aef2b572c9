package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/hospital-platform/internal/scheduling"
)

const pgUniqueViolation = "23505"

// db is the pgx surface the repository needs; pgxpool.Pool and pgxmock both
// satisfy it.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists the appointment. The queue position is computed inside the
// insert statement so it reads the same snapshot the insert writes against,
// and the partial unique index on (doctor, date, time) is the authoritative
// double-booking guard.
func (r *PostgresRepository) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	query := `
		INSERT INTO appointments (id, booking_number, patient_id, doctor_id, visit_date, visit_minutes, symptoms, status, queue_position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			1 + (SELECT COUNT(*) FROM appointments WHERE doctor_id = $4 AND visit_date = $5 AND status = 'SCHEDULED'))
		RETURNING queue_position, created_at, updated_at
	`
	copied := *appt
	err := r.db.QueryRow(ctx, query,
		appt.ID,
		appt.BookingNumber,
		appt.PatientID,
		appt.DoctorID,
		appt.VisitDate,
		appt.VisitTime,
		appt.Symptoms,
		appt.Status,
	).Scan(&copied.QueuePosition, &copied.CreatedAt, &copied.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_appointments_active_slot") {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}
	return &copied, nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT id, booking_number, patient_id, doctor_id, visit_date, visit_minutes, symptoms, status, queue_position, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appt Appointment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.BookingNumber,
		&appt.PatientID,
		&appt.DoctorID,
		&appt.VisitDate,
		&appt.VisitTime,
		&appt.Symptoms,
		&appt.Status,
		&appt.QueuePosition,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("appointments: select by id: %w", err)
	}
	return &appt, nil
}

// CompareAndSetStatus transitions the appointment only if the stored status
// still matches the expected one.
func (r *PostgresRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStaleStatus
	}
	return r.GetByID(ctx, id)
}

// CountScheduled counts SCHEDULED appointments for a doctor on a date.
func (r *PostgresRepository) CountScheduled(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND visit_date = $2 AND status = 'SCHEDULED'`,
		doctorID, date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("appointments: count scheduled: %w", err)
	}
	return count, nil
}

// BookedTimes lists occupied (non-cancelled) times of day for a doctor/date.
func (r *PostgresRepository) BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]scheduling.TimeOfDay, error) {
	rows, err := r.db.Query(ctx, `
		SELECT visit_minutes
		FROM appointments
		WHERE doctor_id = $1 AND visit_date = $2 AND status <> 'CANCELLED'
		ORDER BY visit_minutes
	`, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: select booked times: %w", err)
	}
	defer rows.Close()

	var times []scheduling.TimeOfDay
	for rows.Next() {
		var t scheduling.TimeOfDay
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("appointments: scan booked time: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate booked times: %w", err)
	}
	return times, nil
}

// NextSequence atomically advances the per-day booking number counter.
func (r *PostgresRepository) NextSequence(ctx context.Context, date time.Time) (int, error) {
	var seq int
	err := r.db.QueryRow(ctx, `
		INSERT INTO booking_counters (day, seq)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = booking_counters.seq + 1
		RETURNING seq
	`, date).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("appointments: next booking sequence: %w", err)
	}
	return seq, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return pgErr.ConstraintName == "" || pgErr.ConstraintName == constraint
}
