package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/hospital-platform/internal/scheduling"
)

const pgUniqueViolation = "23505"

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores attendance records in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("attendance: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert persists a check-in. The unique index on (user_id, att_date) is the
// authoritative duplicate guard.
func (r *PostgresRepository) Insert(ctx context.Context, rec *Record) (*Record, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO attendance_records (id, user_id, att_date, check_in_at, check_in_lat, check_in_lon, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.UserID, rec.Date, rec.CheckInAt, rec.CheckInLat, rec.CheckInLon, rec.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrAlreadyMarked
		}
		return nil, fmt.Errorf("attendance: insert: %w", err)
	}
	copied := *rec
	return &copied, nil
}

// SetCheckOut stamps the check-out on the day's record. The guarded UPDATE
// only matches an open record; a miss is disambiguated by re-reading.
func (r *PostgresRepository) SetCheckOut(ctx context.Context, userID string, date time.Time, at time.Time, lat, lon float64) (*Record, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE attendance_records
		SET check_out_at = $3, check_out_lat = $4, check_out_lon = $5
		WHERE user_id = $1 AND att_date = $2 AND check_out_at IS NULL
	`, userID, date, at, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("attendance: set check-out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByUserAndDate(ctx, userID, date); err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				return nil, ErrNoCheckInFound
			}
			return nil, err
		}
		return nil, ErrAlreadyCheckedOut
	}
	return r.GetByUserAndDate(ctx, userID, date)
}

// GetByUserAndDate fetches one user's record for one day.
func (r *PostgresRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error) {
	var rec Record
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, att_date, check_in_at, check_in_lat, check_in_lon, check_out_at, check_out_lat, check_out_lon, status
		FROM attendance_records
		WHERE user_id = $1 AND att_date = $2
	`, userID, date).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Date,
		&rec.CheckInAt,
		&rec.CheckInLat,
		&rec.CheckInLon,
		&rec.CheckOutAt,
		&rec.CheckOutLat,
		&rec.CheckOutLon,
		&rec.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("attendance: select record: %w", err)
	}
	return &rec, nil
}

// PostgresConfigRepository reads the single geofence configuration row.
type PostgresConfigRepository struct {
	db db
}

// NewPostgresConfigRepository initializes the config repo.
func NewPostgresConfigRepository(pool *pgxpool.Pool) *PostgresConfigRepository {
	if pool == nil {
		panic("attendance: pgx pool required")
	}
	return &PostgresConfigRepository{db: pool}
}

// Get loads the geofence row, falling back to defaults when unset.
func (r *PostgresConfigRepository) Get(ctx context.Context) (GeofenceConfig, error) {
	var (
		cfg          GeofenceConfig
		startMinutes int
		graceMinutes int
	)
	err := r.db.QueryRow(ctx, `
		SELECT center_lat, center_lon, radius_meters, work_start_minutes, grace_minutes
		FROM geofence_config
		WHERE id = 1
	`).Scan(&cfg.CenterLat, &cfg.CenterLon, &cfg.RadiusMeters, &startMinutes, &graceMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DefaultGeofenceConfig(), nil
		}
		return GeofenceConfig{}, fmt.Errorf("attendance: select geofence config: %w", err)
	}
	cfg.WorkStart = scheduling.TimeOfDay(startMinutes)
	cfg.Grace = time.Duration(graceMinutes) * time.Minute
	return cfg, nil
}

// PostgresShiftRepository resolves shift assignments.
type PostgresShiftRepository struct {
	db db
}

// NewPostgresShiftRepository initializes the shift repo.
func NewPostgresShiftRepository(pool *pgxpool.Pool) *PostgresShiftRepository {
	if pool == nil {
		panic("attendance: pgx pool required")
	}
	return &PostgresShiftRepository{db: pool}
}

// ShiftStart looks up the user's assigned start for the date.
func (r *PostgresShiftRepository) ShiftStart(ctx context.Context, userID string, date time.Time) (scheduling.TimeOfDay, bool, error) {
	var minutes int
	err := r.db.QueryRow(ctx,
		`SELECT start_minutes FROM shift_assignments WHERE user_id = $1 AND shift_date = $2`,
		userID, date,
	).Scan(&minutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("attendance: select shift: %w", err)
	}
	return scheduling.TimeOfDay(minutes), true, nil
}
