package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores patient profiles in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// GetByUserID fetches the profile owned by a user.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	query := `
		SELECT id, user_id, full_name, phone, date_of_birth, created_at
		FROM patients
		WHERE user_id = $1
	`
	row := r.pool.QueryRow(ctx, query, userID)
	var p Patient
	if err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.DateOfBirth, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("patients: select profile: %w", err)
	}
	return &p, nil
}

// Create persists a new profile. The unique constraint on user_id guards
// against duplicates.
func (r *PostgresRepository) Create(ctx context.Context, p *Patient) (*Patient, error) {
	copied := *p
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, user_id, full_name, phone, date_of_birth)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, copied.ID, copied.UserID, copied.FullName, copied.Phone, copied.DateOfBirth).Scan(&copied.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("patients: insert profile: %w", err)
	}
	return &copied, nil
}
