package reporting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrDoctorNotFound is returned when a per-doctor report references an
// unknown doctor.
var ErrDoctorNotFound = errors.New("reporting: doctor not found")

// DaySummary aggregates one day of hospital activity for the admin dashboard.
type DaySummary struct {
	Date              string `json:"date"`
	TotalAppointments int64  `json:"total_appointments"`
	Completed         int64  `json:"completed"`
	Cancelled         int64  `json:"cancelled"`
	NoShows           int64  `json:"no_shows"`
	Scheduled         int64  `json:"scheduled"`
	StaffPresent      int64  `json:"staff_present"`
	StaffLate         int64  `json:"staff_late"`
}

// DoctorLoad is one doctor's booking volume for a day.
type DoctorLoad struct {
	DoctorID     string `json:"doctor_id"`
	DoctorName   string `json:"doctor_name"`
	Appointments int64  `json:"appointments"`
}

// DoctorDaily is one doctor's appointment outcomes for a day.
type DoctorDaily struct {
	DoctorID   string `json:"doctor_id"`
	DoctorName string `json:"doctor_name"`
	Date       string `json:"date"`
	Total      int64  `json:"total_appointments"`
	Completed  int64  `json:"completed"`
	Cancelled  int64  `json:"cancelled"`
	NoShows    int64  `json:"no_shows"`
	Scheduled  int64  `json:"scheduled"`
}

// Store runs read-only aggregate queries over the operational tables. It uses
// the database/sql handle opened from the pgx pool so reporting load stays on
// the standard pooled connections.
type Store struct {
	db *sql.DB
}

// NewStore creates a reporting store.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("reporting: sql db required")
	}
	return &Store{db: db}
}

// DaySummary aggregates appointment and attendance counts for one date.
func (s *Store) DaySummary(ctx context.Context, date time.Time) (*DaySummary, error) {
	summary := &DaySummary{Date: date.Format(time.DateOnly)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'COMPLETED'),
		       COUNT(*) FILTER (WHERE status = 'CANCELLED'),
		       COUNT(*) FILTER (WHERE status = 'NO_SHOW'),
		       COUNT(*) FILTER (WHERE status = 'SCHEDULED')
		FROM appointments
		WHERE visit_date = $1
	`, date).Scan(
		&summary.TotalAppointments,
		&summary.Completed,
		&summary.Cancelled,
		&summary.NoShows,
		&summary.Scheduled,
	)
	if err != nil {
		return nil, fmt.Errorf("reporting: appointment counts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'PRESENT'),
		       COUNT(*) FILTER (WHERE status = 'LATE')
		FROM attendance_records
		WHERE att_date = $1
	`, date).Scan(&summary.StaffPresent, &summary.StaffLate)
	if err != nil {
		return nil, fmt.Errorf("reporting: attendance counts: %w", err)
	}

	return summary, nil
}

// DoctorDaily aggregates one doctor's appointment outcomes for a date.
func (s *Store) DoctorDaily(ctx context.Context, doctorID string, date time.Time) (*DoctorDaily, error) {
	daily := &DoctorDaily{Date: date.Format(time.DateOnly)}

	err := s.db.QueryRowContext(ctx, `
		SELECT d.id, d.full_name,
		       COUNT(a.id),
		       COUNT(a.id) FILTER (WHERE a.status = 'COMPLETED'),
		       COUNT(a.id) FILTER (WHERE a.status = 'CANCELLED'),
		       COUNT(a.id) FILTER (WHERE a.status = 'NO_SHOW'),
		       COUNT(a.id) FILTER (WHERE a.status = 'SCHEDULED')
		FROM doctors d
		LEFT JOIN appointments a ON a.doctor_id = d.id AND a.visit_date = $2
		WHERE d.id = $1
		GROUP BY d.id, d.full_name
	`, doctorID, date).Scan(
		&daily.DoctorID,
		&daily.DoctorName,
		&daily.Total,
		&daily.Completed,
		&daily.Cancelled,
		&daily.NoShows,
		&daily.Scheduled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reporting: doctor daily: %w", err)
	}

	return daily, nil
}

// DoctorLoads lists per-doctor booking volume for a date, busiest first.
func (s *Store) DoctorLoads(ctx context.Context, date time.Time) ([]DoctorLoad, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.full_name, COUNT(a.id)
		FROM doctors d
		LEFT JOIN appointments a ON a.doctor_id = d.id AND a.visit_date = $1 AND a.status <> 'CANCELLED'
		GROUP BY d.id, d.full_name
		ORDER BY COUNT(a.id) DESC, d.full_name
	`, date)
	if err != nil {
		return nil, fmt.Errorf("reporting: doctor loads: %w", err)
	}
	defer rows.Close()

	var loads []DoctorLoad
	for rows.Next() {
		var l DoctorLoad
		if err := rows.Scan(&l.DoctorID, &l.DoctorName, &l.Appointments); err != nil {
			return nil, fmt.Errorf("reporting: scan doctor load: %w", err)
		}
		loads = append(loads, l)
	}
	if loads == nil {
		loads = []DoctorLoad{}
	}
	return loads, rows.Err()
}
