package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carelink/hospital-platform/internal/events"
	"github.com/carelink/hospital-platform/internal/notify"
	"github.com/carelink/hospital-platform/internal/observability/metrics"
	"github.com/carelink/hospital-platform/internal/scheduling"
	"github.com/carelink/hospital-platform/pkg/logging"
)

var attendanceTracer = otel.Tracer("hospital.internal.attendance")

// Service marks staff attendance inside the workplace geofence.
type Service struct {
	repo          Repository
	config        ConfigRepository
	shifts        ShiftRepository
	publisher     notify.Publisher
	metrics       *metrics.AttendanceMetrics
	logger        *logging.Logger
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewService constructs an attendance service. shifts, publisher and m may be
// nil.
func NewService(repo Repository, config ConfigRepository, shifts ShiftRepository, publisher notify.Publisher, m *metrics.AttendanceMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("attendance: repository required")
	}
	if config == nil {
		panic("attendance: config repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:          repo,
		config:        config,
		shifts:        shifts,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
		notifyTimeout: 5 * time.Second,
		now:           time.Now,
	}
}

// CheckIn marks the user present for today if the coordinates fall inside the
// geofence. Lateness is classified once, at check-in, against the shift start
// plus the grace period.
func (s *Service) CheckIn(ctx context.Context, userID string, lat, lon float64) (*Record, error) {
	ctx, span := attendanceTracer.Start(ctx, "attendance.check_in")
	defer span.End()
	span.SetAttributes(attribute.String("hospital.user_id", userID))

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.insideFence(cfg, lat, lon); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	day := scheduling.DateOf(now)

	start := cfg.WorkStart
	if s.shifts != nil {
		if assigned, ok, err := s.shifts.ShiftStart(ctx, userID, day); err != nil {
			return nil, err
		} else if ok {
			start = assigned
		}
	}

	status := StatusPresent
	deadline := day.Add(time.Duration(start)*time.Minute + cfg.Grace)
	if now.After(deadline) {
		status = StatusLate
	}

	rec, err := s.repo.Insert(ctx, &Record{
		ID:         uuid.New(),
		UserID:     userID,
		Date:       day,
		CheckInAt:  now,
		CheckInLat: lat,
		CheckInLon: lon,
		Status:     status,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveCheckIn(string(rec.Status))
	s.logger.Info("attendance marked", "user_id", userID, "status", rec.Status)
	s.emitMarked(rec)
	return rec, nil
}

// CheckOut closes today's attendance record. The geofence applies to
// check-out as well.
func (s *Service) CheckOut(ctx context.Context, userID string, lat, lon float64) (*Record, error) {
	ctx, span := attendanceTracer.Start(ctx, "attendance.check_out")
	defer span.End()
	span.SetAttributes(attribute.String("hospital.user_id", userID))

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.insideFence(cfg, lat, lon); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec, err := s.repo.SetCheckOut(ctx, userID, scheduling.DateOf(now), now, lat, lon)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info("attendance check-out", "user_id", userID)
	return rec, nil
}

// Today returns the caller's attendance record for the current day.
func (s *Service) Today(ctx context.Context, userID string) (*Record, error) {
	return s.repo.GetByUserAndDate(ctx, userID, scheduling.DateOf(s.now().UTC()))
}

// insideFence checks the coordinates against the configured fence. A point
// exactly on the boundary is inside.
func (s *Service) insideFence(cfg GeofenceConfig, lat, lon float64) error {
	distance := HaversineMeters(cfg.CenterLat, cfg.CenterLon, lat, lon)
	if distance > cfg.RadiusMeters {
		s.metrics.ObserveGeofenceReject()
		return &OutsideGeofenceError{DistanceMeters: distance, RadiusMeters: cfg.RadiusMeters}
	}
	return nil
}

// emitMarked publishes the attendance event without blocking the response.
func (s *Service) emitMarked(rec *Record) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		evt := events.AttendanceMarkedV1{
			EventID:  uuid.NewString(),
			UserID:   rec.UserID,
			Date:     rec.Date.Format(time.DateOnly),
			Status:   string(rec.Status),
			MarkedAt: rec.CheckInAt,
		}
		room := fmt.Sprintf("attendance:%s", rec.Date.Format(time.DateOnly))
		if err := s.publisher.Publish(ctx, room, evt); err != nil {
			s.logger.Warn("attendance event publish failed", "error", err, "user_id", rec.UserID)
		}
	}()
}
