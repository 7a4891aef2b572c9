package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carelink/hospital-platform/internal/observability/metrics"
	"github.com/carelink/hospital-platform/pkg/logging"
)

var schedulingTracer = otel.Tracer("hospital.internal.scheduling")

// Allocator computes the bookable slots for a doctor on a date by subtracting
// booked times from the doctor's configured availability window.
type Allocator struct {
	schedules ScheduleRepository
	booked    BookedSlotSource
	cache     *SlotCache
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewAllocator constructs a slot allocator. cache and m may be nil.
func NewAllocator(schedules ScheduleRepository, booked BookedSlotSource, cache *SlotCache, m *metrics.BookingMetrics, logger *logging.Logger) *Allocator {
	if schedules == nil {
		panic("scheduling: schedule repository required")
	}
	if booked == nil {
		panic("scheduling: booked slot source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Allocator{
		schedules: schedules,
		booked:    booked,
		cache:     cache,
		metrics:   m,
		logger:    logger,
	}
}

// AvailableSlots returns the free slot start times for a doctor on a date,
// ascending. A weekday the doctor does not work yields an empty slice, not an
// error.
func (a *Allocator) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeOfDay, error) {
	ctx, span := schedulingTracer.Start(ctx, "scheduling.available_slots")
	defer span.End()
	span.SetAttributes(
		attribute.String("hospital.doctor_id", doctorID.String()),
		attribute.String("hospital.date", date.Format(time.DateOnly)),
	)

	started := time.Now()
	date = DateOf(date)

	if a.cache != nil {
		if slots, ok := a.cache.Get(ctx, doctorID, date); ok {
			a.metrics.ObserveSlotQuery("hit", time.Since(started).Seconds())
			return slots, nil
		}
	}

	slots, err := a.computeSlots(ctx, doctorID, date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, doctorID, date, slots)
	}
	a.metrics.ObserveSlotQuery("miss", time.Since(started).Seconds())
	return slots, nil
}

func (a *Allocator) computeSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeOfDay, error) {
	schedule, err := a.schedules.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	window, works := schedule.WindowFor(date.Weekday())
	if !works || schedule.SlotDurationMinutes <= 0 {
		return []TimeOfDay{}, nil
	}

	bookedTimes, err := a.booked.BookedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	occupied := make(map[TimeOfDay]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		occupied[t] = true
	}

	duration := schedule.SlotDurationMinutes
	slots := make([]TimeOfDay, 0)
	// A slot is a candidate only if it fits entirely inside the window.
	for start := window.Start; start.Add(duration) <= window.End; start = start.Add(duration) {
		if !occupied[start] {
			slots = append(slots, start)
		}
	}
	return slots, nil
}

// InvalidateDay drops any cached slot list for a doctor/date, called after a
// booking lands.
func (a *Allocator) InvalidateDay(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, doctorID, DateOf(date)); err != nil {
		a.logger.Warn("slot cache invalidation failed", "error", err, "doctor_id", doctorID)
	}
}
