package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	slotQueryLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"outcome"}),
		slotQueryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hospital",
			Subsystem: "scheduling",
			Name:      "slot_query_latency_seconds",
			Help:      "Latency of available-slot computations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cache"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.slotQueryLatency)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSlotQuery(cacheResult string, seconds float64) {
	if m == nil {
		return
	}
	m.slotQueryLatency.WithLabelValues(cacheResult).Observe(seconds)
}

// AttendanceMetrics exposes counters for attendance marking.
type AttendanceMetrics struct {
	checkInsTotal        *prometheus.CounterVec
	geofenceRejectsTotal prometheus.Counter
}

func NewAttendanceMetrics(reg prometheus.Registerer) *AttendanceMetrics {
	m := &AttendanceMetrics{
		checkInsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "attendance",
			Name:      "check_ins_total",
			Help:      "Total successful check-ins",
		}, []string{"status"}),
		geofenceRejectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "attendance",
			Name:      "geofence_rejects_total",
			Help:      "Check-in/out attempts rejected outside the geofence",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.checkInsTotal, m.geofenceRejectsTotal)
	return m
}

func (m *AttendanceMetrics) ObserveCheckIn(status string) {
	if m == nil {
		return
	}
	m.checkInsTotal.WithLabelValues(status).Inc()
}

func (m *AttendanceMetrics) ObserveGeofenceReject() {
	if m == nil {
		return
	}
	m.geofenceRejectsTotal.Inc()
}
