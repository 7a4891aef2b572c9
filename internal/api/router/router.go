package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carelink/hospital-platform/internal/appointments"
	"github.com/carelink/hospital-platform/internal/attendance"
	httpmiddleware "github.com/carelink/hospital-platform/internal/http/middleware"
	"github.com/carelink/hospital-platform/internal/identity"
	"github.com/carelink/hospital-platform/internal/notify"
	"github.com/carelink/hospital-platform/internal/patients"
	"github.com/carelink/hospital-platform/internal/reporting"
	"github.com/carelink/hospital-platform/internal/scheduling"
	"github.com/carelink/hospital-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	SchedulingHandler   *scheduling.Handler
	AppointmentsHandler *appointments.Handler
	AttendanceHandler   *attendance.Handler
	PatientsHandler     *patients.Handler
	ReportingHandler    *reporting.Handler
	NotifyGateway       *notify.Gateway
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(identity.Middleware)

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.NotifyGateway != nil {
			public.Get("/ws/notifications", cfg.NotifyGateway.HandleWebSocket)
		}
	})

	// Application API
	r.Route("/api", func(api chi.Router) {
		api.Use(httpmiddleware.RateLimit(20, 40))

		if cfg.SchedulingHandler != nil {
			cfg.SchedulingHandler.Routes(api)
		}
		if cfg.AppointmentsHandler != nil {
			cfg.AppointmentsHandler.Routes(api)
		}
		if cfg.AttendanceHandler != nil {
			cfg.AttendanceHandler.Routes(api)
		}
		if cfg.PatientsHandler != nil {
			cfg.PatientsHandler.Routes(api)
		}
		if cfg.ReportingHandler != nil {
			cfg.ReportingHandler.Routes(api)
		}
	})

	return r
}
