package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carelink/hospital-platform/internal/api/router"
	"github.com/carelink/hospital-platform/internal/appointments"
	"github.com/carelink/hospital-platform/internal/attendance"
	appconfig "github.com/carelink/hospital-platform/internal/config"
	"github.com/carelink/hospital-platform/internal/notify"
	"github.com/carelink/hospital-platform/internal/observability/metrics"
	"github.com/carelink/hospital-platform/internal/patients"
	"github.com/carelink/hospital-platform/internal/reporting"
	"github.com/carelink/hospital-platform/internal/scheduling"
	"github.com/carelink/hospital-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() { _ = redisClient.Close() }()

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)
	attendanceMetrics := metrics.NewAttendanceMetrics(registry)

	// Scheduling
	scheduleRepo := scheduling.NewPostgresScheduleRepository(pool)
	apptRepo := appointments.NewPostgresRepository(pool)
	slotCache := scheduling.NewSlotCache(redisClient, cfg.SlotCacheTTL, logger)
	allocator := scheduling.NewAllocator(scheduleRepo, apptRepo, slotCache, bookingMetrics, logger)

	// Notifications
	publisher := notify.NewRedisPublisher(redisClient, logger)
	gateway := notify.NewGateway(redisClient, logger)

	// Booking
	patientRepo := patients.NewPostgresRepository(pool)
	bookingService := appointments.NewService(apptRepo, patientRepo, allocator, publisher, bookingMetrics, logger)

	// Attendance
	attendanceService := attendance.NewService(
		attendance.NewPostgresRepository(pool),
		attendance.NewPostgresConfigRepository(pool),
		attendance.NewPostgresShiftRepository(pool),
		publisher,
		attendanceMetrics,
		logger,
	)

	// Reporting runs over a database/sql handle shared with the pgx pool.
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()
	reportingStore := reporting.NewStore(sqlDB)

	r := router.New(&router.Config{
		Logger:              logger,
		SchedulingHandler:   scheduling.NewHandler(allocator, scheduleRepo, logger),
		AppointmentsHandler: appointments.NewHandler(bookingService, logger),
		AttendanceHandler:   attendance.NewHandler(attendanceService, logger),
		PatientsHandler:     patients.NewHandler(patientRepo, logger),
		ReportingHandler:    reporting.NewHandler(reportingStore, logger),
		NotifyGateway:       gateway,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
