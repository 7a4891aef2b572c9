package reporting

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/pkg/logging"
)

// Handler exposes the reporting endpoints.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a reporting handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if store == nil {
		panic("reporting: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Routes mounts the reporting endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/reports/daily", h.Daily)
	r.Get("/reports/doctor-load", h.DoctorLoad)
	r.Get("/reports/doctors/{doctorID}/daily", h.DoctorDaily)
}

// Daily handles GET /api/reports/daily?date=YYYY-MM-DD. The date defaults to
// today.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	summary, err := h.store.DaySummary(r.Context(), date)
	if err != nil {
		h.logger.Error("daily report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DoctorLoad handles GET /api/reports/doctor-load?date=YYYY-MM-DD.
func (h *Handler) DoctorLoad(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	loads, err := h.store.DoctorLoads(r.Context(), date)
	if err != nil {
		h.logger.Error("doctor load report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":    date.Format(time.DateOnly),
		"doctors": loads,
	})
}

// DoctorDaily handles GET /api/reports/doctors/{doctorID}/daily?date=YYYY-MM-DD.
func (h *Handler) DoctorDaily(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid doctor id")
		return
	}
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	daily, err := h.store.DoctorDaily(r.Context(), doctorID.String(), date)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			writeError(w, http.StatusNotFound, "doctor not found")
			return
		}
		h.logger.Error("doctor daily report failed", "error", err, "doctor_id", doctorID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

func (h *Handler) parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date.UTC(), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
