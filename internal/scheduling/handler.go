package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/pkg/logging"
)

// Handler handles HTTP requests for doctor availability and slots
type Handler struct {
	allocator *Allocator
	schedules ScheduleRepository
	logger    *logging.Logger
}

// NewHandler creates a new scheduling handler
func NewHandler(allocator *Allocator, schedules ScheduleRepository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		allocator: allocator,
		schedules: schedules,
		logger:    logger,
	}
}

// Routes mounts the scheduling endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/doctors/{doctorID}/slots", h.AvailableSlots)
	r.Get("/doctors/{doctorID}/availability", h.GetAvailability)
	r.Put("/doctors/{doctorID}/availability", h.UpdateAvailability)
}

// SlotsResponse is the response for listing available slots
type SlotsResponse struct {
	DoctorID uuid.UUID   `json:"doctor_id"`
	Date     string      `json:"date"`
	Slots    []TimeOfDay `json:"slots"`
}

// AvailableSlots handles GET /api/doctors/{doctorID}/slots?date=YYYY-MM-DD
func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	date, err := ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid or missing date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.allocator.AvailableSlots(r.Context(), doctorID, date)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to compute slots", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to compute slots", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SlotsResponse{
		DoctorID: doctorID,
		Date:     date.Format(time.DateOnly),
		Slots:    slots,
	})
}

// GetAvailability handles GET /api/doctors/{doctorID}/availability
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	schedule, err := h.schedules.GetSchedule(r.Context(), doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			http.Error(w, "doctor not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load schedule", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to load schedule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// UpdateAvailability handles PUT /api/doctors/{doctorID}/availability
func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "doctorID"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}

	var schedule WeeklySchedule
	if err := json.NewDecoder(r.Body).Decode(&schedule); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	schedule.DoctorID = doctorID

	if err := h.schedules.UpdateSchedule(r.Context(), &schedule); err != nil {
		switch {
		case errors.Is(err, ErrDoctorNotFound):
			http.Error(w, "doctor not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidSlotDuration),
			errors.Is(err, ErrInvalidWindow),
			errors.Is(err, ErrDuplicateWindow):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to update schedule", "error", err, "doctor_id", doctorID)
			http.Error(w, "failed to update schedule", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("availability updated", "doctor_id", doctorID, "windows", len(schedule.Windows))
	writeJSON(w, http.StatusOK, &schedule)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
