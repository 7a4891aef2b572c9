package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/internal/identity"
	"github.com/carelink/hospital-platform/internal/scheduling"
	"github.com/carelink/hospital-platform/pkg/logging"
)

// Handler exposes the booking HTTP surface.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("appointments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the appointment endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/appointments", h.Book)
	r.Get("/appointments/{appointmentID}", h.Get)
	r.Patch("/appointments/{appointmentID}/status", h.UpdateStatus)
}

// Book handles POST /api/appointments.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.PatientUserID = userID

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (h *Handler) writeBookError(w http.ResponseWriter, err error) {
	var invalid *InvalidTransitionError
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scheduling.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor not found")
	case errors.Is(err, ErrPatientProfileMissing):
		writeError(w, http.StatusUnprocessableEntity, "no patient profile for this user")
	case errors.Is(err, ErrSlotOutsideSchedule):
		writeError(w, http.StatusUnprocessableEntity, "requested time is outside the doctor's schedule")
	case errors.Is(err, ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot already booked")
	case errors.As(err, &invalid):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("booking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Get handles GET /api/appointments/{appointmentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	appt, err := h.service.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		h.logger.Error("appointment lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// statusRequest is the body for PATCH /api/appointments/{id}/status.
type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/appointments/{appointmentID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	next, err := ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), id, next)
	if err != nil {
		var invalid *InvalidTransitionError
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			writeError(w, http.StatusNotFound, "appointment not found")
		case errors.As(err, &invalid):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("status update failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
