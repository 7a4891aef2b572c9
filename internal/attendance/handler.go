package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carelink/hospital-platform/internal/identity"
	"github.com/carelink/hospital-platform/pkg/logging"
)

// Handler exposes the attendance HTTP surface.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("attendance: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the attendance endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/attendance/check-in", h.CheckIn)
	r.Post("/attendance/check-out", h.CheckOut)
	r.Get("/attendance/today", h.Today)
}

// CheckIn handles POST /api/attendance/check-in.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, http.StatusCreated, h.service.CheckIn)
}

// CheckOut handles POST /api/attendance/check-out.
func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.mark(w, r, http.StatusOK, h.service.CheckOut)
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request, okStatus int, op func(context.Context, string, float64, float64) (*Record, error)) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return
	}

	rec, err := op(r.Context(), userID, req.Latitude, req.Longitude)
	if err != nil {
		h.writeMarkError(w, err)
		return
	}
	writeJSON(w, okStatus, rec)
}

func (h *Handler) writeMarkError(w http.ResponseWriter, err error) {
	var outside *OutsideGeofenceError
	switch {
	case errors.As(err, &outside):
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":           "outside geofence",
			"distance_meters": outside.DistanceMeters,
			"radius_meters":   outside.RadiusMeters,
		})
	case errors.Is(err, ErrAlreadyMarked):
		writeError(w, http.StatusConflict, "attendance already marked for today")
	case errors.Is(err, ErrAlreadyCheckedOut):
		writeError(w, http.StatusConflict, "already checked out")
	case errors.Is(err, ErrNoCheckInFound):
		writeError(w, http.StatusNotFound, "no check-in found for today")
	default:
		h.logger.Error("attendance marking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Today handles GET /api/attendance/today.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}
	rec, err := h.service.Today(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "no attendance record for today")
			return
		}
		h.logger.Error("attendance lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
