package attendance

import (
	"time"

	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/internal/scheduling"
)

// Status classifies an attendance record.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
	StatusHalfDay Status = "HALF_DAY"
)

// Record is one staff member's attendance for one calendar day.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	Date        time.Time  `json:"date"`
	CheckInAt   time.Time  `json:"check_in_at"`
	CheckInLat  float64    `json:"check_in_lat"`
	CheckInLon  float64    `json:"check_in_lon"`
	CheckOutAt  *time.Time `json:"check_out_at,omitempty"`
	CheckOutLat *float64   `json:"check_out_lat,omitempty"`
	CheckOutLon *float64   `json:"check_out_lon,omitempty"`
	Status      Status     `json:"status"`
}

// GeofenceConfig is the workplace geofence and shift baseline. A single row
// holds it; code falls back to defaults when the row is absent.
type GeofenceConfig struct {
	CenterLat    float64
	CenterLon    float64
	RadiusMeters float64
	WorkStart    scheduling.TimeOfDay
	Grace        time.Duration
}

// DefaultGeofenceConfig is used until an administrator configures the fence.
// The zero fence rejects every check-in, so the radius must be explicit.
func DefaultGeofenceConfig() GeofenceConfig {
	return GeofenceConfig{
		RadiusMeters: 200,
		WorkStart:    9 * 60,
		Grace:        15 * time.Minute,
	}
}

// MarkRequest is the request body for check-in and check-out.
type MarkRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
