package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a registered patient profile. Booking requires one to exist;
// profiles are never auto-provisioned with placeholder data.
type Patient struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
