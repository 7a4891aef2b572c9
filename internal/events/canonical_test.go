package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	evt := AppointmentBookedV1{
		EventID:       uuid.NewString(),
		AppointmentID: uuid.NewString(),
		BookingNumber: "OPD-20260831-0001",
		QueuePosition: 1,
		BookedAt:      time.Now().UTC(),
	}

	env, err := NewEnvelope("doctor:d1", evt)
	require.NoError(t, err)
	assert.Equal(t, "appointment.booked.v1", env.EventType)
	assert.Equal(t, "doctor:d1", env.Room)
	assert.NotEqual(t, uuid.Nil, env.EventID)
	assert.False(t, env.Timestamp.IsZero())

	var decoded AppointmentBookedV1
	require.NoError(t, json.Unmarshal(env.Payload, &decoded))
	assert.Equal(t, evt.BookingNumber, decoded.BookingNumber)
	assert.Equal(t, evt.QueuePosition, decoded.QueuePosition)
}

func TestNewEnvelopeValidation(t *testing.T) {
	_, err := NewEnvelope("", QueueUpdatedV1{})
	assert.ErrorIs(t, err, errMissingRoom)

	_, err = NewEnvelope("doctor:d1", nil)
	assert.ErrorIs(t, err, errNilEvent)
}

func TestEnvelopeJSONShape(t *testing.T) {
	env, err := NewEnvelope("attendance:2026-08-31", AttendanceMarkedV1{
		EventID:  uuid.NewString(),
		UserID:   "staff-1",
		Date:     "2026-08-31",
		Status:   "PRESENT",
		MarkedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	body, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "attendance.marked.v1", decoded["event_type"])
	assert.Equal(t, "attendance:2026-08-31", decoded["room"])
	assert.Contains(t, decoded, "payload")
}
