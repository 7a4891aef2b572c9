package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CanonicalEvent represents a versioned domain event.
type CanonicalEvent interface {
	EventType() string
}

// Envelope captures transport metadata for canonical events.
type Envelope struct {
	EventID   uuid.UUID       `json:"event_id"`
	EventType string          `json:"event_type"`
	Room      string          `json:"room"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

var (
	errMissingRoom = errors.New("events: room is required")
	errNilEvent    = errors.New("events: canonical event required")
)

// NewEnvelope wraps a canonical event for publication to a room.
func NewEnvelope(room string, evt CanonicalEvent) (Envelope, error) {
	if room == "" {
		return Envelope{}, errMissingRoom
	}
	if evt == nil {
		return Envelope{}, errNilEvent
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal payload: %w", err)
	}
	return Envelope{
		EventID:   uuid.New(),
		EventType: evt.EventType(),
		Room:      room,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}, nil
}
