package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/carelink/hospital-platform/internal/events"
	"github.com/carelink/hospital-platform/pkg/logging"
)

// channelPrefix namespaces notification rooms inside Redis pub/sub.
const channelPrefix = "notify:"

// Publisher pushes canonical events to a named room. Delivery is best-effort;
// no acknowledgement is awaited.
type Publisher interface {
	Publish(ctx context.Context, room string, evt events.CanonicalEvent) error
}

// RedisPublisher fans events out over Redis pub/sub so any gateway instance
// can forward them to its connected clients.
type RedisPublisher struct {
	redis  *redis.Client
	logger *logging.Logger
}

// NewRedisPublisher creates a pub/sub backed publisher.
func NewRedisPublisher(client *redis.Client, logger *logging.Logger) *RedisPublisher {
	if client == nil {
		panic("notify: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisPublisher{redis: client, logger: logger}
}

// Publish wraps the event in an envelope and publishes it to the room channel.
func (p *RedisPublisher) Publish(ctx context.Context, room string, evt events.CanonicalEvent) error {
	env, err := events.NewEnvelope(room, evt)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("notify: marshal envelope: %w", err)
	}
	if err := p.redis.Publish(ctx, channelPrefix+room, body).Err(); err != nil {
		return fmt.Errorf("notify: publish to %s: %w", room, err)
	}
	p.logger.Debug("event published", "room", room, "event_type", env.EventType)
	return nil
}

// MemoryPublisher records published events, for tests and single-process runs.
type MemoryPublisher struct {
	mu     sync.Mutex
	events map[string][]events.Envelope
}

// NewMemoryPublisher creates an in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{events: make(map[string][]events.Envelope)}
}

// Publish stores the enveloped event under its room.
func (p *MemoryPublisher) Publish(ctx context.Context, room string, evt events.CanonicalEvent) error {
	env, err := events.NewEnvelope(room, evt)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.events[room] = append(p.events[room], env)
	p.mu.Unlock()
	return nil
}

// Events returns the envelopes published to a room.
func (p *MemoryPublisher) Events(room string) []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.events[room]...)
}
