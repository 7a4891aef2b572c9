package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carelink/hospital-platform/pkg/logging"
)

// SlotCache keeps recently computed slot lists in Redis with a short TTL.
// Misses are always safe: callers recompute from storage.
type SlotCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewSlotCache creates a Redis-backed slot cache.
func NewSlotCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *SlotCache {
	if client == nil {
		panic("scheduling: redis client required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotCache{redis: client, ttl: ttl, logger: logger}
}

// Get returns the cached slot list for a doctor/date, if present.
func (c *SlotCache) Get(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeOfDay, bool) {
	data, err := c.redis.Get(ctx, slotKey(doctorID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("slot cache read failed", "error", err, "doctor_id", doctorID)
		}
		return nil, false
	}

	var slots []TimeOfDay
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("slot cache entry corrupt, dropping", "error", err, "doctor_id", doctorID)
		_ = c.redis.Del(ctx, slotKey(doctorID, date)).Err()
		return nil, false
	}
	return slots, true
}

// Set stores a computed slot list. Failures are logged, never surfaced.
func (c *SlotCache) Set(ctx context.Context, doctorID uuid.UUID, date time.Time, slots []TimeOfDay) {
	data, err := json.Marshal(slots)
	if err != nil {
		c.logger.Warn("slot cache marshal failed", "error", err)
		return
	}
	if err := c.redis.Set(ctx, slotKey(doctorID, date), data, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", "error", err, "doctor_id", doctorID)
	}
}

// Invalidate removes the entry for a doctor/date.
func (c *SlotCache) Invalidate(ctx context.Context, doctorID uuid.UUID, date time.Time) error {
	if err := c.redis.Del(ctx, slotKey(doctorID, date)).Err(); err != nil {
		return fmt.Errorf("scheduling: invalidate slot cache: %w", err)
	}
	return nil
}

func slotKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("slots:%s:%s", doctorID, date.Format(time.DateOnly))
}
