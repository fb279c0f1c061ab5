package ingest

import (
	"context"
	"time"

	"github.com/profitlens/profitlens-backend/pkg/redis"
)

// IdempotencyManager marks events as processed in Redis so redelivered
// messages are dropped instead of double-counted.
type IdempotencyManager struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyManager(client *redis.Client, ttl time.Duration) *IdempotencyManager {
	return &IdempotencyManager{client: client, ttl: ttl}
}

// CheckAndMarkProcessed atomically claims the event for this consumer.
// Returns true when the event was already processed.
func (m *IdempotencyManager) CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error) {
	claimed, err := m.client.SetNX(ctx, m.client.IdempotencyKey(consumer, eventID), "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Delete releases a claim after a failed handler so the redelivery can retry.
func (m *IdempotencyManager) Delete(ctx context.Context, consumer, eventID string) error {
	return m.client.Del(ctx, m.client.IdempotencyKey(consumer, eventID))
}
