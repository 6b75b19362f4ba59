// Package idempotency keeps consumers from processing a published event
// twice. Marks live in Redis with a retention TTL, so a redelivery after
// the mark expires is treated as new; consumers must tolerate that.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultRetention = 7 * 24 * time.Hour

type store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	ProcessedKey(consumer, eventID string) string
}

// Manager records which events a consumer has already handled.
type Manager struct {
	store     store
	retention time.Duration
}

// NewManager builds a manager over the shared Redis client. A zero
// retention falls back to seven days.
func NewManager(s store, retention time.Duration) (*Manager, error) {
	if s == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Manager{store: s, retention: retention}, nil
}

// CheckAndMarkProcessed marks the event as handled and reports whether it
// had been handled before.
func (m *Manager) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key := m.store.ProcessedKey(consumer, eventID.String())
	fresh, err := m.store.SetNX(ctx, key, 1, m.retention)
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}
	return !fresh, nil
}

// Delete removes the mark so a failed handler can retry on redelivery.
func (m *Manager) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	return m.store.Del(ctx, m.store.ProcessedKey(consumer, eventID.String()))
}
