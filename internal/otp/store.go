package otp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/stylekart/fulfillment-backend/pkg/redis"
)

// ErrNoCode is returned when no live code exists for a reference.
var ErrNoCode = errors.New("otp: no active code")

// Reference scopes one live code per deliverable per courier.
type Reference struct {
	ItemType  string
	ItemID    string
	CourierID string
}

func (r Reference) validate() error {
	if r.ItemType == "" || r.ItemID == "" || r.CourierID == "" {
		return fmt.Errorf("otp reference requires item type, item id, and courier id")
	}
	return nil
}

// CodeStore persists confirmation codes with a TTL.
type CodeStore interface {
	Save(ctx context.Context, ref Reference, code string, ttl time.Duration) error
	Get(ctx context.Context, ref Reference) (string, error)
	Delete(ctx context.Context, ref Reference) error
}

// RedisStore keeps codes in Redis; expiry is handled by key TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a connected redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, ref Reference, code string, ttl time.Duration) error {
	return s.client.Set(ctx, s.client.OTPKey(ref.ItemType, ref.ItemID, ref.CourierID), code, ttl)
}

func (s *RedisStore) Get(ctx context.Context, ref Reference) (string, error) {
	code, err := s.client.Get(ctx, s.client.OTPKey(ref.ItemType, ref.ItemID, ref.CourierID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrNoCode
		}
		return "", err
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, ref Reference) error {
	return s.client.Del(ctx, s.client.OTPKey(ref.ItemType, ref.ItemID, ref.CourierID))
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-process fallback used when Redis is not
// configured. Expired entries linger until the next Sweep, so deployments
// using it should run the sweep job.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Reference]memoryEntry
	now     func() time.Time
}

// NewMemoryStore builds an empty in-memory code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[Reference]memoryEntry{},
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, ref Reference, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ref] = memoryEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, ref Reference) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[ref]
	if !ok {
		return "", ErrNoCode
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, ref)
		return "", ErrNoCode
	}
	return entry.code, nil
}

func (s *MemoryStore) Delete(_ context.Context, ref Reference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ref)
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for ref, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, ref)
			removed++
		}
	}
	return removed
}
