package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable marks a backend failure, to keep it distinguishable from a
// plain miss. A miss is never an error.
var ErrUnavailable = errors.New("token store unavailable")

const keyPrefix = "refresh:"

// Record is what the engine persists per issued refresh token. The raw token
// is never stored; the digest is both the key and the TokenHash field.
// Records are JSON so fields can be added later without a format migration.
type Record struct {
	UserID    uint      `json:"user_id"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps refresh-token records in Redis, relying on its native TTL for
// expiry. Every operation is a single remote call; there are no multi-key
// transactions.
type Store struct {
	RDB *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{RDB: rdb}
}

func (s *Store) Put(ctx context.Context, digest string, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.RDB.Set(ctx, keyPrefix+digest, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns (nil, false, nil) for a key that was never written or whose
// TTL has elapsed. Expiry is an expected outcome, not a fault.
func (s *Store) Get(ctx context.Context, digest string) (*Record, bool, error) {
	data, err := s.RDB.Get(ctx, keyPrefix+digest).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, true, nil
}

func (s *Store) Delete(ctx context.Context, digest string) error {
	if err := s.RDB.Del(ctx, keyPrefix+digest).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ExtendTTL pushes out the expiry of an existing record in place. Kept for
// the legacy sliding-expiry flow; the rotation path never calls it.
func (s *Store) ExtendTTL(ctx context.Context, digest string, ttl time.Duration) error {
	if err := s.RDB.Expire(ctx, keyPrefix+digest, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
