// internal/domain/order/confirmation.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConfirmationStore holds the snapshot of the last placed order until it is read
type ConfirmationStore interface {
	Save(ctx context.Context, sessionID string, snapshot *Snapshot) error
	Take(ctx context.Context, sessionID string) (*Snapshot, error)
}

// RedisConfirmationStore keeps snapshots in Redis
type RedisConfirmationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisConfirmationStore creates the store
func NewRedisConfirmationStore(client *redis.Client, ttl time.Duration) *RedisConfirmationStore {
	return &RedisConfirmationStore{client: client, ttl: ttl}
}

// Save overwrites the session's pending snapshot
func (r *RedisConfirmationStore) Save(ctx context.Context, sessionID string, snapshot *Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}
	if err := r.client.Set(ctx, confirmationKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Take reads and deletes the snapshot atomically
func (r *RedisConfirmationStore) Take(ctx context.Context, sessionID string) (*Snapshot, error) {
	data, err := r.client.GetDel(ctx, confirmationKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoConfirmation
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel failed: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot failed: %w", err)
	}
	return &snapshot, nil
}

func confirmationKey(sessionID string) string {
	return fmt.Sprintf("last-order:%s", sessionID)
}
