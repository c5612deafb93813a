// internal/domain/cart/redis.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StorageName is the fixed identifier of the persisted cart blob
const StorageName = "cart-storage"

// persistedCart is the blob layout: only the line items are persisted
type persistedCart struct {
	Cart []LineItem `json:"cart"`
}

// RedisPersister keeps each session's cart as a JSON blob in Redis
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPersister creates a persister; ttl 0 keeps blobs forever
func NewRedisPersister(client *redis.Client, ttl time.Duration) *RedisPersister {
	return &RedisPersister{
		client: client,
		ttl:    ttl,
	}
}

// Load returns the persisted line items, or an empty cart when nothing was stored
func (r *RedisPersister) Load(ctx context.Context, sessionID string) ([]LineItem, error) {
	data, err := r.client.Get(ctx, storageKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var blob persistedCart
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if blob.Cart == nil {
		blob.Cart = []LineItem{}
	}

	return blob.Cart, nil
}

// Save overwrites the session's blob
func (r *RedisPersister) Save(ctx context.Context, sessionID string, items []LineItem) error {
	data, err := json.Marshal(persistedCart{Cart: items})
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, storageKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func storageKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", StorageName, sessionID)
}
