// internal/domain/checkout/drafts.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoDraft = errors.New("no shipping draft for session")

// DraftStore keeps the validated shipping form between the shipping and payment steps
type DraftStore interface {
	SaveShipping(ctx context.Context, sessionID string, form *ShippingForm) error
	GetShipping(ctx context.Context, sessionID string) (*ShippingForm, error)
	DeleteShipping(ctx context.Context, sessionID string) error
}

// RedisDraftStore stores shipping drafts in Redis
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore creates a draft store
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

// SaveShipping stores the form, replacing any earlier draft
func (r *RedisDraftStore) SaveShipping(ctx context.Context, sessionID string, form *ShippingForm) error {
	data, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("marshal shipping draft failed: %w", err)
	}
	if err := r.client.Set(ctx, draftKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// GetShipping returns the stored draft or ErrNoDraft
func (r *RedisDraftStore) GetShipping(ctx context.Context, sessionID string) (*ShippingForm, error) {
	data, err := r.client.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var form ShippingForm
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("unmarshal shipping draft failed: %w", err)
	}
	return &form, nil
}

// DeleteShipping drops the draft
func (r *RedisDraftStore) DeleteShipping(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("checkout:shipping:%s", sessionID)
}
