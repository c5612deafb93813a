// internal/domain/cart/store.go
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Persister loads and saves the line items of a session cart
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]LineItem, error)
	Save(ctx context.Context, sessionID string, items []LineItem) error
}

// Store is the cart of one shopping session.
//
// Mutations are applied under the store's lock and are visible to every reader once the call
// returns. After each mutation the full cart is persisted; a failed save is logged and
// otherwise ignored, so at most the latest mutation can be lost.
type Store struct {
	mu         sync.RWMutex
	sessionID  string
	items      []LineItem
	hydrated   bool
	persister  Persister
	logger     *logrus.Entry
	lastAccess time.Time
	now        func() time.Time
}

// NewStore creates an empty, not yet hydrated store
func NewStore(sessionID string, persister Persister, logger *logrus.Entry) *Store {
	return &Store{
		sessionID:  sessionID,
		items:      []LineItem{},
		persister:  persister,
		logger:     logger.WithField("session_id", sessionID),
		lastAccess: time.Now(),
		now:        time.Now,
	}
}

// SessionID returns the session the store belongs to
func (s *Store) SessionID() string {
	return s.sessionID
}

// Hydrate loads the persisted cart and marks the store ready. Calling it again is a no-op.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	items, err := s.persister.Load(ctx, s.sessionID)
	if err != nil {
		return fmt.Errorf("failed to hydrate cart: %w", err)
	}

	s.items = dedupe(items)
	s.hydrated = true
	s.logger.WithField("items", len(s.items)).Debug("cart hydrated")
	return nil
}

// Hydrated reports whether the persisted state has been loaded
func (s *Store) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = s.now()
	return s.snapshot()
}

// Count returns the sum of all quantities
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TotalQuantity(s.items)
}

// Add appends the item, or bumps the quantity of the line item with the same key by one
func (s *Store) Add(ctx context.Context, item LineItem) {
	s.mutate(ctx, "add", func() {
		if idx := s.indexOf(item.Key()); idx >= 0 {
			s.items[idx].Quantity++
			return
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		s.items = append(s.items, item)
	})
}

// Remove drops the line item with the given key; absent keys are ignored
func (s *Store) Remove(ctx context.Context, key Key) {
	s.mutate(ctx, "remove", func() {
		if idx := s.indexOf(key); idx >= 0 {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		}
	})
}

// UpdateQuantity sets the quantity of the matching line item, never below 1.
// Taking an item out of the cart goes through Remove.
func (s *Store) UpdateQuantity(ctx context.Context, key Key, quantity int) {
	s.mutate(ctx, "update_quantity", func() {
		if idx := s.indexOf(key); idx >= 0 {
			s.items[idx].Quantity = max(1, quantity)
		}
	})
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, "clear", func() {
		s.items = []LineItem{}
	})
}

// Deduct takes the quantities of placed out of the cart. Lines whose quantity grew since
// placed was read keep the difference; lines added since are left alone.
func (s *Store) Deduct(ctx context.Context, placed []LineItem) {
	s.mutate(ctx, "deduct", func() {
		for _, item := range placed {
			idx := s.indexOf(item.Key())
			if idx < 0 {
				continue
			}
			if s.items[idx].Quantity > item.Quantity {
				s.items[idx].Quantity -= item.Quantity
				continue
			}
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		}
	})
}

// LastAccess returns when the store was last read or written
func (s *Store) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}

func (s *Store) touch() {
	s.mu.Lock()
	s.lastAccess = s.now()
	s.mu.Unlock()
}

func (s *Store) mutate(ctx context.Context, op string, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply()
	s.lastAccess = s.now()

	// Saved under the lock so blobs land in mutation order
	if err := s.persister.Save(ctx, s.sessionID, s.snapshot()); err != nil {
		s.logger.WithError(err).WithField("op", op).Warn("failed to persist cart")
	}
}

func (s *Store) indexOf(key Key) int {
	for i := range s.items {
		if s.items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// dedupe folds line items sharing a key, which a hand-edited blob could contain
func dedupe(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[Key]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if idx, ok := index[item.Key()]; ok {
			out[idx].Quantity += item.Quantity
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}
