// internal/domain/cart/sessions.go
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var ErrSessionRequired = errors.New("session ID required for cart")

// Sessions hands out one hydrated Store per shopping session
type Sessions struct {
	mu          sync.Mutex
	stores      map[string]*Store
	persister   Persister
	logger      *logrus.Entry
	idleTimeout time.Duration
	loads       singleflight.Group
}

// NewSessions creates the session registry
func NewSessions(persister Persister, logger *logrus.Entry, idleTimeout time.Duration) *Sessions {
	return &Sessions{
		stores:      make(map[string]*Store),
		persister:   persister,
		logger:      logger,
		idleTimeout: idleTimeout,
	}
}

// Get returns the session's store, hydrating it on first use.
// Concurrent first requests for one session share a single load. Every call counts as
// activity for Sweep.
func (s *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	if store := s.lookup(sessionID); store != nil && store.Hydrated() {
		return store, nil
	}

	v, err, _ := s.loads.Do(sessionID, func() (interface{}, error) {
		store := s.lookupOrCreate(sessionID)
		if err := store.Hydrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Store), nil
}

// Forget drops the in-memory store of a session; the persisted blob stays
func (s *Sessions) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, sessionID)
}

// Len returns the number of live stores
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Sweep evicts stores idle for longer than the idle timeout and returns how many were dropped
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, store := range s.stores {
		if now.Sub(store.LastAccess()) > s.idleTimeout {
			delete(s.stores, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps idle stores until ctx is cancelled
func (s *Sessions) Run(ctx context.Context) {
	if s.idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(s.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				s.logger.WithField("evicted", n).Debug("evicted idle cart sessions")
			}
		}
	}
}

// lookup refreshes the store's last access while holding the registry lock, so a concurrent
// Sweep either sees the refresh or evicts before the store is handed out
func (s *Sessions) lookup(sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.stores[sessionID]
	if store != nil {
		store.touch()
	}
	return store
}

func (s *Sessions) lookupOrCreate(sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[sessionID]; ok {
		store.touch()
		return store
	}
	store := NewStore(sessionID, s.persister, s.logger)
	s.stores[sessionID] = store
	return store
}
