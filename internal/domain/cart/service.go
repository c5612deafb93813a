// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Service handles cart business logic on top of the session stores
type Service struct {
	sessions *Sessions
	catalog  *product.Catalog
	logger   *logrus.Entry
}

// NewService creates a new cart service
func NewService(sessions *Sessions, catalog *product.Catalog, logger *logrus.Entry) *Service {
	return &Service{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// RemoveItemRequest identifies the line item to remove
type RemoveItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Color     string `json:"color" binding:"required"`
}

// Key returns the line item key addressed by the request
func (r *UpdateItemRequest) Key() Key {
	return Key{ProductID: r.ProductID, Size: r.Size, Color: r.Color}
}

// Key returns the line item key addressed by the request
func (r *RemoveItemRequest) Key() Key {
	return Key{ProductID: r.ProductID, Size: r.Size, Color: r.Color}
}

// Contents is a read of a session cart
type Contents struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	Count     int        `json:"count"`
	Hydrated  bool       `json:"hydrated"`
}

// Diagnostics describes the store state for the development debug endpoint
type Diagnostics struct {
	SessionID      string `json:"session_id"`
	StorageKey     string `json:"storage_key"`
	Hydrated       bool   `json:"hydrated"`
	LineItems      int    `json:"line_items"`
	TotalQuantity  int    `json:"total_quantity"`
	LastAccess     string `json:"last_access"`
	ActiveSessions int    `json:"active_sessions"`
}

// Store returns the hydrated store of a session
func (s *Service) Store(ctx context.Context, sessionID string) (*Store, error) {
	store, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return store, nil
}

// GetCart retrieves the cart of a session
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Contents, error) {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return contentsOf(store), nil
}

// AddItem adds a catalog product in the chosen size and color
func (s *Service) AddItem(ctx context.Context, sessionID string, req *AddItemRequest) (*Contents, error) {
	p, err := s.catalog.GetByID(req.ProductID)
	if err != nil {
		return nil, err
	}

	item, err := NewLineItem(*p, req.Size, req.Color, req.Quantity)
	if err != nil {
		return nil, err
	}

	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	store.Add(ctx, item)
	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"item":       item.Key().String(),
	}).Debug("item added to cart")

	return contentsOf(store), nil
}

// UpdateItem sets the quantity of a line item
func (s *Service) UpdateItem(ctx context.Context, sessionID string, req *UpdateItemRequest) (*Contents, error) {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	store.UpdateQuantity(ctx, req.Key(), req.Quantity)
	return contentsOf(store), nil
}

// RemoveItem removes a line item from the cart
func (s *Service) RemoveItem(ctx context.Context, sessionID string, req *RemoveItemRequest) (*Contents, error) {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	store.Remove(ctx, req.Key())
	return contentsOf(store), nil
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return err
	}

	store.Clear(ctx)
	return nil
}

// GetItemCount returns the badge count of the cart
func (s *Service) GetItemCount(ctx context.Context, sessionID string) (int, error) {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return store.Count(), nil
}

// Diagnose reports store internals
func (s *Service) Diagnose(ctx context.Context, sessionID string) (*Diagnostics, error) {
	store, err := s.Store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items := store.Items()
	return &Diagnostics{
		SessionID:      sessionID,
		StorageKey:     storageKey(sessionID),
		Hydrated:       store.Hydrated(),
		LineItems:      len(items),
		TotalQuantity:  TotalQuantity(items),
		LastAccess:     store.LastAccess().UTC().Format(time.RFC3339),
		ActiveSessions: s.sessions.Len(),
	}, nil
}

func contentsOf(store *Store) *Contents {
	items := store.Items()
	return &Contents{
		SessionID: store.SessionID(),
		Items:     items,
		Count:     TotalQuantity(items),
		Hydrated:  store.Hydrated(),
	}
}
