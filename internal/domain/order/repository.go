// internal/domain/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository persists order history
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)
	ListByUser(ctx context.Context, userID string, status OrderStatus) ([]Order, error)
	UpdateStatus(ctx context.Context, o *Order, event OrderStatusHistory) error
}

// GormRepository stores orders in PostgreSQL through gorm
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates the repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts the order with its items and history in one transaction
func (r *GormRepository) Create(ctx context.Context, o *Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, o.OrderNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByNumber retrieves a single order by order number
func (r *GormRepository) GetByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	var o Order
	result := r.preloaded(ctx).
		Where("order_number = ?", orderNumber).
		First(&o)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &o, nil
}

// ListByUser returns a user's orders, newest first; an empty status selects all
func (r *GormRepository) ListByUser(ctx context.Context, userID string, status OrderStatus) ([]Order, error) {
	query := r.preloaded(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	orders := []Order{}
	if err := query.Order("placed_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus writes the new status and timestamps and appends the tracking event
func (r *GormRepository) UpdateStatus(ctx context.Context, o *Order, event OrderStatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       o.Status,
			"shipped_at":   o.ShippedAt,
			"delivered_at": o.DeliveredAt,
		}
		if err := tx.Model(&Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		event.OrderID = o.ID
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
}

func (r *GormRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}
