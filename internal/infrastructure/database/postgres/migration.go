// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Entry) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	// Dependency order
	models := []interface{}{
		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for history and tracking queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_placed_at ON orders(user_id, placed_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order_created ON order_status_history(order_id, created_at)",
	}

	failCount := 0
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			m.logger.WithError(err).Warn("⚠️ Failed to create index")
			failCount++
		}
	}

	if failCount > 0 {
		return fmt.Errorf("%d of %d indexes failed", failCount, len(indexes))
	}

	m.logger.Infof("✅ Created %d indexes successfully", len(indexes))
	return nil
}

type seedLine struct {
	productID uint
	size      string
	color     string
	quantity  int
}

type seedEvent struct {
	at          time.Time
	status      order.OrderStatus
	label       string
	location    string
	description string
}

type seedOrder struct {
	number   string
	status   order.OrderStatus
	tracking string
	lines    []seedLine
	events   []seedEvent
}

func seedTime(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func demoOrders() []seedOrder {
	return []seedOrder{
		{
			number:   "ORD-789123",
			status:   order.OrderStatusShipped,
			tracking: "1Z999AA1234567890",
			lines: []seedLine{
				{productID: 1, size: "M", color: "#000000", quantity: 1},
				{productID: 2, size: "42", color: "#808080", quantity: 2},
			},
			events: []seedEvent{
				{seedTime("2025-12-23 10:00"), order.OrderStatusProcessing, "Order Processed", "New York, NY", "Your order has been processed and is ready for shipment"},
				{seedTime("2025-12-24 15:20"), order.OrderStatusShipped, "Shipped", "New York, NY", "Package has been shipped from our warehouse"},
				{seedTime("2025-12-24 23:45"), order.OrderStatusShipped, "Arrived at Facility", "Indianapolis, IN", "Package arrived at Indianapolis sorting facility"},
				{seedTime("2025-12-25 08:15"), order.OrderStatusShipped, "Departed Facility", "Indianapolis, IN", "Package has departed from Indianapolis facility"},
				{seedTime("2025-12-25 14:30"), order.OrderStatusShipped, "In Transit", "Chicago, IL", "Package is in transit to the next facility"},
			},
		},
		{
			number:   "ORD-456789",
			status:   order.OrderStatusDelivered,
			tracking: "1Z999AA1987654321",
			lines: []seedLine{
				{productID: 4, size: "L", color: "#0000FF", quantity: 1},
			},
			events: []seedEvent{
				{seedTime("2025-12-15 09:10"), order.OrderStatusProcessing, "Order Processed", "New York, NY", "Your order has been processed and is ready for shipment"},
				{seedTime("2025-12-16 13:00"), order.OrderStatusShipped, "Shipped", "New York, NY", "Package has been shipped from our warehouse"},
				{seedTime("2025-12-20 11:40"), order.OrderStatusDelivered, "Delivered", "Brooklyn, NY", "Package was delivered"},
			},
		},
		{
			number: "ORD-123456",
			status: order.OrderStatusProcessing,
			lines: []seedLine{
				{productID: 3, size: "42", color: "#FFC0CB", quantity: 2},
			},
			events: []seedEvent{
				{seedTime("2025-12-15 16:05"), order.OrderStatusProcessing, "Order Processed", "New York, NY", "Your order has been processed and is ready for shipment"},
			},
		},
	}
}

// SeedDemoOrders loads a small order history for userID so history and tracking
// can be exercised in development. Existing order numbers are skipped.
func (m *Migration) SeedDemoOrders(userID string, catalog *product.Catalog, pricing config.PricingConfig, deliveryDays int) error {
	m.logger.WithField("user_id", userID).Info("🌱 Seeding demo orders...")

	created := 0
	for _, seed := range demoOrders() {
		var existing order.Order
		err := m.db.Where("order_number = ?", seed.number).First(&existing).Error
		if err == nil {
			m.logger.Debugf("⏭️ Order already exists: %s", seed.number)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check order %s: %w", seed.number, err)
		}

		o, err := buildSeedOrder(seed, userID, catalog, pricing, deliveryDays)
		if err != nil {
			return err
		}

		if err := m.db.Create(o).Error; err != nil {
			return fmt.Errorf("failed to seed order %s: %w", seed.number, err)
		}
		created++
	}

	m.logger.Infof("✅ Seeded %d demo orders", created)
	return nil
}

func buildSeedOrder(seed seedOrder, userID string, catalog *product.Catalog, pricing config.PricingConfig, deliveryDays int) (*order.Order, error) {
	placedAt := seed.events[0].at

	o := &order.Order{
		OrderNumber: seed.number,
		UserID:      userID,
		Status:      seed.status,
		Currency:    pricing.Currency,
		ShippingAddress: order.Address{
			Name:    "Demo Customer",
			Email:   "demo@example.com",
			Phone:   "5551234567",
			Address: "123 Main St",
			City:    "New York",
		},
		PaymentMethod:     "•••• •••• •••• 4242",
		TrackingNumber:    seed.tracking,
		EstimatedDelivery: placedAt.AddDate(0, 0, deliveryDays),
		PlacedAt:          placedAt,
	}

	subtotal := decimal.Zero
	for _, line := range seed.lines {
		p, err := catalog.GetByID(line.productID)
		if err != nil {
			return nil, fmt.Errorf("seed order %s: %w", seed.number, err)
		}
		price, err := p.UnitPrice()
		if err != nil {
			return nil, fmt.Errorf("seed order %s: %w", seed.number, err)
		}

		lineTotal := price.Mul(decimal.NewFromInt(int64(line.quantity)))
		subtotal = subtotal.Add(lineTotal)

		o.Items = append(o.Items, order.OrderItem{
			ProductID:  p.ID,
			Title:      p.Title,
			Image:      p.ImageFor(line.color),
			Size:       line.size,
			Color:      line.color,
			Quantity:   line.quantity,
			UnitPrice:  price,
			TotalPrice: lineTotal,
		})
	}

	o.SubtotalAmount = subtotal
	o.DiscountAmount = subtotal.Mul(pricing.DiscountRate).Round(2)
	o.ShippingAmount = pricing.ShippingFee
	o.TotalAmount = subtotal.Sub(o.DiscountAmount).Add(o.ShippingAmount)

	for _, event := range seed.events {
		o.AddStatusHistory(order.OrderStatusHistory{
			Status:      event.status,
			Label:       event.label,
			Location:    event.location,
			Description: event.description,
			CreatedBy:   "seed",
			CreatedAt:   event.at,
		})

		switch event.status {
		case order.OrderStatusShipped:
			if o.ShippedAt == nil {
				at := event.at
				o.ShippedAt = &at
			}
		case order.OrderStatusDelivered:
			at := event.at
			o.DeliveredAt = &at
		}
	}

	return o, nil
}

// GetTableInfo logs row counts of the order tables
func (m *Migration) GetTableInfo() {
	tables := []string{"orders", "order_items", "order_status_history"}

	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			m.logger.WithError(err).Warnf("⚠️ Could not count %s", table)
			continue
		}
		m.logger.WithFields(logrus.Fields{"table": table, "records": count}).Info("📊 Table info")
	}
}
