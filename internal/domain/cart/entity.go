// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

var (
	ErrInvalidSize  = errors.New("size is not offered for this product")
	ErrInvalidColor = errors.New("color is not offered for this product")
	ErrNotHydrated  = errors.New("cart has not been loaded yet")
)

// Key identifies a line item: the same product in the same size and color
type Key struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s/%s", k.ProductID, k.Size, k.Color)
}

// LineItem is a product with the shopper's selection
type LineItem struct {
	product.Product
	SelectedSize  string `json:"selected_size"`
	SelectedColor string `json:"selected_color"`
	Quantity      int    `json:"quantity"`
}

// NewLineItem builds a line item, rejecting sizes and colors the product does not offer.
// A quantity below 1 defaults to 1.
func NewLineItem(p product.Product, size, color string, quantity int) (LineItem, error) {
	if !p.HasSize(size) {
		return LineItem{}, fmt.Errorf("%w: %q (product %d)", ErrInvalidSize, size, p.ID)
	}
	if !p.HasColor(color) {
		return LineItem{}, fmt.Errorf("%w: %q (product %d)", ErrInvalidColor, color, p.ID)
	}
	if quantity < 1 {
		quantity = 1
	}

	return LineItem{
		Product:       p,
		SelectedSize:  size,
		SelectedColor: color,
		Quantity:      quantity,
	}, nil
}

// Key returns the identity key of the line item
func (i LineItem) Key() Key {
	return Key{ProductID: i.ID, Size: i.SelectedSize, Color: i.SelectedColor}
}

// LineTotal returns price × quantity
func (i LineItem) LineTotal() (decimal.Decimal, error) {
	price, err := i.UnitPrice()
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(decimal.NewFromInt(int64(i.Quantity))), nil
}

// TotalQuantity sums the quantities of the given items (the navigation badge count)
func TotalQuantity(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
