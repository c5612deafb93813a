// internal/domain/product/entity.go
package product

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product represents an immutable catalog entry
type Product struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       string            `json:"price"` // Decimal string, e.g. "49.90"
	Image       string            `json:"image"`
	Sizes       []string          `json:"sizes"`
	Colors      []string          `json:"colors"`
	Images      map[string]string `json:"images,omitempty"` // Color -> image
	Category    string            `json:"category"`
	CreatedAt   time.Time         `json:"created_at"`
}

// UnitPrice parses the price string
func (p Product) UnitPrice() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("product %d has malformed price %q: %w", p.ID, p.Price, err)
	}
	return price, nil
}

// HasSize reports whether size is one of the product's sizes
func (p Product) HasSize(size string) bool {
	return contains(p.Sizes, size)
}

// HasColor reports whether color is one of the product's colors
func (p Product) HasColor(color string) bool {
	return contains(p.Colors, color)
}

// ImageFor returns the image for a color, falling back to the default image
func (p Product) ImageFor(color string) string {
	if img, ok := p.Images[color]; ok && img != "" {
		return img
	}
	return p.Image
}

// Validate checks the catalog invariants of a product
func (p Product) Validate() error {
	if p.ID == 0 {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: product %d has no title", ErrInvalidProduct, p.ID)
	}
	price, err := p.UnitPrice()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: product %d has a negative price", ErrInvalidProduct, p.ID)
	}
	if len(p.Sizes) == 0 {
		return fmt.Errorf("%w: product %d has no sizes", ErrInvalidProduct, p.ID)
	}
	if len(p.Colors) == 0 {
		return fmt.Errorf("%w: product %d has no colors", ErrInvalidProduct, p.ID)
	}
	for color := range p.Images {
		if !p.HasColor(color) {
			return fmt.Errorf("%w: product %d has an image for unknown color %s", ErrInvalidProduct, p.ID, color)
		}
	}
	if p.Category == "" {
		return fmt.Errorf("%w: product %d has no category", ErrInvalidProduct, p.ID)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
