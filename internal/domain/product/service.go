// internal/domain/product/service.go
package product

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Sort options accepted by List
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// CategoryAll disables category filtering in List
const CategoryAll = "all"

// Catalog serves read-only queries over a fixed set of products.
// It is never mutated after construction, so concurrent readers need no locking.
type Catalog struct {
	products []Product // newest first
	byID     map[uint]int
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Category  string `form:"category"`
	Sort      string `form:"sort"`
	ExcludeID uint   `form:"exclude"`
}

// NewCatalog validates the fixture and builds the catalog
func NewCatalog(products []Product) (*Catalog, error) {
	sorted := make([]Product, len(products))
	copy(sorted, products)

	byID := make(map[uint]int, len(sorted))
	for _, p := range sorted {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrInvalidProduct, p.ID)
		}
		byID[p.ID] = 0
	}

	sortNewestFirst(sorted)
	for i, p := range sorted {
		byID[p.ID] = i
	}

	return &Catalog{products: sorted, byID: byID}, nil
}

// GetAll returns every product, newest first
func (c *Catalog) GetAll() []Product {
	return c.clone(c.products)
}

// GetByID returns a single product
func (c *Catalog) GetByID(id uint) (*Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := c.products[idx]
	return &p, nil
}

// GetByCategory returns products whose category matches case-insensitively, newest first
func (c *Catalog) GetByCategory(category string) []Product {
	matched := make([]Product, 0)
	for _, p := range c.products {
		if strings.EqualFold(p.Category, category) {
			matched = append(matched, p)
		}
	}
	return c.clone(matched)
}

// List applies the storefront filter controls: category, sort order and an excluded product
func (c *Catalog) List(req *ProductListRequest) []Product {
	var products []Product
	if req.Category == "" || strings.EqualFold(req.Category, CategoryAll) {
		products = c.GetAll()
	} else {
		products = c.GetByCategory(req.Category)
	}

	if req.ExcludeID != 0 {
		filtered := products[:0]
		for _, p := range products {
			if p.ID != req.ExcludeID {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	switch req.Sort {
	case SortOldest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		})
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return priceOf(products[i]).LessThan(priceOf(products[j]))
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return priceOf(products[i]).GreaterThan(priceOf(products[j]))
		})
	}

	return products
}

// Categories returns the distinct category labels in catalog order
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range c.products {
		key := strings.ToLower(p.Category)
		if seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, key)
	}
	sort.Strings(categories)
	return categories
}

func (c *Catalog) clone(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

func sortNewestFirst(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// Prices are validated in NewCatalog
func priceOf(p Product) decimal.Decimal {
	price, _ := p.UnitPrice()
	return price
}
