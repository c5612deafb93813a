// internal/domain/product/fixtures.go
package product

import "time"

const loremDescription = "Lorem ipsum dolor sit amet consect adipisicing elit lorem ipsum dolor sit."

// DefaultProducts is the storefront fixture served by the catalog
func DefaultProducts() []Product {
	return []Product{
		{
			ID:          1,
			Title:       "Under Armour StormFleece",
			Description: loremDescription,
			Price:       "49.90",
			Image:       "/product-hoodie.png",
			Sizes:       []string{"S", "M", "L", "XL"},
			Colors:      []string{"#FF0000", "#FFC107", "#000000"},
			Images: map[string]string{
				"#FF0000": "/product-hoodie.png",
				"#FFC107": "/product-hoodie.png",
				"#000000": "/product-hoodie.png",
			},
			Category:  "hoodies",
			CreatedAt: mustTime("2024-12-01T10:00:00Z"),
		},
		{
			ID:          2,
			Title:       "Nike Air Max 270",
			Description: loremDescription,
			Price:       "59.90",
			Image:       "/product-shoe1.png",
			Sizes:       []string{"40", "41", "42", "43", "44"},
			Colors:      []string{"#808080", "#FFFFFF"},
			Images: map[string]string{
				"#808080": "/product-shoe1.png",
				"#FFFFFF": "/product-shoe2.png",
			},
			Category:  "shoes",
			CreatedAt: mustTime("2024-11-15T10:00:00Z"),
		},
		{
			ID:          3,
			Title:       "Nike Ultraboost Pulse",
			Description: loremDescription,
			Price:       "69.90",
			Image:       "/product-shoe2.png",
			Sizes:       []string{"40", "41", "42", "43", "44"},
			Colors:      []string{"#808080", "#FFC0CB"},
			Images: map[string]string{
				"#808080": "/product-shoe2.png",
				"#FFC0CB": "/product-shoe1.png",
			},
			Category:  "shoes",
			CreatedAt: mustTime("2024-12-10T10:00:00Z"),
		},
		{
			ID:          4,
			Title:       "Levi's Classic Denim",
			Description: loremDescription,
			Price:       "59.90",
			Image:       "/product-shirt.png",
			Sizes:       []string{"S", "M", "L", "XL"},
			Colors:      []string{"#0000FF", "#008000"},
			Images: map[string]string{
				"#0000FF": "/product-shirt.png",
				"#008000": "/product-shirt.png",
			},
			Category:  "shirts",
			CreatedAt: mustTime("2024-10-01T10:00:00Z"),
		},
	}
}

func mustTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
