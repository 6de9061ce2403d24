package domain

// CatalogItem is one row of the product catalog. Items are loaded once and
// never mutated.
type CatalogItem struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Tags        string  `json:"-"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// Product is a catalog item decorated for display.
type Product struct {
	CatalogItem
	LocalImage string  `json:"local_img"`
	Price      float64 `json:"price"`
	Category   string  `json:"category"`
	Discount   int     `json:"discount"`
	Score      float64 `json:"score,omitempty"`
}

// SalePrice applies the discount percentage to Price.
func (p Product) SalePrice() float64 {
	return p.Price * float64(100-p.Discount) / 100
}
