package domain

// ScoredItem pairs a catalog item with its similarity to the query item.
type ScoredItem struct {
	Item  CatalogItem `json:"item"`
	Score float64     `json:"score"`
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationResult struct {
	Recommendations []Product
	CacheHit        bool
}

// ProductPage is one page of the product listing.
type ProductPage struct {
	Items    []Product
	Page     int
	Pages    int
	Total    int
	Category string
	Sort     string
}
