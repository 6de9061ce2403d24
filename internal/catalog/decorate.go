package catalog

import (
	"math/rand/v2"

	"github.com/actuallystonmai/shopwiz/internal/domain"
)

var (
	LocalImages = []string{
		"img/img_1.png", "img/img_2.png", "img/img_3.png", "img/img_4.png",
		"img/img_5.png", "img/img_6.png", "img/img_7.png", "img/img_8.png",
	}
	Prices     = []float64{29.99, 39.99, 49.99, 59.99, 79.99, 99.99, 119.99, 149.99}
	Categories = []string{
		"Beauty", "Health", "Skin Care", "Hair Care", "Supplements",
		"Personal Care", "Vitamins", "Fragrance",
	}
	Discounts = []int{0, 10, 15, 20, 25}
)

// Decorate attaches display-only fields to each item. Values are drawn
// independently from fixed sets; nothing is stored.
func Decorate(items []domain.CatalogItem, rng *rand.Rand) []domain.Product {
	out := make([]domain.Product, len(items))
	for i, it := range items {
		out[i] = decorateOne(it, rng)
	}
	return out
}

// DecorateScored is Decorate for recommendation results; scores are kept.
func DecorateScored(items []domain.ScoredItem, rng *rand.Rand) []domain.Product {
	out := make([]domain.Product, len(items))
	for i, it := range items {
		out[i] = decorateOne(it.Item, rng)
		out[i].Score = it.Score
	}
	return out
}

func decorateOne(it domain.CatalogItem, rng *rand.Rand) domain.Product {
	return domain.Product{
		CatalogItem: it,
		LocalImage:  LocalImages[rng.IntN(len(LocalImages))],
		Price:       Prices[rng.IntN(len(Prices))],
		Category:    Categories[rng.IntN(len(Categories))],
		Discount:    Discounts[rng.IntN(len(Discounts))],
	}
}
