package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"github.com/actuallystonmai/shopwiz/internal/catalog"
	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/actuallystonmai/shopwiz/internal/metrics"
	"github.com/actuallystonmai/shopwiz/internal/model"
)

const (
	defaultLimit  = model.DefaultTopN
	maxLimit      = 50
	similarLimit  = 4
	trendingLimit = 8
	featuredLimit = 4
	perPage       = 12
)

// Store persists users and their wishlists.
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	ToggleWishlist(ctx context.Context, userID int64, name string) (bool, error)
	ListWishlist(ctx context.Context, userID int64) ([]string, error)
}

// RecommendationCache holds undecorated rankings per catalog snapshot.
type RecommendationCache interface {
	Get(ctx context.Context, catalogHash uint64, name string, limit int) ([]domain.ScoredItem, bool, error)
	Set(ctx context.Context, catalogHash uint64, name string, limit int, recs []domain.ScoredItem) error
	ClearStale(ctx context.Context, keep uint64) error
}

// CatalogSource produces fresh catalog snapshots, used at startup and on
// reload.
type CatalogSource func() (products, trending *catalog.Catalog, err error)

type Service struct {
	store       Store
	cache       RecommendationCache
	recommender *model.Recommender
	source      CatalogSource
	newRand     func() *rand.Rand
	fastHash    bool

	products atomic.Pointer[catalog.Catalog]
	trending atomic.Pointer[catalog.Catalog]
}

type Option func(*Service)

// WithCache enables the recommendation cache.
func WithCache(c RecommendationCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRand fixes the random source used for sampling and decoration.
func WithRand(newRand func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = newRand }
}

// WithFastHashing uses the minimum bcrypt cost. Tests only.
func WithFastHashing() Option {
	return func(s *Service) { s.fastHash = true }
}

// NewService loads the initial catalog from source.
func NewService(store Store, recommender *model.Recommender, source CatalogSource, opts ...Option) (*Service, error) {
	s := &Service{
		store:       store,
		recommender: recommender,
		source:      source,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.ReloadCatalog(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Catalog returns the current product catalog snapshot.
func (s *Service) Catalog() *catalog.Catalog {
	return s.products.Load()
}

// ReloadCatalog reads a new snapshot and swaps it in. The similarity index
// is rebuilt eagerly when the content changed so the first request after a
// reload does not pay for it.
func (s *Service) ReloadCatalog(ctx context.Context) error {
	products, trending, err := s.source()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if trending == nil {
		trending = products
	}

	prev := s.products.Swap(products)
	s.trending.Store(trending)
	metrics.CatalogItems.Set(float64(products.Len()))

	if prev != nil && prev.Hash() == products.Hash() {
		return nil
	}
	s.recommender.Index(products)
	logging.Info().Int("items", products.Len()).Int("trending", trending.Len()).Msg("catalog loaded")

	if prev != nil && s.cache != nil {
		if err := s.cache.ClearStale(ctx, products.Hash()); err != nil {
			logging.Warn().Err(err).Msg("[service] clear stale recommendations")
		}
	}
	return nil
}

// Recommend returns up to limit decorated items similar to name. An unknown
// name yields an empty result.
func (s *Service) Recommend(ctx context.Context, name string, limit int) (*domain.RecommendationResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	c := s.products.Load()
	log := logging.Ctx(ctx)

	// Check Cache
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, c.Hash(), name, limit)
		if err != nil {
			log.Warn().Err(err).Str("name", name).Msg("[service] cache get error")
		}
		if found {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return &domain.RecommendationResult{
				Recommendations: catalog.DecorateScored(cached, s.newRand()),
				CacheHit:        true,
			}, nil
		}
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	}

	// Cache miss -> rank
	recs := s.recommender.Recommend(c, name, limit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, c.Hash(), name, limit, recs); err != nil {
			log.Warn().Err(err).Str("name", name).Msg("[service] cache set error")
		}
	}

	return &domain.RecommendationResult{
		Recommendations: catalog.DecorateScored(recs, s.newRand()),
	}, nil
}

// Home returns the trending head and a random featured sample.
func (s *Service) Home() (trending, featured []domain.Product) {
	rng := s.newRand()
	trending = catalog.Decorate(s.trending.Load().Head(trendingLimit), rng)
	featured = catalog.Decorate(s.products.Load().Sample(rng, featuredLimit), rng)
	return trending, featured
}

// ProductQuery selects one page of the product listing.
type ProductQuery struct {
	Page     int
	Category string
	Sort     string
}

const (
	SortRating    = "rating"
	SortPriceLow  = "low"
	SortPriceHigh = "high"
)

// ListProducts filters by category, orders and paginates. Price sorting
// orders the page by its displayed price, since prices only exist after
// decoration.
func (s *Service) ListProducts(q ProductQuery) domain.ProductPage {
	if q.Page < 1 {
		q.Page = 1
	}
	items := s.products.Load().Filter(q.Category)
	if q.Sort == SortRating {
		catalog.SortByRating(items)
	}

	page, pages := catalog.Page(items, q.Page, perPage)
	products := catalog.Decorate(page, s.newRand())

	switch q.Sort {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return cmpFloat(a.SalePrice(), b.SalePrice()) })
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return cmpFloat(b.SalePrice(), a.SalePrice()) })
	}

	return domain.ProductPage{
		Items:    products,
		Page:     q.Page,
		Pages:    pages,
		Total:    len(items),
		Category: q.Category,
		Sort:     q.Sort,
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ProductDetail returns the named product and a few similar ones.
func (s *Service) ProductDetail(ctx context.Context, name string) (*domain.Product, []domain.Product, error) {
	c := s.products.Load()
	i, ok := c.Lookup(name)
	if !ok {
		return nil, nil, domain.ErrProductNotFound
	}
	product := catalog.Decorate([]domain.CatalogItem{c.Items()[i]}, s.newRand())[0]

	similar, err := s.Recommend(ctx, name, similarLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("similar products: %w", err)
	}
	return &product, similar.Recommendations, nil
}

// Suggest returns product names matching a search prefix or fragment.
func (s *Service) Suggest(q string) []string {
	return s.products.Load().Suggest(q)
}

// Wishlist returns the decorated catalog items on the user's wishlist.
func (s *Service) Wishlist(ctx context.Context, userID int64) ([]domain.Product, error) {
	names, err := s.store.ListWishlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	return catalog.Decorate(s.products.Load().Named(names), s.newRand()), nil
}

// ToggleWishlist adds or removes name and reports whether it was added.
func (s *Service) ToggleWishlist(ctx context.Context, userID int64, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	}
	added, err := s.store.ToggleWishlist(ctx, userID, name)
	if err != nil {
		return false, fmt.Errorf("toggle wishlist: %w", err)
	}
	return added, nil
}

// IsWishlisted reports whether name is on the user's wishlist.
func (s *Service) IsWishlisted(ctx context.Context, userID int64, name string) (bool, error) {
	names, err := s.store.ListWishlist(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("fetch wishlist: %w", err)
	}
	return slices.Contains(names, name), nil
}
