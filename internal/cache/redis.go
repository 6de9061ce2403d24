package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultTTL = 10 * time.Minute
	keyPrefix  = "rec:"
)

// Cache stores ranked recommendations per catalog snapshot. Keys carry the
// catalog hash, so entries for a replaced catalog are never read again and
// simply expire. Redis calls go through a circuit breaker so an unreachable
// Redis degrades to cache misses instead of slow requests.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[string]
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:    "redis-recommendations",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, redis.Nil)
			},
		}),
	}
}

// Connect parses a redis:// URL and returns a client.
func Connect(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func buildKey(catalogHash uint64, name string, limit int) string {
	return fmt.Sprintf("%s%016x:limit:%d:%s", keyPrefix, catalogHash, limit, name)
}

// cachedItem is the stored form of a ScoredItem. CatalogItem hides Tags from
// JSON, so the cache keeps its own copy of every field.
type cachedItem struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Tags        string  `json:"tags"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	ImageURL    string  `json:"image_url,omitempty"`
	Score       float64 `json:"score"`
}

func encode(recs []domain.ScoredItem) ([]byte, error) {
	out := make([]cachedItem, len(recs))
	for i, r := range recs {
		out[i] = cachedItem{
			Name:        r.Item.Name,
			Brand:       r.Item.Brand,
			Tags:        r.Item.Tags,
			Rating:      r.Item.Rating,
			ReviewCount: r.Item.ReviewCount,
			ImageURL:    r.Item.ImageURL,
			Score:       r.Score,
		}
	}
	return json.Marshal(out)
}

func decode(data []byte) ([]domain.ScoredItem, error) {
	var in []cachedItem
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	recs := make([]domain.ScoredItem, len(in))
	for i, c := range in {
		recs[i] = domain.ScoredItem{
			Item: domain.CatalogItem{
				Name:        c.Name,
				Brand:       c.Brand,
				Tags:        c.Tags,
				Rating:      c.Rating,
				ReviewCount: c.ReviewCount,
				ImageURL:    c.ImageURL,
			},
			Score: c.Score,
		}
	}
	return recs, nil
}

// Get recommendations from cache; found is false on a miss
func (c *Cache) Get(ctx context.Context, catalogHash uint64, name string, limit int) ([]domain.ScoredItem, bool, error) {
	key := buildKey(catalogHash, name, limit)
	val, err := c.breaker.Execute(func() (string, error) {
		return c.client.Get(ctx, key).Result()
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get recommendations from cache: %w", err)
	}

	recs, err := decode([]byte(val))
	if err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal recommendations %s: %w", key, err)
	}
	return recs, true, nil
}

// Store recommendations in cache
func (c *Cache) Set(ctx context.Context, catalogHash uint64, name string, limit int, recs []domain.ScoredItem) error {
	key := buildKey(catalogHash, name, limit)
	val, err := encode(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = c.breaker.Execute(func() (string, error) {
		return "", c.client.Set(ctx, key, val, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set recommendations in cache: %w", err)
	}
	return nil
}

// Clear cached recommendations for every catalog except keep: used after a
// catalog reload
func (c *Cache) ClearStale(ctx context.Context, keep uint64) error {
	current := fmt.Sprintf("%s%016x:", keyPrefix, keep)
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if len(key) >= len(current) && key[:len(current)] == current {
			continue
		}
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", key, err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
