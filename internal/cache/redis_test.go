package cache

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/redis/go-redis/v9"
)

func scoredFixture() []domain.ScoredItem {
	return []domain.ScoredItem{
		{Item: domain.CatalogItem{Name: "Night Cream", Brand: "Lumi", Tags: "cream skin night", Rating: 4.5, ReviewCount: 120, ImageURL: "https://img.example/n.png"}, Score: 0.8123456789},
		{Item: domain.CatalogItem{Name: "Day Cream", Brand: "Lumi", Tags: "cream skin day spf"}, Score: 0.4},
	}
}

func TestBuildKey(t *testing.T) {
	key := buildKey(0xabc, "Night Cream", 8)
	if key != "rec:0000000000000abc:limit:8:Night Cream" {
		t.Errorf("unexpected key %s", key)
	}
	if buildKey(1, "A", 8) == buildKey(2, "A", 8) {
		t.Error("catalog hash must be part of the key")
	}
}

func TestEncodeKeepsEveryField(t *testing.T) {
	want := scoredFixture()
	data, err := encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Errorf("cached items differ from catalog items:\n%+v\n%+v", got, want)
	}
}

func TestBreakerOpensWhenRedisIsDown(t *testing.T) {
	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewCache(client, time.Minute)
	defer c.Close()

	ctx := context.Background()
	for range 5 {
		if _, _, err := c.Get(ctx, 1, "A", 8); err == nil {
			t.Fatal("expected connection error")
		}
	}

	_, found, err := c.Get(ctx, 1, "A", 8)
	if found || err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Errorf("expected open breaker, got found=%v err=%v", found, err)
	}
}
