package seeds

import (
	"context"
	"testing"

	"github.com/actuallystonmai/shopwiz/internal/catalog"
	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/model"
	"github.com/actuallystonmai/shopwiz/internal/repository/sqlite"
	"github.com/actuallystonmai/shopwiz/internal/service"
)

func TestSetupIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	var items []domain.CatalogItem
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		items = append(items, domain.CatalogItem{Name: n, Tags: "tag " + n})
	}
	source := func() (*catalog.Catalog, *catalog.Catalog, error) { return catalog.New(items), nil, nil }
	svc, err := service.NewService(store, model.NewRecommender(), source, service.WithFastHashing())
	if err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if err := Setup(ctx, svc); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	user, err := svc.Login(ctx, DemoUsername, DemoPassword)
	if err != nil {
		t.Fatalf("demo login failed: %v", err)
	}
	wishlist, err := svc.Wishlist(ctx, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(wishlist) != demoWishlistSize {
		t.Errorf("expected %d wishlist items, got %d", demoWishlistSize, len(wishlist))
	}
}
