package seeds

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/actuallystonmai/shopwiz/internal/service"
)

const (
	DemoUsername = "demo"
	DemoEmail    = "demo@shopwiz.local"
	DemoPassword = "demo-password"

	demoWishlistSize = 5
)

// Setup creates the demo account with a few wishlist items. It is a no-op
// when the account already exists.
func Setup(ctx context.Context, svc *service.Service) error {
	rng := rand.New(rand.NewPCG(42, 42))

	logging.Info().Msg("[seed] creating demo user")
	user, err := svc.Signup(ctx, DemoUsername, DemoEmail, DemoPassword)
	if errors.Is(err, domain.ErrUserExists) {
		logging.Info().Msg("[seed] demo user already exists, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	logging.Info().Msg("[seed] filling demo wishlist")
	for _, item := range svc.Catalog().Sample(rng, demoWishlistSize) {
		if _, err := svc.ToggleWishlist(ctx, user.ID, item.Name); err != nil {
			return fmt.Errorf("seed wishlist: %w", err)
		}
	}

	logging.Info().Msg("[seed] seeding complete")
	return nil
}
