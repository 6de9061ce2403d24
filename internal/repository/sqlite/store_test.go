package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/actuallystonmai/shopwiz/internal/domain"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUsers(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	u := &domain.User{Username: "ada", Email: "ada@example.com", PasswordHash: "h"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID != 1 || u.CreatedAt.IsZero() {
		t.Errorf("expected id and created_at, got %+v", u)
	}

	err := s.CreateUser(ctx, &domain.User{Username: "bob", Email: "ada@example.com", PasswordHash: "h"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Errorf("expected ErrUserExists on duplicate email, got %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "ada")
	if err != nil || got.Email != "ada@example.com" || got.PasswordHash != "h" {
		t.Errorf("unexpected user %+v, err %v", got, err)
	}
	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	tests := []struct {
		username, email string
		want            bool
	}{
		{"ada", "x@example.com", true},
		{"x", "ada@example.com", true},
		{"x", "y@example.com", false},
	}
	for _, tt := range tests {
		exists, err := s.UserExists(ctx, tt.username, tt.email)
		if err != nil || exists != tt.want {
			t.Errorf("UserExists(%s, %s) = %v, %v; want %v", tt.username, tt.email, exists, err, tt.want)
		}
	}
}

func TestWishlistToggle(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	u := &domain.User{Username: "ada", Email: "ada@example.com", PasswordHash: "h"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	for i, want := range []bool{true, false, true} {
		added, err := s.ToggleWishlist(ctx, u.ID, "Night Cream")
		if err != nil {
			t.Fatalf("toggle %d failed: %v", i, err)
		}
		if added != want {
			t.Errorf("toggle %d: added=%v, want %v", i, added, want)
		}
	}
	if _, err := s.ToggleWishlist(ctx, u.ID, "Argan Shampoo"); err != nil {
		t.Fatal(err)
	}

	names, err := s.ListWishlist(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := fmt.Sprint(names); got != "[Night Cream Argan Shampoo]" {
		t.Errorf("unexpected wishlist %s", got)
	}

	other, err := s.ListWishlist(ctx, 99)
	if err != nil || len(other) != 0 {
		t.Errorf("expected empty wishlist for unknown user, got %v %v", other, err)
	}
}
