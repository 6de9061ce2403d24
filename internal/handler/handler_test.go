package handler

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 30, "short"},
		{"Argan Oil Shampoo", 5, "Argan..."},
		{"Crème brûlée", 5, "Crème..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestProductURL(t *testing.T) {
	if got := productURL("Hair Oil 50ml/1.7oz"); got != "/product/Hair%20Oil%2050ml%2F1.7oz" {
		t.Errorf("unexpected url %s", got)
	}
}

func TestFormError(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	tests := []struct {
		form signupForm
		want string
	}{
		{signupForm{Email: "a@b.co", Password: "12345678"}, "Please enter your username."},
		{signupForm{Username: "ada", Email: "nope", Password: "12345678"}, "Please enter a valid email address."},
		{signupForm{Username: "ada", Email: "a@b.co", Password: "short"}, "Your password must be at least 8 characters."},
	}
	for _, tt := range tests {
		if got := formError(v.Struct(tt.form)); got != tt.want {
			t.Errorf("formError = %q, want %q", got, tt.want)
		}
	}
}
