package router

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/actuallystonmai/shopwiz/internal/catalog"
	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/handler"
	"github.com/actuallystonmai/shopwiz/internal/model"
	"github.com/actuallystonmai/shopwiz/internal/repository/sqlite"
	"github.com/actuallystonmai/shopwiz/internal/service"
	"github.com/actuallystonmai/shopwiz/internal/session"
	"github.com/goccy/go-json"
)

func setup(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	items := []domain.CatalogItem{
		{Name: "Matte Lipstick", Brand: "Glow", Tags: "lipstick matte red", Rating: 4.1},
		{Name: "Gloss Lipstick", Brand: "Glow", Tags: "lipstick gloss pink", Rating: 4.8},
		{Name: "Argan Shampoo", Brand: "Hairy", Tags: "shampoo hair argan", Rating: 3.9},
		{Name: "Hair Oil 50ml/1.7oz", Brand: "Hairy", Tags: "oil hair argan", Rating: 4.0},
	}
	source := func() (*catalog.Catalog, *catalog.Catalog, error) {
		return catalog.New(items), nil, nil
	}
	svc, err := service.NewService(store, model.NewRecommender(), source,
		service.WithFastHashing(),
		service.WithRand(func() *rand.Rand { return rand.New(rand.NewPCG(3, 4)) }),
	)
	if err != nil {
		t.Fatal(err)
	}

	sessions, err := session.NewManager("router-test-secret", time.Hour, false)
	if err != nil {
		t.Fatal(err)
	}
	h, err := handler.NewHandler(svc, sessions)
	if err != nil {
		t.Fatal(err)
	}
	return Setup(h, Options{CORSOrigins: []string{"*"}, Health: store.Ping})
}

func do(t *testing.T, srv http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSearch(t *testing.T) {
	srv := setup(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/search?q=LIP", nil))
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "Matte Lipstick" {
		t.Errorf("unexpected suggestions %v", names)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/search?q=l", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("short query should return [], got %s", rec.Body.String())
	}
}

func TestRecommendationsAPI(t *testing.T) {
	srv := setup(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/recommendations?name=Argan+Shampoo&limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handler.RecommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.TotalCount != 2 || resp.Recommendations[0].Name != "Hair Oil 50ml/1.7oz" {
		t.Errorf("unexpected response %+v", resp)
	}

	tests := []string{
		"/api/recommendations?name=Argan+Shampoo&limit=0",
		"/api/recommendations?name=Argan+Shampoo&limit=abc",
		"/api/recommendations",
	}
	for _, target := range tests {
		if rec := do(t, srv, httptest.NewRequest(http.MethodGet, target, nil)); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/recommendations?name=Nothing", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total_count":0`) {
		t.Errorf("unknown product should be an empty 200, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRecommendationsPage(t *testing.T) {
	srv := setup(t)

	rec := do(t, srv, postForm("/recommendations", url.Values{"prod": {"Matte Lipstick"}, "nbr": {"-2"}}))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Gloss Lipstick") {
		t.Errorf("expected recommendations, got %d", rec.Code)
	}

	rec = do(t, srv, postForm("/recommendations", url.Values{"prod": {"Missing"}}))
	if !strings.Contains(rec.Body.String(), "No recommendations found for") {
		t.Errorf("expected no-match message, got %s", rec.Body.String())
	}
}

func TestProductDetail(t *testing.T) {
	srv := setup(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/product/Hair%20Oil%2050ml%2F1.7oz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Argan Shampoo") {
		t.Errorf("expected detail page with similar products, got %d", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/product/Unknown", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/products" {
		t.Errorf("expected redirect to /products, got %d %s", rec.Code, rec.Header().Get("Location"))
	}

	// the flash survives the redirect
	var flash *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "shopwiz_flash" {
			flash = c
		}
	}
	if flash == nil {
		t.Fatal("expected flash cookie")
	}
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/products", nil), flash)
	if !strings.Contains(rec.Body.String(), "Product not found.") {
		t.Error("flash message not rendered")
	}
}

func TestPages(t *testing.T) {
	srv := setup(t)
	for _, target := range []string{"/", "/index", "/products?page=2&sort=rating", "/products?category=hair", "/login", "/signup", "/recommendations"} {
		if rec := do(t, srv, httptest.NewRequest(http.MethodGet, target, nil)); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", target, rec.Code)
		}
	}

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/main", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/recommendations" {
		t.Errorf("unexpected /main response %d", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health: %d", rec.Code)
	}
}

func TestWishlistFlow(t *testing.T) {
	srv := setup(t)

	toggle := func(cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/wishlist/toggle", strings.NewReader(`{"name":"Argan Shampoo"}`))
		req.Header.Set("Content-Type", "application/json")
		return do(t, srv, req, cookies...)
	}

	rec := toggle()
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "login_required") {
		t.Errorf("expected 401 login_required, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/wishlist", nil)); rec.Code != http.StatusSeeOther {
		t.Errorf("expected redirect to login, got %d", rec.Code)
	}

	rec = do(t, srv, postForm("/signup", url.Values{
		"username": {"ada"}, "email": {"ada@example.com"}, "password": {"lovelace1"},
	}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("signup: expected 303, got %d %s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)

	if rec := toggle(cookie); !strings.Contains(rec.Body.String(), `"added"`) {
		t.Errorf("expected added, got %s", rec.Body.String())
	}
	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/wishlist", nil), cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Argan Shampoo") {
		t.Errorf("wishlist page missing item: %d", rec.Code)
	}
	if rec := toggle(cookie); !strings.Contains(rec.Body.String(), `"removed"`) {
		t.Errorf("expected removed, got %s", rec.Body.String())
	}
}

func TestProductDetailShowsWishlistState(t *testing.T) {
	srv := setup(t)
	page := func(cookies ...*http.Cookie) string {
		rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/product/Argan%20Shampoo", nil), cookies...)
		if rec.Code != http.StatusOK {
			t.Fatalf("product page: expected 200, got %d", rec.Code)
		}
		return rec.Body.String()
	}

	if body := page(); !strings.Contains(body, `aria-pressed="false"`) {
		t.Error("signed out visitor should see an inactive wishlist button")
	}

	rec := do(t, srv, postForm("/signup", url.Values{
		"username": {"grace"}, "email": {"grace@example.com"}, "password": {"hopper123"},
	}))
	cookie := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/wishlist/toggle", strings.NewReader(`{"name":"Argan Shampoo"}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := do(t, srv, req, cookie); !strings.Contains(rec.Body.String(), `"added"`) {
		t.Fatalf("expected added, got %s", rec.Body.String())
	}

	body := page(cookie)
	if !strings.Contains(body, `wishlist-btn active`) || !strings.Contains(body, `aria-pressed="true"`) {
		t.Error("wishlisted product should render an active wishlist button")
	}
}

func TestLogin(t *testing.T) {
	srv := setup(t)

	do(t, srv, postForm("/signup", url.Values{
		"username": {"ada"}, "email": {"ada@example.com"}, "password": {"lovelace1"},
	}))

	rec := do(t, srv, postForm("/signup", url.Values{
		"username": {"ada"}, "email": {"other@example.com"}, "password": {"lovelace1"},
	}))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", rec.Code)
	}

	rec = do(t, srv, postForm("/signup", url.Values{
		"username": {"bob"}, "email": {"not-an-email"}, "password": {"lovelace1"},
	}))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "valid email") {
		t.Errorf("invalid email: got %d", rec.Code)
	}

	rec = do(t, srv, postForm("/login", url.Values{"username": {"ada"}, "password": {"wrong"}}))
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Errorf("wrong password: got %d", rec.Code)
	}

	rec = do(t, srv, postForm("/login", url.Values{"username": {"ada"}, "password": {"lovelace1"}}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	if !strings.Contains(rec.Body.String(), "Hi, ada") {
		t.Error("expected signed-in nav")
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/logout", nil), cookie)
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout should clear the session cookie")
	}
}

func TestHealthUnavailable(t *testing.T) {
	h := healthCheck(func(context.Context) error { return errors.New("db down") })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
