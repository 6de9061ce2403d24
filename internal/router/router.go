package router

import (
	"context"
	"net/http"
	"time"

	"github.com/actuallystonmai/shopwiz/internal/handler"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	CORSOrigins []string
	// LoginRateLimit caps login and signup posts per IP per minute; 0 disables it.
	LoginRateLimit int
	// Health reports backing store readiness.
	Health func(ctx context.Context) error
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	authLimit := func(next http.Handler) http.Handler { return next }
	if opts.LoginRateLimit > 0 {
		authLimit = httprate.LimitByIP(opts.LoginRateLimit, time.Minute)
	}

	// Pages
	r.Get("/", h.Index)
	r.Get("/index", h.Index)
	r.Get("/products", h.Products)
	r.Get("/product/*", h.ProductDetail)
	r.Get("/recommendations", h.Recommendations)
	r.Post("/recommendations", h.Recommendations)
	r.Get("/wishlist", h.Wishlist)
	r.Get("/login", h.Login)
	r.With(authLimit).Post("/login", h.Login)
	r.Get("/signup", h.Signup)
	r.With(authLimit).Post("/signup", h.Signup)
	r.Get("/logout", h.Logout)
	r.Get("/main", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/recommendations", http.StatusFound)
	})
	r.Handle("/static/*", handler.Static())

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Get("/search", h.Search)
		r.Get("/recommendations", h.GetRecommendations)
		r.Post("/wishlist/toggle", h.ToggleWishlist)
	})

	r.Get("/health", healthCheck(opts.Health))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthCheck(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(r.Context()); err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Msg("[router] health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	}
}
