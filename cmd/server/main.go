package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/shopwiz/internal/cache"
	"github.com/actuallystonmai/shopwiz/internal/catalog"
	"github.com/actuallystonmai/shopwiz/internal/config"
	"github.com/actuallystonmai/shopwiz/internal/handler"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/actuallystonmai/shopwiz/internal/model"
	"github.com/actuallystonmai/shopwiz/internal/repository"
	"github.com/actuallystonmai/shopwiz/internal/repository/sqlite"
	"github.com/actuallystonmai/shopwiz/internal/router"
	"github.com/actuallystonmai/shopwiz/internal/service"
	"github.com/actuallystonmai/shopwiz/internal/session"
	"github.com/actuallystonmai/shopwiz/seeds"
)

// store is what main needs from either backend.
type store interface {
	service.Store
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------------ Storage ---------------
	db, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to open store")
	}
	defer db.Close()

	logging.Info().Str("driver", cfg.DatabaseDriver).Msg("connected to database")

	// ------------ Catalog + Service ---------------
	source := func() (*catalog.Catalog, *catalog.Catalog, error) {
		products, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.TrendingPath == "" {
			return products, nil, nil
		}
		trending, err := catalog.LoadFile(cfg.TrendingPath)
		if err != nil {
			return nil, nil, err
		}
		return products, trending, nil
	}

	var opts []service.Option
	if cfg.RedisURL != "" {
		client, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to configure redis")
		}
		recCache := cache.NewCache(client, cfg.CacheTTL)
		defer recCache.Close()
		if err := recCache.Ping(ctx); err != nil {
			logging.Warn().Err(err).Msg("redis unreachable, recommendations will be computed per request")
		}
		opts = append(opts, service.WithCache(recCache))
	}

	svc, err := service.NewService(db, model.NewRecommender(), source, opts...)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load catalog")
	}

	// ------------ Setup Seed Data ---------------
	if cfg.SeedDemo {
		if err := seeds.Setup(ctx, svc); err != nil {
			logging.Fatal().Err(err).Msg("failed to seed")
		}
	}

	go reloadOnHangup(ctx, svc)

	// ---------------- Server --------------------
	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to configure sessions")
	}
	h, err := handler.NewHandler(svc, sessions)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build handlers")
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(h, router.Options{
			CORSOrigins:    cfg.CORSOrigins,
			LoginRateLimit: cfg.LoginRateLimit,
			Health:         db.Ping,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logging.Info().Str("addr", srv.Addr).Msg("server running")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal().Err(err).Msg("server failed")
	}
	logging.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (store, error) {
	if cfg.DatabaseDriver == config.DriverSQLite {
		return sqlite.Open(ctx, cfg.DatabaseURL)
	}

	pool, err := repository.Connect(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	if err != nil {
		return nil, err
	}
	repo := repository.New(pool)

	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := migrate(ctx, repo, "migrations/create_tables.down.sql"); err != nil {
			return nil, err
		}
		logging.Info().Msg("migrations dropped")
		os.Exit(0)
	}
	if err := waitForDB(ctx, repo); err != nil {
		return nil, err
	}
	if err := migrate(ctx, repo, "migrations/create_tables.up.sql"); err != nil {
		return nil, err
	}
	return repo, nil
}

func waitForDB(ctx context.Context, db interface{ Ping(context.Context) error }) error {
	for i := 0; i < 30; i++ {
		if err := db.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Int("attempt", i+1).Msg("waiting for database... (of 30)")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrate(ctx context.Context, repo *repository.Repository, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if err := repo.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", path, err)
	}
	logging.Info().Str("file", path).Msg("migration applied")
	return nil
}

// reloadOnHangup swaps in a fresh catalog on SIGHUP.
func reloadOnHangup(ctx context.Context, svc *service.Service) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := svc.ReloadCatalog(ctx); err != nil {
				logging.Error().Err(err).Msg("catalog reload failed")
				continue
			}
			logging.Info().Int("items", svc.Catalog().Len()).Msg("catalog reloaded")
		}
	}
}
