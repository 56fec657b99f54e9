// Command cricket-server runs the fantasy cricket team builder backend.
//
// Usage:
//
//	cricket-server serve
//	cricket-server simulate --bet India --tick 200ms --seed 7
//	cricket-server seed-catalog
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

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/fantasy-cricket-backend/internal/catalog"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/config"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/db"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/engine"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/httpapi"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/hub"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/lobby"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/logging"
	"github.com/DoyleJ11/fantasy-cricket-backend/internal/scheduler"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cricket-server",
		Short:        "Fantasy cricket team builder backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(serveCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(seedCatalogCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	players, database, err := loadCatalog(ctx, cfg, log)
	if err != nil {
		log.Error("catalog unavailable", zap.Error(err))
		return err
	}
	if database != nil {
		defer database.Close()
	}

	rules := engine.DefaultRules()
	rules.EnforceQuota = !cfg.Match.QuotaAdvisory

	h := hub.NewHub(ctx,
		hub.WithLogger(log),
		hub.WithLobbyOptions(lobby.WithTickInterval(cfg.Match.TickInterval)),
	)

	sched, err := scheduler.NewScheduler(h, cfg.Session.TTL, cfg.Session.SweepInterval, log)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn("scheduler shutdown", zap.Error(err))
		}
	}()

	deps := httpapi.Deps{
		Hub:       h,
		Players:   players,
		Rules:     rules,
		AssetsDir: cfg.HTTP.AssetsDir,
		Logger:    log,
	}
	if database != nil {
		deps.DB = database
	}
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpapi.SetupRoutes(deps, httpapi.RouterOptions{
			CORSAllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			RateLimitRequests: cfg.HTTP.RateLimitRequests,
			RateLimitWindow:   cfg.HTTP.RateLimitWindow,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.Int("players", len(players)),
			zap.Bool("quota_enforced", rules.EnforceQuota))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

// loadCatalog picks the player source. Without DATABASE_URL the built-in
// roster is served and the returned DB is nil.
func loadCatalog(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]engine.Player, *db.DB, error) {
	src, database, err := openSource(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	players, err := loadPlayers(ctx, src, log)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, nil, err
	}
	return players, database, nil
}

func openSource(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalog.Source, *db.DB, error) {
	if cfg.Database.URL == "" {
		log.Info("serving built-in roster")
		return catalog.StaticSource{}, nil, nil
	}

	database, err := db.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	store := catalog.NewStore(database.Gorm, log)
	if err := store.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}
	return store, database, nil
}

// loadPlayers falls back to the built-in roster when src has no players.
func loadPlayers(ctx context.Context, src catalog.Source, log *zap.Logger) ([]engine.Player, error) {
	players, err := src.Players(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	if len(players) == 0 {
		log.Warn("catalog is empty, serving built-in roster; run seed-catalog to fill it")
		return catalog.Static(), nil
	}
	log.Info("loaded roster", zap.Int("players", len(players)))
	return players, nil
}
