// chemviz API server. Serves the dataset upload and analytics endpoints,
// with a separate ops listener for health checks and profiling.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"chemviz/adapters/memory"
	"chemviz/adapters/postgres"
	"chemviz/internal"
	"chemviz/internal/config"
	"chemviz/internal/ops"
	"chemviz/ports"
	"chemviz/ui"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger().WithComponent("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error: %v", err)
		os.Exit(1)
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("store initialization failed: %v", err)
		os.Exit(1)
	}

	apiServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: ui.NewServer(store, cfg, internal.DefaultLogger).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("API server listening on :%s", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var opsServer *http.Server
	if cfg.Ops.Enabled {
		opsServer = &http.Server{
			Addr:    ":" + cfg.Ops.Port,
			Handler: ops.NewServer(store).Handler(),
		}
		g.Go(func() error {
			logger.Info("ops server listening on :%s", cfg.Ops.Port)
			if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if opsServer != nil {
			_ = opsServer.Shutdown(shutdownCtx)
		}
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error: %v", err)
		os.Exit(1)
	}
}

// buildStore selects the dataset store: PostgreSQL when DATABASE_URL is
// set, in-memory otherwise.
func buildStore(cfg *config.Config, logger *internal.Logger) (ports.DatasetStore, error) {
	if cfg.Database.URL == "" {
		logger.Info("DATABASE_URL not set, using in-memory dataset store")
		return memory.NewDatasetStore(), nil
	}

	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	logger.Info("connected to postgres")
	return postgres.NewDatasetStore(db), nil
}
