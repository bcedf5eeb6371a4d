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

	"github.com/ewilliams-labs/songscope/internal/adapters/csvfile"
	"github.com/ewilliams-labs/songscope/internal/adapters/postgres"
	"github.com/ewilliams-labs/songscope/internal/adapters/rest"
	"github.com/ewilliams-labs/songscope/internal/adapters/sqlite"
	"github.com/ewilliams-labs/songscope/internal/config"
	"github.com/ewilliams-labs/songscope/internal/core/ports"
	"github.com/ewilliams-labs/songscope/internal/core/services"
	"github.com/ewilliams-labs/songscope/internal/logging"
)

func main() {
	// 1. Configuration (Environment Variables)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	// 2. Initialize the "Driven" Adapter (The Dataset Source)
	source, err := newSource(cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize dataset source")
	}

	// 3. Initialize Core Logic
	catalog := services.NewCatalog(source, log)
	svc := services.NewExplorer(catalog, cfg.Dataset.Path, cfg.Dataset.TopN, log)

	// The dataset is read once up front; the server does not start without it.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	ds, err := svc.Dataset(loadCtx)
	cancelLoad()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Dataset.Driver).Msg("failed to load dataset")
	}

	// 4. Initialize the "Driving" Adapter (The Interface)
	handler := rest.NewHandler(svc,
		rest.WithLogger(log),
		rest.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)

	// 5. Start the Server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	log.Info().
		Str("addr", srv.Addr).
		Str("driver", cfg.Dataset.Driver).
		Int("rows", ds.Len()).
		Msg("Songscope API is running")

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}
}

// newSource picks the dataset adapter for the configured driver.
func newSource(cfg config.DatasetConfig) (ports.DatasetSource, error) {
	switch cfg.Driver {
	case config.DriverCSV:
		return csvfile.NewLoader(), nil
	case config.DriverSQLite:
		return sqlite.NewAdapter(cfg.Table), nil
	case config.DriverPostgres:
		return postgres.NewAdapter(cfg.Table), nil
	default:
		return nil, fmt.Errorf("unknown dataset driver: %s", cfg.Driver)
	}
}
