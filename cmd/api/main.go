package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Tomlord1122/buyareco-backend/internal/cache"
	"github.com/Tomlord1122/buyareco-backend/internal/database"
	"github.com/Tomlord1122/buyareco-backend/internal/jobs"
	"github.com/Tomlord1122/buyareco-backend/internal/realtime"
)

// resources are released in order once the HTTP server has drained.
type resources struct {
	jobs  *jobs.Scheduler
	hub   *realtime.Hub
	cache cache.Cache
	db    database.Service
}

// release stops background work and closes every held resource. Nil fields
// are skipped.
func (res resources) release(ctx context.Context, logger *log.Logger) {
	if res.jobs != nil {
		res.jobs.Stop(ctx)
	}
	if res.hub != nil {
		res.hub.Close()
	}
	if res.cache != nil {
		if err := res.cache.Close(); err != nil {
			logger.Warn("Error closing cache", "err", err)
		}
	}
	if res.db != nil {
		logger.Info("Closing database connection pool...")
		if err := res.db.Close(); err != nil {
			logger.Error("Error closing database connection pool", "err", err)
		} else {
			logger.Info("Database connection pool closed.")
		}
	}
}

func gracefulShutdown(apiServer *http.Server, res resources, logger *log.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		logger.Error("Server forced to shutdown", "err", err)
	}
	res.release(ctxTimeout, logger)

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	app := &cli.Command{
		Name:           "buyareco",
		Usage:          "Travel recommendation API: requests, suggestions and curated places",
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional TOML configuration file",
				Sources: cli.EnvVars("BUYARECO_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, realtime hub and background jobs",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrate,
			},
			{
				Name:      "seed",
				Usage:     "Load locations from a JSON file",
				ArgsUsage: "<file>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Action: seed,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal("application error", "err", err)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}

	// Schema creation runs at startup, as a dedicated migrate command does.
	a.logger.Info("Running database auto-migration...")
	if err := a.db.Migrate(ctx); err != nil {
		_ = a.db.Close()
		return err
	}

	apiServer, res, err := a.wire(ctx)
	if err != nil {
		_ = a.db.Close()
		return err
	}

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, res, a.logger, done)

	a.logger.Info("Starting server", "addr", apiServer.Addr)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res.release(ctxTimeout, a.logger)
		return err
	}

	<-done
	a.logger.Info("Graceful shutdown complete.")
	return nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()

	if err := a.db.Migrate(ctx); err != nil {
		return err
	}
	a.logger.Info("Database schema is up to date")
	return nil
}
