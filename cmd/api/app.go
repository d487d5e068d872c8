package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Tomlord1122/buyareco-backend/internal/auth"
	"github.com/Tomlord1122/buyareco-backend/internal/cache"
	"github.com/Tomlord1122/buyareco-backend/internal/config"
	"github.com/Tomlord1122/buyareco-backend/internal/database"
	"github.com/Tomlord1122/buyareco-backend/internal/instagram"
	"github.com/Tomlord1122/buyareco-backend/internal/jobs"
	"github.com/Tomlord1122/buyareco-backend/internal/logging"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/realtime"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
	"github.com/Tomlord1122/buyareco-backend/internal/server"
	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

type app struct {
	cfg    *config.Config
	logger *log.Logger
	db     database.Service
}

// newApp loads configuration, builds the logger and opens the database.
func newApp(_ context.Context, cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)
	log.SetDefault(logger)

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db}, nil
}

// wire builds the services and the HTTP server, and starts the scheduler.
func (a *app) wire(ctx context.Context) (*http.Server, resources, error) {
	m := metrics.New()
	hub := realtime.NewHub(a.logger.WithPrefix("realtime"), realtime.WithConnectionGauge(m.WSConnections))
	c := cache.New(ctx, a.cfg.Redis, a.logger)
	repos := repository.NewGorm(a.db.GetDB())

	tokens := auth.NewTokenManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.AccessTTL.Duration, a.cfg.Auth.RefreshTTL.Duration)
	providers := auth.NewProviders(a.cfg.OAuth)
	if names := providers.Names(); len(names) > 0 {
		a.logger.Info("OAuth providers enabled", "providers", names)
	}
	notifier := service.NewNotifier(repos.Notifications, hub, a.logger, m)

	// A nil *instagram.Client must not reach the interface, or the service
	// would treat it as configured.
	var igClient service.InstagramClient
	if cl := instagram.New(a.cfg.Instagram, strings.TrimRight(a.cfg.OAuth.RedirectBaseURL, "/")+"/instagram/callback"); cl != nil {
		igClient = cl
		a.logger.Info("Instagram linking enabled")
	}
	igSvc := service.NewInstagramService(repos.Users, igClient, tokens, a.logger, m)

	scheduler := jobs.New(a.logger, m)
	fail := func(err error) (*http.Server, resources, error) {
		hub.Close()
		_ = c.Close()
		return nil, resources{}, err
	}
	if spec := a.cfg.Jobs.ExpireRequests; spec != "" {
		if err := scheduler.AddExpireRequests(spec, repos.Requests); err != nil {
			return fail(err)
		}
	}
	if spec := a.cfg.Jobs.RefreshInstagram; spec != "" && igClient != nil {
		if err := scheduler.AddRefreshInstagram(spec, igSvc); err != nil {
			return fail(err)
		}
	}
	scheduler.Start()

	apiServer := server.NewServer(a.cfg.Server, server.Deps{
		DB:            a.db,
		Auth:          service.NewAuthService(repos.Users, tokens, providers, a.logger, m),
		Locations:     service.NewLocationService(repos.Locations, c, a.logger, m),
		Saves:         service.NewSaveService(repos.Saves, repos.Locations, a.logger),
		Lists:         service.NewListService(repos.Lists, repos.Locations),
		Users:         service.NewUserService(repos.Users),
		Requests:      service.NewRequestService(repos.Requests, a.logger, m),
		Suggestions:   service.NewSuggestionService(repos.Suggestions, repos.Requests, repos.Users, notifier, a.logger, m),
		Messages:      service.NewMessageService(repos.Messages, repos.Requests, repos.Users, notifier, m),
		Notifications: service.NewNotificationService(repos.Notifications),
		SavedPlaces:   service.NewSavedPlaceService(repos.SavedPlaces, repos.Suggestions),
		Instagram:     igSvc,
		Hub:           hub,
		Metrics:       m,
		Logger:        a.logger,
	})

	return apiServer, resources{jobs: scheduler, hub: hub, cache: c, db: a.db}, nil
}
