package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Tomlord1122/buyareco-backend/internal/config"
	"github.com/Tomlord1122/buyareco-backend/internal/database"
	"github.com/Tomlord1122/buyareco-backend/internal/metrics"
	"github.com/Tomlord1122/buyareco-backend/internal/realtime"
	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	DB            database.Service
	Auth          service.AuthService
	Locations     service.LocationService
	Saves         service.SaveService
	Lists         service.ListService
	Users         service.UserService
	Requests      service.RequestService
	Suggestions   service.SuggestionService
	Messages      service.MessageService
	Notifications service.NotificationService
	SavedPlaces   service.SavedPlaceService
	Instagram     service.InstagramService
	Hub           *realtime.Hub
	Metrics       *metrics.Metrics
	Logger        *log.Logger
}

type Server struct {
	port    int
	cfg     config.ServerConfig
	limiter *rateLimiter
	Deps
}

func newServer(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	s := &Server{
		port: cfg.Port,
		cfg:  cfg,
		Deps: deps,
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, deps.Logger)
	}
	return s
}

func NewServer(cfg config.ServerConfig, deps Deps) *http.Server {
	appServer := newServer(cfg, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
