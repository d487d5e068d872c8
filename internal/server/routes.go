package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.Metrics != nil {
		r.Use(s.Metrics.Instrument)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.healthHandler)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}
	r.With(s.requireAuth(true)).Get("/ws", s.websocketHandler)

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Handler)
		}
		r.Use(s.identify)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.signUpHandler)
			r.Post("/signin", s.signInHandler)
			r.Post("/refresh", s.refreshHandler)
			r.With(s.requireAuth(false)).Put("/password", s.changePasswordHandler)
			r.Get("/oauth/{provider}", s.oauthBeginHandler)
			r.Get("/oauth/{provider}/callback", s.oauthCallbackHandler)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", s.searchLocationsHandler)
			r.Get("/autocomplete", s.autocompleteHandler)
			r.Get("/recommendations", s.recommendationsHandler)
			r.Get("/{id}", s.getLocationHandler)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth(false))
				r.Get("/{id}/saved", s.isSavedHandler)
				r.Post("/{id}/save", s.saveLocationHandler)
				r.Delete("/{id}/save", s.unsaveLocationHandler)
			})
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(s.requireAuth(false))
			r.Get("/", s.myProfileHandler)
			r.Patch("/", s.updateProfileHandler)
			r.Post("/onboarding", s.onboardingHandler)
			r.Get("/saves", s.mySavesHandler)
			r.Get("/lists", s.myListsHandler)
			r.Get("/instagram/connect", s.instagramConnectHandler)
			r.Delete("/instagram", s.instagramDisconnectHandler)
		})

		r.Get("/instagram/callback", s.instagramCallbackHandler)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.userProfileHandler)
			r.Get("/lists", s.userListsHandler)
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/{id}", s.getListHandler)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth(false))
				r.Post("/", s.createListHandler)
				r.Post("/{id}/items", s.addListItemHandler)
				r.Delete("/{id}/items/{locationID}", s.removeListItemHandler)
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", s.listRequestsHandler)
			r.Get("/{id}", s.getRequestHandler)
			r.Get("/{id}/suggestions", s.listSuggestionsHandler)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth(false))
				r.Post("/", s.createRequestHandler)
				r.Patch("/{id}", s.updateRequestHandler)
				r.Post("/{id}/close", s.closeRequestHandler)
				r.Post("/{id}/suggestions", s.createSuggestionHandler)
				r.Get("/{id}/messages", s.listMessagesHandler)
			})
		})

		r.Route("/suggestions/{id}", func(r chi.Router) {
			r.Use(s.requireAuth(false))
			r.Put("/helpful", s.markHelpfulHandler)
			r.Put("/rating", s.rateSuggestionHandler)
			r.Post("/save", s.savePlaceHandler)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Use(s.requireAuth(false))
			r.Post("/", s.sendMessageHandler)
			r.Post("/{id}/read", s.markMessageReadHandler)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.requireAuth(false))
			r.Get("/", s.listNotificationsHandler)
			r.Post("/read-all", s.markAllNotificationsReadHandler)
			r.Post("/{id}/read", s.markNotificationReadHandler)
		})

		r.Route("/saved-places", func(r chi.Router) {
			r.Use(s.requireAuth(false))
			r.Get("/", s.listSavedPlacesHandler)
			r.Delete("/{id}", s.removeSavedPlaceHandler)
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.DB.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}
