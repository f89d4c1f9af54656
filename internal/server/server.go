// Package server wires the application together: database, services,
// handlers, middleware and routes. main stays minimal; everything is
// assembled here so the whole chain can be built in tests too.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmcervs/donatec/internal/auth"
	"github.com/dmcervs/donatec/internal/config"
	"github.com/dmcervs/donatec/internal/handler"
	"github.com/dmcervs/donatec/internal/middleware"
	sqliteRepo "github.com/dmcervs/donatec/internal/repository/sqlite"
	"github.com/dmcervs/donatec/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown, the database connection in particular.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain. Each layer receives only what
// it needs: services get repository interfaces, handlers get services.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	google := auth.NewGoogleProvider(s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleCallbackURL)

	var notifier service.Notifier = service.NopNotifier()
	if s.cfg.ResendAPIKey != "" || s.cfg.IsDev() {
		notifier = service.NewEmailService(s.cfg.ResendAPIKey, s.cfg.EmailFrom, s.cfg.IsDev(), s.logger)
	}

	authService := service.NewAuthService(
		s.db.Users(), tokens, passwords, notifier, s.cfg.InstitutionalDomain, s.logger)
	donationService := service.NewDonationService(s.db.Donations(), s.cfg.AdminEmail, s.logger)
	requestService := service.NewRequestService(
		s.db.Requests(), s.db.Donations(), s.db.Users(), notifier, s.logger)
	aiService := service.NewAIService(s.cfg.GeminiAPIKey, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.cfg.FrontendURL, s.logger)
	donationHandler := handler.NewDonationHandler(donationService, s.logger)
	requestHandler := handler.NewRequestHandler(requestService, s.logger)
	aiHandler := handler.NewAIHandler(aiService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.cfg.AllowedOrigins))

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/google", authHandler.HandleGoogleLogin)
		r.Get("/google/callback", authHandler.HandleGoogleCallback)
		r.Post("/google/token", authHandler.HandleGoogleToken)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
		})
	})

	s.router.Route("/donations", func(r chi.Router) {
		r.Get("/", donationHandler.HandleList)
		r.Get("/{id}", donationHandler.HandleGet)
		r.Get("/usuario/{userId}", donationHandler.HandleListByUser)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/", donationHandler.HandleCreate)
			r.Put("/{id}", donationHandler.HandleUpdate)
			r.Patch("/{id}/estado", donationHandler.HandleSetState)
			r.Delete("/{id}", donationHandler.HandleDelete)
			r.Delete("/", donationHandler.HandleDeleteAll)
		})
	})

	s.router.Route("/requests", func(r chi.Router) {
		r.Get("/donacion/{donationId}", requestHandler.HandleListForDonation)
		r.Get("/usuario/{userId}", requestHandler.HandleListForUser)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/{donationId}", requestHandler.HandleCreate)
			r.Patch("/{id}/estado", requestHandler.HandleSetState)
			r.Post("/{id}/entregada", requestHandler.HandleMarkFulfilled)
		})
	})

	s.router.Post("/ai/improve-description", aiHandler.HandleImproveDescription)

	return nil
}

// Start runs the server until a signal arrives, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
			slog.String("domain", s.cfg.InstitutionalDomain),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
