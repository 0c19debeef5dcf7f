// Package server wires the router, middleware, and all dependencies together.
// It is the composition root: main.go only loads config and calls New/Start.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nadira/healthdash/internal/auth"
	"github.com/nadira/healthdash/internal/handler"
	"github.com/nadira/healthdash/internal/middleware"
	"github.com/nadira/healthdash/internal/predictor"
	"github.com/nadira/healthdash/internal/refdata"
	sqliteRepo "github.com/nadira/healthdash/internal/repository/sqlite"
	"github.com/nadira/healthdash/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port        int
	DBPath      string
	ModelDir    string
	RefDataPath string // population comparison CSV, optional
	JWTSecret   string
}

// Server owns the router and the resources that must be released on
// shutdown, most importantly the database connection.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: database, token and password
// services, model set, optional population dataset, then the service and
// handler layers on top. Missing model artifacts and a missing population
// file are not fatal; the affected endpoints degrade instead.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Route structure:
//
//	POST   /api/auth/signup          → create account
//	POST   /api/auth/login           → issue session cookie
//	POST   /api/auth/logout          → expire session cookie
//	GET    /api/me                   → current account        (auth)
//	POST   /api/predictions          → lifestyle screening    (auth)
//	POST   /api/risk-assessments     → rule + model risk scan (auth)
//	POST   /api/recommendations      → lifestyle advice       (auth)
//	GET    /api/records              → history, ?from=&to=    (auth)
//	GET    /api/records/summary      → means, ?scope=         (auth)
//	GET    /api/records/export       → CSV download           (auth)
//	DELETE /api/records              → wipe own history       (auth)
//	GET    /dashboard                → trend charts (HTML)    (auth)
//	GET    /healthz                  → liveness probe
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// Load never fails; absent artifacts leave the set degraded and the
	// prediction endpoints return 503 for the missing models.
	models := predictor.Load(s.config.ModelDir, s.logger)
	if missing := models.Missing(); len(missing) > 0 {
		s.logger.Warn("running without some prediction models",
			slog.Any("missing", missing))
	}

	var population *refdata.Dataset
	if s.config.RefDataPath != "" {
		population, err = refdata.Load(s.config.RefDataPath, s.logger)
		if err != nil {
			s.logger.Warn("population dataset unavailable, global summaries disabled",
				slog.String("path", s.config.RefDataPath),
				slog.String("error", err.Error()))
			population = nil
		}
	}

	authSvc := service.NewAuthService(s.db, s.db, tokens, passwords, s.logger)
	assessmentSvc := service.NewAssessmentService(s.db, s.db, models, s.logger)
	reportSvc := service.NewReportService(s.db, s.db, population, s.logger)
	recommendSvc := service.NewRecommendationService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentSvc, s.logger)
	reportHandler := handler.NewReportHandler(reportSvc, s.logger)
	recommendHandler := handler.NewRecommendHandler(recommendSvc, s.logger)
	dashboardHandler := handler.NewDashboardHandler(reportSvc, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Post("/predictions", assessmentHandler.HandlePredict)
			r.Post("/risk-assessments", assessmentHandler.HandleRiskAssessment)
			r.Post("/recommendations", recommendHandler.HandleRecommend)

			r.Get("/records", reportHandler.HandleRecords)
			r.Get("/records/summary", reportHandler.HandleSummary)
			r.Get("/records/export", reportHandler.HandleExport)
			r.Delete("/records", reportHandler.HandleDelete)
		})
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/dashboard", dashboardHandler.HandleDashboard)
	})

	return nil
}

// Start runs the HTTP server until a shutdown signal arrives, then drains
// in-flight requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("models", s.config.ModelDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
