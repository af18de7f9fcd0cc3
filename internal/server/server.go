package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"chessgame/internal/config"
	"chessgame/internal/database"
	"chessgame/internal/middlewares"
	"chessgame/internal/repositories"
	"chessgame/internal/services"
	"chessgame/internal/web"
)

type Server struct {
	cfg         *config.Config
	httpServer  *http.Server
	db          database.Service
	authService services.AuthService
	store       sessions.Store
	limiter     *middlewares.RateLimiter

	// HTTP metrics only, app and db metrics use the default registry
	registry *prometheus.Registry
}

func NewServer(cfg *config.Config) (*Server, error) {
	if err := web.LoadPages(); err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}

	db, err := database.New(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	userRepo := repositories.NewUserRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Continuing without unique email index")
	}

	s := &Server{
		cfg:         cfg,
		db:          db,
		authService: services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL),
		store:       services.InitializeGoth(cfg),
		limiter:     middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		registry:    prometheus.NewRegistry(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  cfg.IdleTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

func (s *Server) Start() error {
	log.Info().Int("port", s.cfg.Port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go s.limiter.CleanupVisitors(ctx)

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}
	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
