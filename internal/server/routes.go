package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chessgame/internal/handlers"
	"chessgame/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	pm := middlewares.NewPrometheusMiddleware(s.registry)
	r.Use(middlewares.RequestLogger)
	r.Use(pm.Instrument)
	r.Use(middlewares.NewCorsMiddleware(s.cfg.GetAllowedOrigins()))

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler).Methods("GET")
	r.HandleFunc("/health", ch.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(
		prometheus.Gatherers{s.registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)).Methods("GET")

	s.registerAuthRoutes(r)

	return r
}

func (s *Server) registerAuthRoutes(r *mux.Router) {
	lh := handlers.NewLoginHandler(s.authService, s.store, s.cfg)
	ah := handlers.NewAuthHandler(s.authService, s.store, s.cfg)

	r.HandleFunc("/auth/login", lh.LoginPage).Methods("GET")
	r.Handle("/auth/login", s.limiter.Limit(http.HandlerFunc(lh.SubmitLogin))).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/register", lh.RegisterPage).Methods("GET")
	r.HandleFunc("/auth/reset-password", lh.ResetPasswordPage).Methods("GET")
	r.HandleFunc("/auth/logout", ah.Logout).Methods("POST")

	r.HandleFunc("/auth/{provider}", ah.ProviderAuth).Methods("GET")
	r.HandleFunc("/auth/{provider}/callback", ah.ProviderCallback).Methods("GET")
}
