package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// User Activity Metrics
	NewUsersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_new_users_total",
		Help: "Total number of accounts created on first federated sign-in.",
	}, []string{"provider"})
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_login_attempts_total",
		Help: "Total number of login attempts (successful and failed).",
	}, []string{"method", "status"}) // method: "password" or a provider name; status: "success" or "failed"

	// Login page metrics
	LoginValidationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_login_validation_failures_total",
		Help: "Total number of login form submissions rejected by validation.",
	})
	NotificationsShownTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_notifications_shown_total",
		Help: "Total number of notifications shown on pages.",
	}, []string{"color"})
)
