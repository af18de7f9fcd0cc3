package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"chessgame/internal/config"
	"chessgame/internal/metrics"
	"chessgame/internal/services"
	"chessgame/internal/views"
	"chessgame/internal/web"
)

// Values of the "action" field posted by the login form buttons.
const (
	actionLogin    = "login"
	actionRegister = "register"
	actionForgot   = "forgot"
	actionGoogle   = "google"
)

type LoginHandler struct {
	authService services.AuthService
	store       sessions.Store
	serviceName string
	cookies     cookieSettings
}

func NewLoginHandler(authService services.AuthService, store sessions.Store, cfg *config.Config) *LoginHandler {
	return &LoginHandler{
		authService: authService,
		store:       store,
		serviceName: cfg.ServiceName,
		cookies: cookieSettings{
			secure:    cfg.IsProduction(),
			ttl:       cfg.JWTTTL,
			jwtSecret: cfg.JWTSecret,
		},
	}
}

type loginPage struct {
	ServiceName   string
	Email         string
	FieldErrors   views.FieldErrors
	Notifications []views.Notification
	Loading       bool
}

type staticPage struct {
	ServiceName string
}

// LoginPage renders an empty login form plus any notifications carried over a redirect.
func (h *LoginHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if isLoggedIn(r, h.cookies) {
		http.Redirect(w, r, homePath, http.StatusFound)
		return
	}

	h.render(w, http.StatusOK, "login", loginPage{
		ServiceName:   h.serviceName,
		FieldErrors:   views.FieldErrors{},
		Notifications: popFlashes(h.store, w, r),
	})
}

// SubmitLogin feeds the posted form into a login view and runs the action
// selected by the pressed button.
func (h *LoginHandler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Error().Err(err).Msg("Invalid form data for SubmitLogin")
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	nav := &redirectNavigator{}
	notifier := &pageNotifier{}
	auth := &requestAuth{w: w, r: r, authService: h.authService, nav: nav, cookies: h.cookies}
	view := views.NewLoginView(auth, nav, notifier)
	defer view.Unmount()

	view.SetEmail(r.PostFormValue("email"))
	view.SetPassword(r.PostFormValue("password"))

	status := http.StatusOK
	switch action := r.PostFormValue("action"); action {
	case actionRegister:
		view.GoToRegister()
	case actionForgot:
		view.GoToResetPassword()
	case actionGoogle:
		if err := view.SignInWithGoogle(r.Context()); err != nil {
			log.Error().Err(err).Msg("Failed to start Google sign-in")
			http.Error(w, "Failed to start Google sign-in", http.StatusInternalServerError)
			return
		}
	case "", actionLogin:
		// the view is fresh per request, so a false result means validation failed
		if !view.Submit(r.Context()) {
			metrics.LoginValidationFailuresTotal.Inc()
			status = http.StatusUnprocessableEntity
		} else if auth.lastErr != nil {
			status = http.StatusInternalServerError
			if errors.Is(auth.lastErr, services.ErrInvalidCredentials) {
				status = http.StatusUnauthorized
			}
		}
	default:
		log.Warn().Str("action", action).Msg("Unknown login form action")
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}

	if nav.target != "" {
		addFlashes(h.store, w, r, notifier.items)
		http.Redirect(w, r, nav.target, http.StatusSeeOther)
		return
	}

	h.render(w, status, "login", loginPage{
		ServiceName:   h.serviceName,
		Email:         view.Credentials().Email,
		FieldErrors:   view.FieldErrors(),
		Notifications: notifier.items,
		Loading:       view.Loading(),
	})
}

func (h *LoginHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register", staticPage{ServiceName: h.serviceName})
}

func (h *LoginHandler) ResetPasswordPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "reset-password", staticPage{ServiceName: h.serviceName})
}

func (h *LoginHandler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if !web.RenderPageTemplate(w, name, data) {
		log.Error().Str("page", name).Msg("Page render failed after headers were sent")
	}
}
