package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog/log"

	"chessgame/internal/config"
	"chessgame/internal/services"
	"chessgame/internal/views"
)

const msgProviderAuthFailed = "Authentication failed. Please try again."

type AuthHandler struct {
	authService services.AuthService
	store       sessions.Store
	cookies     cookieSettings
}

func NewAuthHandler(authService services.AuthService, store sessions.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
		cookies: cookieSettings{
			secure:    cfg.IsProduction(),
			ttl:       cfg.JWTTTL,
			jwtSecret: cfg.JWTSecret,
		},
	}
}

func (a *AuthHandler) ProviderAuth(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider := vars["provider"]

	if provider == "" {
		log.Error().Msg("Provider not specified in URL")
		http.Error(w, "Provider not specified", http.StatusBadRequest)
		return
	}

	log.Info().Str("provider", provider).Msg("Initiating authentication with provider")

	gothic.BeginAuthHandler(w, r)
}

func (a *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("Provider callback initiated")

	pUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Error completing user authentication")
		a.failLogin(w, r)
		return
	}

	log.Info().Str("email", pUser.Email).Msg("User authenticated with provider, attempting to handle login")
	token, err := a.authService.HandleLogin(r.Context(), pUser)
	if err != nil {
		log.Error().Err(err).Msg("Error handling login after provider authentication")
		a.failLogin(w, r)
		return
	}

	setSessionCookie(w, token, a.cookies)
	log.Info().Str("email", pUser.Email).Msg("JWT cookie set successfully")

	http.Redirect(w, r, homePath, http.StatusSeeOther)
}

// failLogin sends the user back to the login page with an error notification.
func (a *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request) {
	addFlashes(a.store, w, r, []views.Notification{{Message: msgProviderAuthFailed, Color: views.ColorError}})
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := gothic.Logout(w, r); err != nil {
		log.Warn().Err(err).Msg("Failed to clear provider session")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cookies.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}
