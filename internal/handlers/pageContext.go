package handlers

import (
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog/log"

	"chessgame/internal/metrics"
	"chessgame/internal/models"
	"chessgame/internal/services"
	"chessgame/internal/utils"
	"chessgame/internal/views"
)

const (
	flashSessionName  = "chessgame-flash"
	sessionCookieName = "jwt"
	homePath          = "/"
)

func init() {
	gob.Register(views.Notification{})
}

// redirectNavigator records the last navigation target so the handler can
// answer with a redirect once the view is done.
type redirectNavigator struct {
	target string
}

func (n *redirectNavigator) Navigate(path string) { n.target = path }

// pageNotifier collects notifications for the page being rendered.
type pageNotifier struct {
	items []views.Notification
}

func (n *pageNotifier) Show(note views.Notification) {
	n.items = append(n.items, note)
	metrics.NotificationsShownTotal.WithLabelValues(note.Color).Inc()
}

// requestAuth binds the auth service to one HTTP exchange. A successful
// login sets the session cookie and navigates home.
type requestAuth struct {
	w           http.ResponseWriter
	r           *http.Request
	authService services.AuthService
	nav         views.Navigator
	cookies     cookieSettings

	lastErr error
}

func (a *requestAuth) Login(ctx context.Context, creds models.Credentials) error {
	token, err := a.authService.LoginUser(ctx, creds)
	if err != nil {
		a.lastErr = err
		return err
	}
	setSessionCookie(a.w, token, a.cookies)
	a.nav.Navigate(homePath)
	return nil
}

func (a *requestAuth) SignInWithGoogle(ctx context.Context) error {
	req := gothic.GetContextWithProvider(a.r.WithContext(ctx), services.ProviderGoogle)
	authURL, err := gothic.GetAuthURL(a.w, req)
	if err != nil {
		return err
	}
	a.nav.Navigate(authURL)
	return nil
}

type cookieSettings struct {
	secure    bool
	ttl       time.Duration
	jwtSecret string
}

func setSessionCookie(w http.ResponseWriter, token string, c cookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// isLoggedIn reports whether the request carries a valid session cookie.
func isLoggedIn(r *http.Request, c cookieSettings) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = utils.ParseJWT(cookie.Value, c.jwtSecret)
	return err == nil
}

// addFlashes keeps notifications across a redirect.
func addFlashes(store sessions.Store, w http.ResponseWriter, r *http.Request, notes []views.Notification) {
	if len(notes) == 0 {
		return
	}
	session, err := store.Get(r, flashSessionName)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable flash session")
	}
	for _, n := range notes {
		session.AddFlash(n)
	}
	if err := session.Save(r, w); err != nil {
		log.Error().Err(err).Msg("Failed to save flash notifications")
	}
}

func popFlashes(store sessions.Store, w http.ResponseWriter, r *http.Request) []views.Notification {
	session, err := store.Get(r, flashSessionName)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable flash session")
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		log.Error().Err(err).Msg("Failed to clear flash notifications")
	}

	notes := make([]views.Notification, 0, len(flashes))
	for _, f := range flashes {
		if n, ok := f.(views.Notification); ok {
			notes = append(notes, n)
		}
	}
	return notes
}
