package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"chessgame/internal/config"
	"chessgame/internal/models"
	"chessgame/internal/services"
	"chessgame/internal/utils"
	"chessgame/internal/views"
)

type fakeAuthService struct {
	calls    []models.Credentials
	token    string
	loginErr error
}

func (f *fakeAuthService) LoginUser(_ context.Context, creds models.Credentials) (string, error) {
	f.calls = append(f.calls, creds)
	return f.token, f.loginErr
}

func (f *fakeAuthService) HandleLogin(context.Context, goth.User) (string, error) {
	return f.token, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ServiceName: "Chess Game",
		BaseURL:     "http://localhost:8080",
		SessionKey:  "test-session-key-0123456789abcdef",
		JWTSecret:   "test-jwt-secret",
		JWTTTL:      time.Hour,
	}
}

func newTestRouter(t *testing.T, auth services.AuthService) *mux.Router {
	t.Helper()
	cfg := testConfig()
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	gothic.Store = store
	goth.UseProviders(google.New("client-id", "client-secret", cfg.GoogleCallbackURL(), "email"))

	lh := NewLoginHandler(auth, store, cfg)
	ah := NewAuthHandler(auth, store, cfg)

	r := mux.NewRouter()
	r.HandleFunc("/auth/login", lh.LoginPage).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", lh.SubmitLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", lh.RegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/auth/reset-password", lh.ResetPasswordPage).Methods(http.MethodGet)
	r.HandleFunc("/auth/{provider}/callback", ah.ProviderCallback).Methods(http.MethodGet)
	return r
}

func postLogin(r http.Handler, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func get(r http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

const redNotificationElement = `class="notification notification--error" data-color="red"`

func assertRedNotification(t *testing.T, body, message string) {
	t.Helper()
	assert.Contains(t, body, redNotificationElement)
	assert.Contains(t, body, `<span class="notification__message">`+message+`</span>`)
}

// renderedNotificationMarker appears only on notification elements, never in the stylesheet.
const renderedNotificationMarker = `data-color="`

func TestLoginPage_Renders(t *testing.T) {
	r := newTestRouter(t, &fakeAuthService{})

	rec := get(r, "/auth/login")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Welcome to Chess Game")
	assert.Contains(t, body, `name="email"`)
	assert.Contains(t, body, `value="google"`)
	assert.NotContains(t, body, renderedNotificationMarker)
}

func TestLoginPage_RedirectsWhenLoggedIn(t *testing.T) {
	r := newTestRouter(t, &fakeAuthService{})
	token, err := utils.GenerateJWT(primitive.NewObjectID(), testConfig().JWTSecret, time.Hour)
	require.NoError(t, err)

	rec := get(r, "/auth/login", &http.Cookie{Name: sessionCookieName, Value: token})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, homePath, rec.Header().Get("Location"))
}

func TestSubmitLogin_ValidationBlocksCall(t *testing.T) {
	auth := &fakeAuthService{token: "t"}
	r := newTestRouter(t, auth)

	rec := postLogin(r, url.Values{"email": {"not-an-email"}, "password": {"123"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, auth.calls)
	body := rec.Body.String()
	assert.Contains(t, body, views.MsgEmailInvalid)
	assert.Contains(t, body, views.MsgPasswordTooShort)
	assert.Contains(t, body, `value="not-an-email"`)
	assert.NotContains(t, body, renderedNotificationMarker)
}

func TestSubmitLogin_Success(t *testing.T) {
	auth := &fakeAuthService{token: "signed-token"}
	r := newTestRouter(t, auth)

	rec := postLogin(r, url.Values{"email": {"user@example.com"}, "password": {"secret1"}, "action": {"login"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, homePath, rec.Header().Get("Location"))
	assert.Equal(t, []models.Credentials{{Email: "user@example.com", Password: "secret1"}}, auth.calls)

	cookie := findCookie(rec, sessionCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, "signed-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestSubmitLogin_InvalidCredentials(t *testing.T) {
	auth := &fakeAuthService{loginErr: services.ErrInvalidCredentials}
	r := newTestRouter(t, auth)

	rec := postLogin(r, url.Values{"email": {"user@example.com"}, "password": {"secret1"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, auth.calls, 1)
	body := rec.Body.String()
	assertRedNotification(t, body, "invalid credentials")
	assert.Equal(t, 1, strings.Count(body, renderedNotificationMarker))
	assert.Nil(t, findCookie(rec, sessionCookieName))
}

func TestSubmitLogin_ServiceFailure(t *testing.T) {
	auth := &fakeAuthService{loginErr: services.ErrInternal}
	r := newTestRouter(t, auth)

	rec := postLogin(r, url.Values{"email": {"user@example.com"}, "password": {"secret1"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestSubmitLogin_NavigationIgnoresValidity(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{actionForgot, views.ResetPasswordPath},
		{actionRegister, views.RegisterPath},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			auth := &fakeAuthService{}
			r := newTestRouter(t, auth)

			rec := postLogin(r, url.Values{"email": {"bad"}, "action": {tt.action}})

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
			assert.Empty(t, auth.calls)

			page := get(r, tt.want)
			assert.Equal(t, http.StatusOK, page.Code)
		})
	}
}

func TestSubmitLogin_Google(t *testing.T) {
	auth := &fakeAuthService{}
	r := newTestRouter(t, auth)

	rec := postLogin(r, url.Values{"action": {actionGoogle}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://accounts.google.com/"), rec.Header().Get("Location"))
	assert.Empty(t, auth.calls)
}

func TestSubmitLogin_UnknownAction(t *testing.T) {
	r := newTestRouter(t, &fakeAuthService{})

	rec := postLogin(r, url.Values{"action": {"teleport"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProviderCallback_FailureFlashesNotification(t *testing.T) {
	r := newTestRouter(t, &fakeAuthService{})

	rec := get(r, "/auth/google/callback?state=bogus&code=bogus")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))

	flash := findCookie(rec, flashSessionName)
	require.NotNil(t, flash)

	page := get(r, "/auth/login", flash)
	assert.Equal(t, http.StatusOK, page.Code)
	assertRedNotification(t, page.Body.String(), msgProviderAuthFailed)

	// flashes are consumed on read
	cleared := findCookie(page, flashSessionName)
	require.NotNil(t, cleared)
	again := get(r, "/auth/login", cleared)
	assert.NotContains(t, again.Body.String(), msgProviderAuthFailed)
	assert.NotContains(t, again.Body.String(), renderedNotificationMarker)
}
