package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"chessgame/internal/config"
	"chessgame/internal/metrics"
	"chessgame/internal/models"
	"chessgame/internal/repositories"
	"chessgame/internal/utils"
)

const (
	MaxAge         = 86400 * 30
	ProviderGoogle = "google"
	methodPassword = "password"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternal           = errors.New("internal server error")
)

type AuthService interface {
	// LoginUser checks an email/password pair and returns a session token.
	LoginUser(ctx context.Context, creds models.Credentials) (string, error)
	// HandleLogin returns a session token for a user authenticated by an OAuth provider,
	// creating the account on first sign-in.
	HandleLogin(ctx context.Context, u goth.User) (string, error)
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, jwtTTL time.Duration) AuthService {
	return &authService{userRepo: userRepo, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// InitializeGoth registers the OAuth providers and returns the cookie store
// shared by gothic and the page flash messages.
func InitializeGoth(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.MaxAge(MaxAge)

	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.IsProduction()
	store.Options.SameSite = http.SameSiteLaxMode

	gothic.Store = store

	if cfg.GoogleClientID == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID not set, Google sign-in will fail")
	}
	goth.UseProviders(
		google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL(), "email", "profile"),
	)
	log.Info().Msg("Goth providers initialized")
	return store
}

func (a *authService) LoginUser(ctx context.Context, creds models.Credentials) (string, error) {
	log.Debug().Str("email", creds.Email).Msg("Attempting user login")
	user, err := a.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(methodPassword, "failed").Inc()
		if errors.Is(err, repositories.ErrUserNotFound) {
			log.Warn().Str("email", creds.Email).Msg("Invalid credentials during login attempt")
			return "", ErrInvalidCredentials
		}
		log.Error().Err(err).Str("email", creds.Email).Msg("Error finding user for login")
		return "", ErrInternal
	}

	// accounts created through an OAuth provider have no password hash
	if user.Password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(methodPassword, "failed").Inc()
		log.Warn().Str("email", creds.Email).Msg("Password login attempted on federated account")
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(methodPassword, "failed").Inc()
		log.Warn().Str("email", creds.Email).Msg("Invalid credentials (password mismatch) during login attempt")
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, a.jwtSecret, a.jwtTTL)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(methodPassword, "failed").Inc()
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Could not generate token for user")
		return "", ErrInternal
	}

	metrics.LoginAttemptsTotal.WithLabelValues(methodPassword, "success").Inc()
	log.Info().Str("user_id", user.ID.Hex()).Msg("User logged in successfully")
	return token, nil
}

func (a *authService) HandleLogin(ctx context.Context, u goth.User) (string, error) {
	log.Info().Str("email", u.Email).Str("provider", u.Provider).Msg("Attempting to handle login for user")
	if u.Email == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(u.Provider, "failed").Inc()
		log.Error().Msg("Missing email in Goth user data")
		return "", errors.New("missing email")
	}

	user, err := a.userRepo.FindByEmail(ctx, u.Email)
	switch {
	case err == nil:
		log.Info().Str("email", u.Email).Str("userID", user.ID.Hex()).Msg("User found in database")
	case errors.Is(err, repositories.ErrUserNotFound):
		log.Info().Str("email", u.Email).Msg("User not found, creating new user")
		user, err = a.userRepo.Create(ctx, &models.User{
			Email:    u.Email,
			Username: u.NickName,
		})
		if err != nil {
			metrics.LoginAttemptsTotal.WithLabelValues(u.Provider, "failed").Inc()
			log.Error().Err(err).Str("email", u.Email).Msg("Error creating new user")
			return "", errors.New("error creating user")
		}
		metrics.NewUsersTotal.WithLabelValues(u.Provider).Inc()
		log.Info().Str("email", u.Email).Str("userID", user.ID.Hex()).Msg("New user created successfully")
	default:
		metrics.LoginAttemptsTotal.WithLabelValues(u.Provider, "failed").Inc()
		log.Error().Err(err).Str("email", u.Email).Msg("Error finding user by email")
		return "", errors.New("error finding user by email")
	}

	token, err := utils.GenerateJWT(user.ID, a.jwtSecret, a.jwtTTL)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(u.Provider, "failed").Inc()
		log.Error().Err(err).Str("userID", user.ID.Hex()).Msg("Error generating JWT for user")
		return "", errors.New("error generating JWT")
	}
	metrics.LoginAttemptsTotal.WithLabelValues(u.Provider, "success").Inc()
	log.Info().Str("userID", user.ID.Hex()).Msg("JWT generated successfully")

	return token, nil
}
