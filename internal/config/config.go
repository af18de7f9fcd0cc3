// Package config loads application settings from the environment.
// A .env file in the working directory is picked up automatically.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	Port        int    `env:"PORT" envDefault:"8080"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"Chess Game"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	MongoURI      string `env:"MONGO_URI,required,notEmpty"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"chessgame"`

	SessionKey string        `env:"SESSION_KEY,required,notEmpty"`
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL     time.Duration `env:"JWT_TTL" envDefault:"24h"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	// Comma-separated list, e.g. "http://localhost:5173,https://chess.example.com"
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:""`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"3"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"1m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GoogleCallbackURL is the redirect URI registered with the Google OAuth client.
func (c *Config) GoogleCallbackURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/auth/google/callback"
}

func (c *Config) GetAllowedOrigins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
