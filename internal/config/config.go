// config.go

// Environment variable loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all env configuration vars for charon-loopback.
// Missing client credentials are a startup error, never a login-time one.
type Config struct {
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	MicrosoftClientID  string `env:"MICROSOFT_CLIENT_ID,required,notEmpty"`

	// Loopback redirect listener. Providers must have http://<host>:<port>/<provider>-callback
	// registered as a redirect URI, so changing these means updating the provider apps too.
	RedirectHost string `env:"REDIRECT_HOST" envDefault:"localhost"`
	RedirectPort int    `env:"REDIRECT_PORT" envDefault:"12345"`

	// CallbackTimeout bounds the wait for the browser redirect.
	// Unset leaves it zero, which the login flow reads as auth.DefaultCallbackTimeout.
	CallbackTimeout time.Duration `env:"CALLBACK_TIMEOUT"`

	// HTTPTimeout bounds each token / profile request.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	RawLogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level
}

// LoadConfig reads environment variables and returns a validated Config.
// Returns an error if a client credential is missing or a value is out of range.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Parse log level, default to info
	switch strings.ToLower(cfg.RawLogLevel) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	if cfg.RedirectPort <= 0 || cfg.RedirectPort > 65535 {
		return nil, fmt.Errorf("REDIRECT_PORT must be between 1 and 65535, got %d", cfg.RedirectPort)
	}
	if cfg.CallbackTimeout < 0 {
		return nil, fmt.Errorf("CALLBACK_TIMEOUT must not be negative, got %s", cfg.CallbackTimeout)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}

	return cfg, nil
}

// ListenAddr is the address the callback listener binds, e.g. "localhost:12345".
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.RedirectHost, strconv.Itoa(c.RedirectPort))
}

// RedirectBase is the scheme + authority every redirect URI starts with.
func (c *Config) RedirectBase() string {
	return "http://" + c.ListenAddr()
}
