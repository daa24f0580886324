package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig holds the configuration of the marketplace session client.
type ClientConfig struct {
	APIBaseURL        string        `mapstructure:"API_BASE_URL"`
	FirebaseWebAPIKey string        `mapstructure:"FIREBASE_WEB_API_KEY"`
	StateDir          string        `mapstructure:"CLIENT_STATE_DIR"`
	RequestTimeout    time.Duration `mapstructure:"CLIENT_REQUEST_TIMEOUT_SECONDS"`
	MinPasswordLength int           `mapstructure:"MIN_PASSWORD_LENGTH"`

	// IdentityEndpoint and SecureTokenEndpoint override the Google endpoints (emulator, tests).
	IdentityEndpoint    string `mapstructure:"FIREBASE_AUTH_ENDPOINT"`
	SecureTokenEndpoint string `mapstructure:"FIREBASE_SECURE_TOKEN_ENDPOINT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// LoadClient reads the client configuration from a .env file (if present) and
// environment variables.
func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("FIREBASE_WEB_API_KEY", "")
	v.SetDefault("CLIENT_STATE_DIR", defaultStateDir())
	v.SetDefault("CLIENT_REQUEST_TIMEOUT_SECONDS", 15)
	v.SetDefault("MIN_PASSWORD_LENGTH", 6)
	v.SetDefault("FIREBASE_AUTH_ENDPOINT", "")
	v.SetDefault("FIREBASE_SECURE_TOKEN_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")
	v.AutomaticEnv()

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling client configuration: %w", err)
	}
	cfg.RequestTimeout = time.Duration(v.GetInt("CLIENT_REQUEST_TIMEOUT_SECONDS")) * time.Second
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ClientConfig) validate() error {
	if strings.TrimSpace(c.FirebaseWebAPIKey) == "" {
		return fmt.Errorf("FIREBASE_WEB_API_KEY is not set. This is required to sign in")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("CLIENT_REQUEST_TIMEOUT_SECONDS must be positive")
	}
	if c.MinPasswordLength < 1 {
		return fmt.Errorf("MIN_PASSWORD_LENGTH must be at least 1")
	}
	return nil
}

// LoggerSettings implements logger.Settings. The client always logs in
// development style to stderr.
func (c *ClientConfig) LoggerSettings() (string, string, string) {
	return "debug", c.LogLevel, c.LogFormat
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "marketplace")
	}
	return ".marketplace"
}
