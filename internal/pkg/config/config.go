package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   credentials), security settings
// - default: Values common across all environments (timeouts, margins)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Telegram TelegramConfig
	Wishlist WishlistConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// JWTConfig configures validation of the client-credentials bearer tokens
// issued by the auth server. The secret is shared with that server.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type TelegramConfig struct {
	Token  string   `envconfig:"TELEGRAM_TOKEN" required:"true"`
	Admins []string `envconfig:"TELEGRAM_ADMINS" default:""`
	// Long-poll timeout passed to getUpdates.
	PollTimeout time.Duration `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30s"`
}

// NormalizedAdmins strips a leading @ and lowercases each handle; empty
// entries are dropped. The result is the read-only admin allowlist.
func (c *TelegramConfig) NormalizedAdmins() []string {
	out := make([]string, 0, len(c.Admins))
	for _, a := range c.Admins {
		a = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(a), "@"))
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

type WishlistConfig struct {
	BaseURL string        `envconfig:"WISHLIST_API_URL" required:"true"`
	Timeout time.Duration `envconfig:"WISHLIST_API_TIMEOUT" default:"15s"`
}

type AuthConfig struct {
	URL          string `envconfig:"AUTH_URL" required:"true"`
	ClientID     string `envconfig:"AUTH_CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"AUTH_CLIENT_SECRET" required:"true"`
	Scope        string `envconfig:"AUTH_SCOPE" default:"api"`
	// Tokens are treated as expired this long before their real expiry so
	// an in-flight request never carries a token that dies mid-call.
	ExpiryMargin time.Duration `envconfig:"AUTH_EXPIRY_MARGIN" default:"30s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
	}
}
