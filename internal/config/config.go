package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBPassword    string        `envconfig:"DB_PASSWORD" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int32         `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`

	// Redis (reference data cache)
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// JWT sessions
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"24h"`

	// External generation service
	WeaveAPIURL  string        `envconfig:"WEAVE_API_URL" default:"http://localhost:8000"`
	WeaveTimeout time.Duration `envconfig:"WEAVE_API_TIMEOUT" default:"30s"`

	// When StrictChoices is enabled, a free-text choice that does not match
	// any choice of the current chapter is a validation error instead of
	// silently mapping to label "B".
	StrictChoices bool `envconfig:"STRICT_CHOICES" default:"false"`

	// Credits granted to a new account.
	StartingCredits int `envconfig:"STARTING_CREDITS" default:"10"`

	// Reference data cache TTL.
	ReferenceCacheTTL time.Duration `envconfig:"REFERENCE_CACHE_TTL" default:"10m"`

	// CORS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// LoadConfig loads configuration from the optional .env file and environment.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: could not load %s file: %v", envFilePath, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	return &cfg, nil
}
