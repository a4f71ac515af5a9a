package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string        `envconfig:"DATABASE_URL"` // empty selects the in-memory store
	HTTPPort    string        `envconfig:"HTTP_PORT"    default:":8080"`
	GrpcPort    string        `envconfig:"GRPC_PORT"    default:":50051"`
	JWTSecret   string        `envconfig:"JWT_SECRET"   required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL"    default:"24h"`
	LogLevel    string        `envconfig:"LOG_LEVEL"    default:"info"`

	// AddRequiresElevated restricts adding users to ADMIN/MANAGER.
	AddRequiresElevated bool `envconfig:"ADD_REQUIRES_ELEVATED" default:"false"`

	AdminUserName string `envconfig:"ADMIN_USERNAME"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
}

// HasBootstrapAdmin reports whether an initial admin account is configured.
func (c *Config) HasBootstrapAdmin() bool {
	return c.AdminUserName != "" && c.AdminPassword != "" && c.AdminEmail != ""
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		cfg, err := Process()
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s", config.HTTPPort, config.GrpcPort, config.LogLevel)
		if config.DatabaseURL != "" {
			logger.Info("Configuration loaded: DatabaseURL is set")
		} else {
			logger.Warn("Configuration loaded: DATABASE_URL is not set, users are kept in memory")
		}
	})
	return &config
}

// Process reads the configuration from the environment without touching .env files.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return &cfg, nil
}
