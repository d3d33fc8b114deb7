package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"app_registry"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	JWTSecret     string        `env:"JWT_SECRET" envDefault:"your-secret-key-change-this-in-production"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`

	ElasticsearchURLs     []string      `env:"ELASTICSEARCH_URLS" envSeparator:","`
	ElasticsearchUsername string        `env:"ELASTICSEARCH_USERNAME"`
	ElasticsearchPassword string        `env:"ELASTICSEARCH_PASSWORD"`
	IndexPrefix           string        `env:"INDEX_PREFIX"`
	IndexQueueSize        int           `env:"INDEX_QUEUE_SIZE" envDefault:"256"`
	IndexTimeout          time.Duration `env:"INDEX_TIMEOUT" envDefault:"10s"`

	MailQueueSize int           `env:"MAIL_QUEUE_SIZE" envDefault:"256"`
	MailTimeout   time.Duration `env:"MAIL_TIMEOUT" envDefault:"30s"`

	ReindexCron      string `env:"REINDEX_CRON"`
	CounterCacheCron string `env:"COUNTER_CACHE_CRON" envDefault:"0 3 * * *"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST" envDefault:"120"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.JWTSecret == defaultJWTSecret && cfg.IsProduction() {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.IndexQueueSize <= 0 {
		cfg.IndexQueueSize = 1
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
