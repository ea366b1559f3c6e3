package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

type Config struct {
	Telegram          Telegram      `envPrefix:"TG_"`
	Webhook           Webhook
	Database          Database
	Sessions          Sessions      `envPrefix:"SESSION_"`
	Log               Log           `envPrefix:"LOG_"`
	WorkerIdleTimeout time.Duration `env:"WORKER_IDLE_TIMEOUT" envDefault:"10m" validate:"gt=0"`
}

type Telegram struct {
	Token   string `env:"TOKEN,required" validate:"required"`
	Timeout int    `env:"TIMEOUT" envDefault:"60" validate:"gte=0"`
	Debug   bool   `env:"DEBUG"`
}

// Webhook is used instead of long polling when PublicHost is set
type Webhook struct {
	PublicHost string `env:"PUBLIC_HOST"`
	Port       int    `env:"PORT" envDefault:"8443" validate:"gt=0,lte=65535"`
	Path       string `env:"WEBHOOK_PATH" envDefault:"/webhook" validate:"startswith=/"`
}

func (w Webhook) Enabled() bool {
	return w.PublicHost != ""
}

func (w Webhook) URL() string {
	return "https://" + w.PublicHost + w.Path
}

type Database struct {
	Driver        string        `env:"STORAGE_DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	URL           string        `env:"DATABASE_URL,required" validate:"required"`
	Timeout       time.Duration `env:"DATABASE_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	RetryAttempts uint64        `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"200ms" validate:"gt=0"`
}

type Sessions struct {
	Backend         string        `env:"BACKEND" envDefault:"memory" validate:"oneof=memory mongo"`
	MongoEndpoint   string        `env:"MONGO_ENDPOINT" validate:"required_if=Backend mongo"`
	MongoDatabase   string        `env:"MONGO_DATABASE" envDefault:"ledgerbot" validate:"required"`
	TTL             time.Duration `env:"TTL" envDefault:"30m" validate:"gte=1s"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"5m" validate:"gt=0"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	Format string `env:"FORMAT" envDefault:"text" validate:"oneof=text json"`
}

// Load reads an optional .env file, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load, couldn't read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config.Load, invalid config: %w", err)
	}
	return cfg, nil
}
