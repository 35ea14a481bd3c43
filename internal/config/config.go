package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/tripline/internal/seat"
)

type Config struct {
	App struct {
		Name        string `envconfig:"APP_NAME" default:"Tripline"`
		Port        int    `envconfig:"PORT" default:"8080"`
		LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
		StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tripline"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Seats struct {
		Sharing string `envconfig:"SEAT_SHARING" default:"segment"`
	}

	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB" default:"0"`
		TTL      time.Duration `envconfig:"DEPARTURES_CACHE_TTL" default:"15s"`
	}

	AMQP struct {
		URL   string `envconfig:"AMQP_URL"`
		Queue string `envconfig:"AMQP_QUEUE" default:"reservation.events"`
	}

	TUI struct {
		OperatorID string `envconfig:"TUI_OPERATOR_ID" default:"console"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) SeatSharing() (seat.Sharing, error) {
	return seat.ParseSharing(c.Seats.Sharing)
}

func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return lvl
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch strings.ToLower(cfg.App.StoreDriver) {
	case "postgres", "memory":
		cfg.App.StoreDriver = strings.ToLower(cfg.App.StoreDriver)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.App.StoreDriver)
	}

	if _, err := cfg.SeatSharing(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
