package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	FrontendURL string `env:"FRONTEND_URL,notEmpty"`
	BackendURL  string `env:"BACKEND_URL,notEmpty"`
	Port        int    `env:"PORT" envDefault:"3000"`
	Environment string `env:"APP_ENV" envDefault:"production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	BodyLimit   string `env:"BODY_LIMIT" envDefault:"1M"`

	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	Redis Redis `envPrefix:"REDIS_"`
	JWT   JWT
	Kafka Kafka `envPrefix:"KAFKA_"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`
}

type Redis struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type JWT struct {
	AccessSecret  string        `env:"JWT_SECRET,notEmpty"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET,notEmpty"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
}

type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"user_events"`
}

func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found, using system environment variables")
	}
	return Parse(env.Options{})
}

// Parse builds a Config with the given env options and validates it.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, production, test, got %q", c.Environment))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT out of range: %d", c.Redis.Port))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST out of range: %d", c.BcryptCost))
	}
	return errors.Join(errs...)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
