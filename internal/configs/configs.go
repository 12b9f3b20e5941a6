package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	AppHost                string `env:"APP_HOST" env-default:"127.0.0.1"`
	AppPort                string `env:"APP_PORT" env-default:"8080"`
	APIURL                 string `env:"API_URL" env-default:"http://127.0.0.1:8080"`
	DatabaseDriver         string `env:"DATABASE_DRIVER" env-default:"sqlite"`
	DatabaseDSN            string `env:"DATABASE_DSN" env-default:"tasks.db"`
	RateLimit              int    `env:"RATE_LIMIT_PER_MINUTE" env-default:"120"`
	RedisAddr              string `env:"REDIS_ADDR"`
	RedisChannel           string `env:"REDIS_CHANNEL" env-default:"task-manager:changes"`
	JWTSecret              string `env:"JWT_SECRET"`
	SessionTTLMinutes      int    `env:"SESSION_TTL_MINUTES" env-default:"60"`
	ShutdownTimeoutSeconds int    `env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"20"`
	LogLevel               string `env:"LOG_LEVEL" env-default:"info"`
	LogFile                string `env:"LOG_FILE"`
	TasksEmail             string `env:"TASKS_EMAIL"`
	TasksPassword          string `env:"TASKS_PASSWORD"`
}

// Load reads the given .env files (".env" when none are named) into the
// environment without overriding it, then parses the environment. Missing
// files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.AppHost == "" || c.AppPort == "" {
		errs = append(errs, errors.New("APP_HOST and APP_PORT must not be empty"))
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "mysql" {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or mysql, got %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must not be empty"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0"))
	}
	if c.SessionTTLMinutes <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_MINUTES must be greater than 0"))
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		errs = append(errs, fmt.Errorf("API_URL must be an http(s) URL, got %q", c.APIURL))
	}
	return errors.Join(errs...)
}

// ValidateServer checks the settings only the API server needs.
func (c Config) ValidateServer() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	return nil
}

func (c Config) AppURL() string {
	return c.AppHost + ":" + c.AppPort
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
