package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port            int           `env:"PORT" envDefault:"8080"`
		Origin          string        `env:"ORIGIN" envDefault:"http://localhost:3000"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"social"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"5m"`
		AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Supabase struct {
		URL        string `env:"SUPABASE_URL"`
		ServiceKey string `env:"SUPABASE_SERVICE_KEY"`
		JWTSecret  string `env:"SUPABASE_JWT_SECRET,required,notEmpty"`
	}

	// S3-совместимое хранилище (Wasabi)
	Storage struct {
		Endpoint      string        `env:"S3_ENDPOINT" envDefault:"https://s3.wasabisys.com"`
		Region        string        `env:"S3_REGION" envDefault:"us-east-1"`
		Bucket        string        `env:"S3_BUCKET" envDefault:"social-media"`
		AccessKey     string        `env:"S3_ACCESS_KEY"`
		SecretKey     string        `env:"S3_SECRET_KEY"`
		PublicBaseURL string        `env:"S3_PUBLIC_BASE_URL"`
		UploadURLTTL  time.Duration `env:"UPLOAD_URL_TTL" envDefault:"15m"`
	}

	Admin struct {
		ValidationAttempts int           `env:"ADMIN_VALIDATION_ATTEMPTS" envDefault:"3"`
		ValidationBackoff  time.Duration `env:"ADMIN_VALIDATION_BACKOFF" envDefault:"1s"`
		AccessCacheTTL     time.Duration `env:"ADMIN_ACCESS_CACHE_TTL" envDefault:"5m"`
	}

	Pagination struct {
		// Raw value on purpose: invalid input must fall through to the default.
		AdminPageSize string `env:"ADMIN_PAGE_SIZE"`
	}

	Password struct {
		HIBPBaseURL string        `env:"HIBP_BASE_URL" envDefault:"https://api.pwnedpasswords.com"`
		MaxAttempts int           `env:"PASSWORD_CHANGE_MAX_ATTEMPTS" envDefault:"5"`
		Window      time.Duration `env:"PASSWORD_CHANGE_WINDOW" envDefault:"15m"`
	}

	RateLimit struct {
		RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
		Burst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
	}

	Usage struct {
		CronSpec string `env:"USAGE_CRON_SPEC" envDefault:"@every 1h"`
	}
}

// GetDSN собирает строку подключения для lib/pq
func (c *Config) GetDSN() string {
	p := c.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// RedisAddr возвращает host:port для go-redis
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func Load() (*Config, error) {
	// .env is optional; in production variables come from the environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Admin.ValidationAttempts < 1 {
		cfg.Admin.ValidationAttempts = 1
	}

	return cfg, nil
}
