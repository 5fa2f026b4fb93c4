package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Webhook  WebhookConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// WebhookConfig points at the external notification dispatcher that fans
// mode transition and cycle refresh events out to customers.
type WebhookConfig struct {
	BaseURL           string
	BasicAuthUsername string
	BasicAuthPassword string
}

type PipelineConfig struct {
	ModeEnterThreshold float64
	ModeExitThreshold  float64
	RefreshWindowDays  int
	SweepConcurrency   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil {
		return nil, errors.New("missing redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "AI Visibility API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "ai_visibility"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Webhook: WebhookConfig{
			BaseURL:           getEnv("WEBHOOK_BASE_URL", ""),
			BasicAuthUsername: getEnv("WEBHOOK_BASIC_AUTH_USERNAME", ""),
			BasicAuthPassword: getEnv("WEBHOOK_BASIC_AUTH_PASSWORD", ""),
		},
		Pipeline: PipelineConfig{
			ModeEnterThreshold: getEnvFloat("MODE_ENTER_THRESHOLD", 850),
			ModeExitThreshold:  getEnvFloat("MODE_EXIT_THRESHOLD", 800),
			RefreshWindowDays:  getEnvInt("REFRESH_WINDOW_DAYS", 14),
			SweepConcurrency:   getEnvInt("SWEEP_CONCURRENCY", 8),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Pipeline.ModeEnterThreshold <= cfg.Pipeline.ModeExitThreshold {
		return nil, errors.New("mode enter threshold must sit above exit threshold")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}
