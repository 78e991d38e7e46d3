package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

// Config holds application level configuration. Values come from an optional
// YAML file named by CONFIG_FILE and are overridden by environment variables.
type Config struct {
	ServerPort  string `yaml:"server_port"`
	SwaggerHost string `yaml:"swagger_host"`
	LogLevel    string `yaml:"log_level"`

	DBDriver string `yaml:"db_driver"`
	DBDSN    string `yaml:"db_dsn"`
	ResetDB  bool   `yaml:"reset_db"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
	RedisPass string `yaml:"redis_password"`

	JWTSecret       string        `yaml:"jwt_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`

	AMQPURL      string `yaml:"amqp_url"`
	SessionQueue string `yaml:"session_queue"`

	// ReconcileSchedule is a cron spec; empty disables the flag reconciler.
	ReconcileSchedule string `yaml:"reconcile_schedule"`
	// ReaderRateLimit is requests per second allowed per client on card-reader routes.
	ReaderRateLimit float64 `yaml:"reader_rate_limit"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerPort:      "8080",
		LogLevel:        "info",
		DBDriver:        "mysql",
		DBDSN:           "user:password@tcp(localhost:3306)/smartcharger?charset=utf8mb4&parseTime=True&loc=UTC",
		RedisAddr:       "localhost:6379",
		JWTSecret:       "change-me",
		AccessTokenTTL:  24 * time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		SessionQueue:    "charging.sessions",
		ReaderRateLimit: 10,
	}
}

// Load builds Config from .env, the optional YAML file and the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv(configFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.ResetDB = getEnvBool("RESET_DB", cfg.ResetDB)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AccessTokenTTL = getEnvDuration("ACCESS_TOKEN_TTL", cfg.AccessTokenTTL)
	cfg.RefreshTokenTTL = getEnvDuration("REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.SessionQueue = getEnv("SESSION_QUEUE", cfg.SessionQueue)
	cfg.ReconcileSchedule = getEnv("RECONCILE_SCHEDULE", cfg.ReconcileSchedule)
	cfg.ReaderRateLimit = getEnvFloat("READER_RATE_LIMIT", cfg.ReaderRateLimit)

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
