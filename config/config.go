package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// Config centralises all environment and runtime configuration.
type Config struct {
	Port    string
	GinMode string

	DBDriver        string // sqlite | mysql | postgres
	DBDSN           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // menit

	JWTSecret    string
	RestaurantTZ string
	LogLevel     string

	// Re-derive table statuses for the affected day after every write.
	ReconcileOnWrite bool

	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int

	RedisURL      string
	RedisPassword string
	RedisDB       int
}

// Load reads .env (if any) and the environment, applying defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug("no .env file, using process environment")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:            getEnv("DB_DSN", "restaurant.db"),
		MaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifeTime:  getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RestaurantTZ:     getEnv("RESTAURANT_TZ", "UTC"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ReconcileOnWrite: parseBoolEnv(os.Getenv("RECONCILE_ON_WRITE")),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://127.0.0.1:5500"),
		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 40),
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want sqlite, mysql or postgres", c.DBDriver)
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("DB_DSN is empty")
	}
	if c.GinMode == "release" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when GIN_MODE=release")
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func parseBoolEnv(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}
