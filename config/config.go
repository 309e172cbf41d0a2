// Package config loads runtime settings from the environment (.env is read
// by main through godotenv before Load is called).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string // "sqlite" or "mysql"
	DBDSN    string
	DBUser   string
	DBPass   string
	DBHost   string
	DBPort   string
	DBName   string

	// RestaurantTZ is the location used for the future-date, weekday and
	// opening-hours rules.
	RestaurantTZ string

	JWTSecret string
	JWTTTL    time.Duration

	// AdminEmail / AdminPassword seed the first admin account.
	AdminEmail    string
	AdminPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL string

	RateLimitRPS   float64
	RateLimitBurst int

	CORSOrigin string

	ChangeMonitorInterval time.Duration

	LogLevel  string
	LogFormat string
}

func Load() Config {
	return Config{
		Port:    envStr("PORT", "8080"),
		GinMode: envStr("GIN_MODE", "debug"),

		DBDriver: strings.ToLower(envStr("DB_DRIVER", "sqlite")),
		DBDSN:    os.Getenv("DB_DSN"),
		DBUser:   envStr("DB_USER", "root"),
		DBPass:   os.Getenv("DB_PASS"),
		DBHost:   envStr("DB_HOST", "127.0.0.1"),
		DBPort:   envStr("DB_PORT", "3306"),
		DBName:   envStr("DB_NAME", "reservations"),

		RestaurantTZ: os.Getenv("RESTAURANT_TZ"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    envDur("JWT_TTL", 12*time.Hour),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		CacheTTL:      envDur("CACHE_TTL", time.Minute),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		RateLimitRPS:   envFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 40),

		CORSOrigin: envStr("CORS_ORIGIN", "*"),

		ChangeMonitorInterval: envDur("CHANGE_MONITOR_INTERVAL", time.Second),

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	}
}

// Location resolves RestaurantTZ, falling back to time.Local when it is empty
// or unknown.
func (c Config) Location() *time.Location {
	if c.RestaurantTZ == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.RestaurantTZ)
	if err != nil {
		return time.Local
	}
	return loc
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
