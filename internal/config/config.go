package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings read from the environment (.env is loaded by main).
type Config struct {
	AppName string
	Port    string

	DBDriver        string // postgres | mysql
	DatabaseURL     string
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMaxOpenConns  int
	DBMaxIdleConns  int
	DBConnMaxLife   time.Duration
	AutoMigrate     bool
	SeedDefaultData bool
	AdminEmail      string
	AdminPassword   string

	RedisAddress  string // empty disables Redis-backed locks and sequences
	RedisPassword string
	RedisDB       int

	OrderLockTTL      time.Duration
	OrderLockWait     time.Duration
	LowStockThreshold int
	LogLevel          string
}

// Load reads Config from environment variables, applying defaults.
func Load() Config {
	return Config{
		AppName: stringFromEnv("APP_NAME", "Liquor Inventory v1.0"),
		Port:    stringFromEnv("PORT", "3000"),

		DBDriver:        strings.ToLower(stringFromEnv("DB_DRIVER", "postgres")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBHost:          stringFromEnv("DB_HOST", "localhost"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBPort:          os.Getenv("DB_PORT"),
		DBMaxOpenConns:  intFromEnv("DB_MAX_OPEN_CONNS", 100),
		DBMaxIdleConns:  intFromEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLife:   time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 3600)) * time.Second,
		AutoMigrate:     boolFromEnv("DB_AUTO_MIGRATE", true),
		SeedDefaultData: boolFromEnv("SEED_DEFAULT_DATA", true),
		AdminEmail:      stringFromEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:   stringFromEnv("ADMIN_PASSWORD", "admin123"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intFromEnv("REDIS_DB", 0),

		OrderLockTTL:      time.Duration(intFromEnv("ORDER_LOCK_TTL_SECONDS", 30)) * time.Second,
		OrderLockWait:     time.Duration(intFromEnv("ORDER_LOCK_WAIT_MS", 2000)) * time.Millisecond,
		LowStockThreshold: intFromEnv("LOW_STOCK_THRESHOLD", 10),
		LogLevel:          stringFromEnv("LOG_LEVEL", "info"),
	}
}

func stringFromEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
