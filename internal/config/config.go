package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the application. Values come
// from environment variables, optionally preloaded from an env file.
type Config struct {
	// Application
	AppHost  string
	AppPort  string
	LogLevel string
	BaseURL  string // external URL used in emailed links

	// PostgreSQL
	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDatabase     string
	PGMaxOpenConns int
	PGMaxIdleConns int

	// Redis (session store); empty host selects the in-memory store
	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int

	// Kafka (lifecycle events); empty brokers disable publishing
	KafkaBrokers []string
	KafkaTopic   string

	// SMTP (password reset mail); empty host selects the log mailer
	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUser     string
	SMTPPassword string

	// Authentication
	AuthSecret string        // signs the auth cookie
	AuthExp    time.Duration // auth cookie lifetime
	SessionTTL time.Duration // server-side session lifetime

	// API
	ItemsPerPage int
}

// Load reads configuration from the environment, optionally preloading
// variables from the env file at path (missing file is not an error).
func Load(path string) (*Config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	cfg := &Config{
		AppHost:       getEnv("APP_HOST", "localhost"),
		AppPort:       getEnv("APP_PORT", "8080"),
		LogLevel:      getEnv("APP_LOG_LEVEL", "info"),
		PGHost:        getEnv("POSTGRES_HOST", "localhost"),
		PGUser:        getEnv("POSTGRES_USER", "user"),
		PGPassword:    getEnv("POSTGRES_PASSWORD", "password"),
		PGDatabase:    getEnv("POSTGRES_DB", "database"),
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "user-events"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPFrom:      getEnv("SMTP_FROM", "info@example.com"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		AuthSecret:    getEnv("AUTH_SECRET_KEY", "my_super_secret_key"),
	}
	cfg.BaseURL = getEnv("APP_BASE_URL", "http://"+cfg.AppHost+":"+cfg.AppPort)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.PGPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return nil, err
	}
	if cfg.PGMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return nil, err
	}
	if cfg.PGMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return nil, err
	}
	if cfg.RedisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, err
	}
	if cfg.RedisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return nil, err
	}
	if cfg.RedisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = strconv.Atoi(getEnv("SMTP_PORT", "25")); err != nil {
		return nil, err
	}
	if cfg.ItemsPerPage, err = strconv.Atoi(getEnv("APP_ITEMS_PER_PAGE", "100")); err != nil {
		return nil, err
	}

	authExpSecond, err := strconv.Atoi(getEnv("AUTH_EXP_SECOND", "1209600"))
	if err != nil {
		return nil, err
	}
	cfg.AuthExp = time.Duration(authExpSecond) * time.Second

	sessionTTLSecond, err := strconv.Atoi(getEnv("SESSION_TTL_SECOND", "86400"))
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(sessionTTLSecond) * time.Second

	return cfg, nil
}
