package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Payments  PaymentsConfig
	Wizard    WizardConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AuthConfig holds the shared secret of the hosted auth service's JWTs
type AuthConfig struct {
	JWTSecret string
}

type StorageConfig struct {
	Driver string // local, s3 or cloudinary

	LocalDir       string
	LocalURLPrefix string

	S3Region        string
	S3Bucket        string
	S3PublicBaseURL string

	CloudinaryURL string
}

type PaymentsConfig struct {
	SyncURL       string
	SyncSecret    string
	Currency      string
	Timeout       time.Duration
	QueueSize     int
	RatePerSecond float64
}

type WizardConfig struct {
	SessionTTL time.Duration
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	// .env.local overrides .env for machine-specific settings
	if err := godotenv.Load(".env.local"); err == nil {
		log.Printf("Loaded overrides from .env.local")
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("LOCAL_UPLOAD_DIR", "./storage/uploads")
	viper.SetDefault("LOCAL_UPLOAD_URL_PREFIX", "/uploads")
	viper.SetDefault("PAYMENTS_CURRENCY", "usd")
	viper.SetDefault("PAYMENTS_TIMEOUT", "10s")
	viper.SetDefault("PAYMENTS_QUEUE_SIZE", 100)
	viper.SetDefault("PAYMENTS_RATE_PER_SECOND", 5)
	viper.SetDefault("WIZARD_SESSION_TTL", "24h")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:     viper.GetString("SERVER_PORT"),
			Env:      viper.GetString("SERVER_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("AUTH_JWT_SECRET"),
		},
		Storage: StorageConfig{
			Driver:          viper.GetString("STORAGE_DRIVER"),
			LocalDir:        viper.GetString("LOCAL_UPLOAD_DIR"),
			LocalURLPrefix:  viper.GetString("LOCAL_UPLOAD_URL_PREFIX"),
			S3Region:        viper.GetString("S3_REGION"),
			S3Bucket:        viper.GetString("S3_BUCKET"),
			S3PublicBaseURL: viper.GetString("S3_PUBLIC_BASE_URL"),
			CloudinaryURL:   viper.GetString("CLOUDINARY_URL"),
		},
		Payments: PaymentsConfig{
			SyncURL:       viper.GetString("PAYMENTS_SYNC_URL"),
			SyncSecret:    viper.GetString("PAYMENTS_SYNC_SECRET"),
			Currency:      viper.GetString("PAYMENTS_CURRENCY"),
			Timeout:       viper.GetDuration("PAYMENTS_TIMEOUT"),
			QueueSize:     viper.GetInt("PAYMENTS_QUEUE_SIZE"),
			RatePerSecond: viper.GetFloat64("PAYMENTS_RATE_PER_SECOND"),
		},
		Wizard: WizardConfig{
			SessionTTL: viper.GetDuration("WIZARD_SESSION_TTL"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
