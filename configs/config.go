package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName     string
	Port        string
	CORSOrigins string
	FrontendURL string

	DBDriver    string
	DatabaseURL string

	JWTSecret         string
	JWTExpiresIn      time.Duration
	IntentionTokenTTL time.Duration

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	BrevoAPIKey     string
	EmailSender     string
	EmailSenderName string
	CloudinaryURL   string

	AdminEmail    string
	AdminPassword string
	AdminFullName string

	LogLevel  string
	LogFormat string
	LogFile   string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Membership Network")
	v.SetDefault("PORT", "8080")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("JWT_EXPIRES_IN", "1h")
	v.SetDefault("INTENTION_TOKEN_TTL", "168h")
	v.SetDefault("KAFKA_TOPIC", "membership.events")
	v.SetDefault("ADMIN_FULL_NAME", "Network Administrator")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName:           v.GetString("APP_NAME"),
		Port:              v.GetString("PORT"),
		CORSOrigins:       v.GetString("CORS_ORIGINS"),
		FrontendURL:       strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiresIn:      v.GetDuration("JWT_EXPIRES_IN"),
		IntentionTokenTTL: v.GetDuration("INTENTION_TOKEN_TTL"),
		RedisURL:          v.GetString("REDIS_URL"),
		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:        v.GetString("KAFKA_TOPIC"),
		BrevoAPIKey:       v.GetString("BREVO_API_KEY"),
		EmailSender:       v.GetString("EMAIL_SENDER"),
		EmailSenderName:   v.GetString("EMAIL_SENDER_NAME"),
		CloudinaryURL:     v.GetString("CLOUDINARY_URL"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		AdminFullName:     v.GetString("ADMIN_FULL_NAME"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		LogFile:           v.GetString("LOG_FILE"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.JWTExpiresIn <= 0 {
		cfg.JWTExpiresIn = time.Hour
	}
	if cfg.IntentionTokenTTL <= 0 {
		cfg.IntentionTokenTTL = 7 * 24 * time.Hour
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
