package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret   string
	JWTLifetime time.Duration

	PushinpaySecret    string
	PushinpayBaseURL   string
	PlatformSplitToken string
	TelegramAPIBaseURL string
	PublicBaseURL      string
	SweepInterval      time.Duration
}

func Load() Config {
	return Config{
		Port:        getEnv("PORT", "8080"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		RedisAddr:     getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTLifetime: time.Duration(getEnvInt("JWT_LIFETIME_MINUTES", 30)) * time.Minute,

		PushinpaySecret:    os.Getenv("PUSHINPAY_SECRET"),
		PushinpayBaseURL:   getEnv("PUSHINPAY_BASE_URL", "https://api.pushinpay.com.br"),
		PlatformSplitToken: os.Getenv("PLATFORM_SPLIT_TOKEN"),
		TelegramAPIBaseURL: getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		PublicBaseURL:      strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		SweepInterval:      time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 0)) * time.Minute,
	}
}

func getEnv(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
