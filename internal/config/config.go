package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret      string
	JWTIssuer      string
	JWTExpiry      time.Duration
	GinMode        string
	ListenAddr     string
	LogFile        string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string

	ReminderMailerEnabled  bool
	ReminderMailerInterval time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "taskminder"),

		JWTSecret:  getEnv("JWT_SECRET", "default-secret-key-change-me"),
		JWTIssuer:  getEnv("JWT_ISSUER", "taskminder"),
		JWTExpiry:  getDuration("JWT_EXPIRY", 24*time.Hour),
		GinMode:    getEnv("GIN_MODE", "debug"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogFile:    getEnv("LOG_FILE", "logs/taskminder.log"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		ReminderMailerEnabled:  getBool("REMINDER_MAILER_ENABLED", false),
		ReminderMailerInterval: getDuration("REMINDER_MAILER_INTERVAL", time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
