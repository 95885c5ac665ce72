package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr     string
	MysqlDSN       string
	RedisAddr      string
	RedisPassword  string
	JWTSecret      string
	AllowedOrigins string
}

var Cfg *Config

func Load() {
	loadDotEnv()

	Cfg = &Config{
		ServerAddr:     ":" + getEnv("PORT", "8080"),
		MysqlDSN:       getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/betweenchat?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		JWTSecret:      getEnv("JWT_SECRET", "betweenchat-secret-key-change-in-production"),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"),
	}
}

// loadDotEnv loads .env files with priority: .env.local > .env.
// godotenv.Load does not overwrite already-set env vars, so real
// environment variables always win.
func loadDotEnv() {
	candidates := []string{".env.local", ".env"}
	var found []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
