package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// loadEnvFile loads .env/.env.local if present. Existing process environment
// variables are never overwritten.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment variables", "path", envPath)
			return
		}
	}
}
