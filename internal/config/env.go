package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFile loads .env/.env.local if present. Existing process
// environment variables are not overwritten. Missing files are fine.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("loaded environment variables", "path", envPath)
		return
	}
}
