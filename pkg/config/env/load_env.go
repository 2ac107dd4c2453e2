package env

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file. ENV_PATH
// overrides the default path; outside local mode a missing file is not an
// error.
func LoadDotEnv(env string, defaultPath string) error {
	envPath := os.Getenv("ENV_PATH")
	if envPath == "" {
		slog.Info("ENV_PATH is not set, using default path", "defaultPath", defaultPath)
		envPath = defaultPath
	}

	if err := godotenv.Load(envPath); err != nil {
		if env == "local" || env == "" {
			slog.Error("Failed to load environment variables in local mode", "error", err)
			return err
		}
		slog.Debug("Skipping .env ...")
	}

	return nil
}
