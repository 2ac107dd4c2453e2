package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/heritage-kr/noticehub/pkg/config/env"
	"github.com/heritage-kr/noticehub/pkg/utils"
)

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AppConfig struct {
	ENV string
}

type APIConfig struct {
	PgConnStr     string
	EsAddresses   []string
	EsIndexPrefix string
	EsUsername    string
	EsPassword    string
}

func (as *AppConfig) Load() (*APIConfig, error) {
	if err := env.LoadDotEnv(as.ENV, "cmd/noticehub_api/.env"); err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	connStr := os.Getenv("PG_CONN_STR")
	if connStr == "" {
		return nil, fmt.Errorf("PG_CONN_STR environment variable is not set")
	}

	addresses := []string{"http://localhost:9200"}
	if raw := os.Getenv("ES_ADDRESSES"); raw != "" {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		addresses = utils.RemoveEmptyStrings(parts)
	}

	prefix := os.Getenv("ES_INDEX_PREFIX")
	if prefix == "" {
		prefix = "notices"
	}

	return &APIConfig{
		PgConnStr:     connStr,
		EsAddresses:   addresses,
		EsIndexPrefix: prefix,
		EsUsername:    os.Getenv("ES_USERNAME"),
		EsPassword:    os.Getenv("ES_PASSWORD"),
	}, nil
}
