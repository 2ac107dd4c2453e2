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

type HarvesterConfig struct {
	SitesPath     string
	CacheDir      string
	PgConnStr     string
	EsAddresses   []string
	EsIndexPrefix string
	EsUsername    string
	EsPassword    string
	PolisherURL   string
	Headless      bool
	SkipWords     []string
}

func (as *AppConfig) Load() (*HarvesterConfig, error) {
	if err := env.LoadDotEnv(as.ENV, "cmd/harvester/.env"); err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	connStr := os.Getenv("PG_CONN_STR")
	if connStr == "" {
		return nil, fmt.Errorf("PG_CONN_STR environment variable is not set")
	}

	sitesPath := os.Getenv("SITES_CONFIG_PATH")
	if sitesPath == "" {
		sitesPath = "config/sites.yaml"
	}

	cacheDir := os.Getenv("CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "cache"
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

	var skipWords []string
	if raw := os.Getenv("SKIP_WORDS"); raw != "" {
		skipWords = utils.RemoveEmptyStrings(strings.Split(raw, ","))
	}

	return &HarvesterConfig{
		SitesPath:     sitesPath,
		CacheDir:      cacheDir,
		PgConnStr:     connStr,
		EsAddresses:   addresses,
		EsIndexPrefix: prefix,
		EsUsername:    os.Getenv("ES_USERNAME"),
		EsPassword:    os.Getenv("ES_PASSWORD"),
		PolisherURL:   os.Getenv("POLISHER_URL"),
		Headless:      os.Getenv("HEADLESS") != "false",
		SkipWords:     skipWords,
	}, nil
}
