// Package es maintains the per-language search indices: one index per
// language code, each with an analyzer fitting that language, a completion
// suggester field and a publish-time decay scoring function.
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/heritage-kr/noticehub/internal/apperr"
)

type ClientConfig struct {
	Addresses   []string
	IndexPrefix string
	Username    string
	Password    string
}

type Client struct {
	es     *elasticsearch.Client
	prefix string
}

// NewClient connects and pings the cluster. An unreachable cluster is fatal
// at startup.
func NewClient(ctx context.Context, config ClientConfig) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return nil, apperr.NewConnectivity("elasticsearch", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperr.NewConnectivity("elasticsearch", fmt.Errorf("ping returned %s", res.Status()))
	}

	return &Client{es: es, prefix: config.IndexPrefix}, nil
}

func (c *Client) indexName(language string) string {
	return c.prefix + "-" + language
}

// analyzerFor picks the index analyzer per language. Korean text needs the
// nori plugin; anything unrecognized falls back to the standard analyzer.
func analyzerFor(language string) string {
	switch language {
	case "ko":
		return "nori"
	case "en":
		return "english"
	default:
		return "standard"
	}
}

// EnsureIndex creates the language's index with its mappings unless it
// already exists.
func (c *Client) EnsureIndex(ctx context.Context, language string) error {
	name := c.indexName(language)

	existsRes, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check if index %s exists: %w", name, err)
	}
	defer existsRes.Body.Close()
	if existsRes.StatusCode == 200 {
		slog.Info("index already exists", "index", name)
		return nil
	}

	analyzer := analyzerFor(language)
	body := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"source":     map[string]interface{}{"type": "keyword"},
				"article_id": map[string]interface{}{"type": "integer"},
				"source_url": map[string]interface{}{"type": "keyword"},
				"title": map[string]interface{}{
					"type":     "text",
					"analyzer": analyzer,
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{"type": "keyword"},
					},
				},
				"content": map[string]interface{}{
					"type":     "text",
					"analyzer": analyzer,
				},
				"published_on": map[string]interface{}{
					"type":   "date",
					"format": "yyyy-MM-dd",
				},
				"indexed_at": map[string]interface{}{"type": "date"},
				"suggest": map[string]interface{}{
					"type":     "completion",
					"analyzer": analyzer,
				},
			},
		},
	}

	createRes, err := c.es.Indices.Create(name,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(encodeBody(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("index creation for %s failed: %s", name, createRes.String())
	}

	slog.Info("index created", "index", name, "analyzer", analyzer)
	return nil
}

func encodeBody(body interface{}) io.Reader {
	var buf bytes.Buffer
	// bodies are built from plain maps and structs, encoding cannot fail
	_ = json.NewEncoder(&buf).Encode(body)
	return &buf
}
