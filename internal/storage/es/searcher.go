package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// decay parameters for the publish-time relevance falloff: full relevance
// for a week, halved around a month out.
const (
	decayOffset = "7d"
	decayScale  = "30d"
	decayFactor = 0.5
)

const suggestKey = "notice-suggest"

// Hit is one search result with its relevance score.
type Hit struct {
	Document Document
	Score    float64
}

// SearchResult carries one page of hits plus the total match count.
type SearchResult struct {
	Hits  []Hit
	Total int
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  float64  `json:"_score"`
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a full-text query against one language's index. Title matches
// score double, and relevance decays with article age through a gaussian
// function over the publish date.
func (c *Client) Search(ctx context.Context, query, language string, offset, limit int) (*SearchResult, error) {
	slog.Info("executing search", "query", query, "language", language, "offset", offset, "limit", limit)

	body := map[string]interface{}{
		"from": offset,
		"size": limit,
		"query": map[string]interface{}{
			"function_score": map[string]interface{}{
				"query": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "content"},
					},
				},
				"functions": []interface{}{
					map[string]interface{}{
						"gauss": map[string]interface{}{
							"published_on": map[string]interface{}{
								"origin": "now",
								"offset": decayOffset,
								"scale":  decayScale,
								"decay":  decayFactor,
							},
						},
					},
				},
				"boost_mode": "multiply",
			},
		},
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName(language)),
		c.es.Search.WithBody(encodeBody(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	result := &SearchResult{Total: parsed.Hits.Total.Value}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, Hit{Document: hit.Source, Score: hit.Score})
	}

	slog.Info("search results fetched",
		"total_matches", result.Total,
		"returned_count", len(result.Hits),
		"language", language)
	return result, nil
}

type suggestResponse struct {
	Suggest map[string][]struct {
		Options []struct {
			Text string `json:"text"`
		} `json:"options"`
	} `json:"suggest"`
}

// Suggest returns title completions for a prefix from one language's index.
func (c *Client) Suggest(ctx context.Context, prefix, language string, size int) ([]string, error) {
	body := map[string]interface{}{
		"suggest": map[string]interface{}{
			suggestKey: map[string]interface{}{
				"prefix": prefix,
				"completion": map[string]interface{}{
					"field":           "suggest",
					"size":            size,
					"skip_duplicates": true,
				},
			},
		},
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName(language)),
		c.es.Search.WithBody(encodeBody(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute suggest lookup: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("suggest lookup failed: %s", res.String())
	}

	var parsed suggestResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode suggest response: %w", err)
	}

	var suggestions []string
	for _, entry := range parsed.Suggest[suggestKey] {
		for _, option := range entry.Options {
			suggestions = append(suggestions, option.Text)
		}
	}
	return suggestions, nil
}
