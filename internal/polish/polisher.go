// Package polish sends normalized Markdown to an external text-polishing
// service. The pipeline treats polishing as best effort: a failure never
// blocks caching or storing the unpolished content.
package polish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/heritage-kr/noticehub/internal/apperr"
)

// Polisher rewrites Markdown into cleaner prose.
type Polisher interface {
	Polish(ctx context.Context, markdown string) (string, error)
}

type HTTPConfig func(client *HTTPPolisher)

// HTTPPolisher calls a JSON polishing endpoint.
type HTTPPolisher struct {
	base url.URL
	http *http.Client
}

const defaultTimeout = 60 * time.Second

func NewHTTPPolisher(baseURL string, opts ...HTTPConfig) (*HTTPPolisher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	client := &HTTPPolisher{
		base: *base,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, cfg := range opts {
		cfg(client)
	}

	return client, nil
}

func WithHTTPClient(httpClient *http.Client) HTTPConfig {
	return func(client *HTTPPolisher) {
		client.http = httpClient
	}
}

type polishRequest struct {
	Markdown string `json:"markdown"`
}

type polishResponse struct {
	Markdown string `json:"markdown"`
}

func (p *HTTPPolisher) Polish(ctx context.Context, markdown string) (string, error) {
	if markdown == "" {
		return "", apperr.NewValidation("missing markdown to polish")
	}

	var resp polishResponse
	if err := p.do(ctx, http.MethodPost, "/v1/polish", polishRequest{Markdown: markdown}, &resp); err != nil {
		return "", err
	}
	return resp.Markdown, nil
}

func (p *HTTPPolisher) do(ctx context.Context, method, path string, reqData, respData any) error {
	reqDataBytes, err := json.Marshal(reqData)
	if err != nil {
		return err
	}

	reqURL := p.base.JoinPath(path)
	request, err := http.NewRequestWithContext(ctx, method, reqURL.String(), bytes.NewReader(reqDataBytes))
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, respData); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// Noop passes Markdown through untouched, for runs without a polishing
// service configured.
type Noop struct{}

func (Noop) Polish(_ context.Context, markdown string) (string, error) {
	return markdown, nil
}

var (
	_ Polisher = (*HTTPPolisher)(nil)
	_ Polisher = Noop{}
)
