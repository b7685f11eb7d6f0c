// Package firecrawl implements the content-fetch boundary against the
// Firecrawl scrape API. The service renders the page and returns its
// text; crawling internals stay on its side of the boundary.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public scrape endpoint.
const DefaultBaseURL = "https://api.firecrawl.dev/v0/scrape"

const maxErrorBody = 512

// Config controls the Firecrawl client.
type Config struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Client calls the Firecrawl scrape API over HTTP.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New builds a Client. The API key is required.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firecrawl.api_key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeEnvelope struct {
	Data struct {
		Content  string `json:"content"`
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Fetch scrapes one URL and returns its text content. Non-success
// responses and transport errors are returned as-is; the caller owns
// the failure policy.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	payload, err := json.Marshal(scrapeRequest{URL: url})
	if err != nil {
		return "", fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("scrape %s: status %d: %s", url, resp.StatusCode, bytes.TrimSpace(body))
	}

	var envelope scrapeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode scrape response for %s: %w", url, err)
	}

	content := envelope.Data.Content
	if content == "" {
		content = envelope.Data.Markdown
	}
	c.logger.Debug("scraped page",
		zap.String("url", url),
		zap.Int("bytes", len(content)),
		zap.Duration("duration", time.Since(start)))
	return content, nil
}
