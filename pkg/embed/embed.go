// Package embed provides the text-embedding client. Failures of any kind
// (transport, auth, rate limits, dimension mismatches) are absorbed here:
// Embed returns an empty vector and callers branch on emptiness alone.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/complyware/retention-engine/pkg/resilience"
)

// DefaultDimensions is the embedding dimension the index schema expects.
const DefaultDimensions = 1536

// Config configures the embedding client. Zero fields fall back to defaults;
// Validate rejects out-of-range values.
type Config struct {
	BaseURL    string
	Model      string
	APIKey     string // optional bearer token, resolved by the caller
	Dimensions int
	Timeout    time.Duration

	// Limiter and Breaker guard the provider; nil fields get defaults.
	Limiter *resilience.Limiter
	Breaker *resilience.Breaker
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("embed: base URL is required")
	}
	if c.Model == "" {
		return fmt.Errorf("embed: model is required")
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("embed: dimensions must be positive, got %d", c.Dimensions)
	}
	if c.Dimensions == 0 {
		c.Dimensions = DefaultDimensions
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Limiter == nil {
		c.Limiter = resilience.NewLimiter(resilience.DefaultLimiterOpts)
	}
	if c.Breaker == nil {
		c.Breaker = resilience.NewBreaker(resilience.DefaultBreakerOpts)
	}
	return nil
}

// Client calls the embedding provider over HTTP.
type Client struct {
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

// New builds a Client from a validated Config.
func New(cfg Config, log *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}, nil
}

// Dimensions returns the configured embedding dimension.
func (c *Client) Dimensions() int { return c.cfg.Dimensions }

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding vector for text, or an empty slice on any
// failure. Errors are logged, never returned.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	if err := c.cfg.Limiter.Wait(ctx); err != nil {
		c.log.Warn("embed: rate limiter wait cancelled", "error", err)
		return nil
	}

	var vec []float32
	err := c.cfg.Breaker.Call(ctx, func(ctx context.Context) error {
		v, err := c.embedOnce(ctx, text)
		vec = v
		return err
	})
	if err != nil {
		c.log.Warn("embed: provider call failed", "error", err)
		return nil
	}
	if len(vec) != c.cfg.Dimensions {
		c.log.Warn("embed: dimension mismatch", "got", len(vec), "want", c.cfg.Dimensions)
		return nil
	}
	return vec
}

func (c *Client) embedOnce(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.cfg.Model, Prompt: text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: status %d", resp.StatusCode)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("embed decode: %w", err)
	}

	out := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}
