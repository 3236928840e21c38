// Package openai implements an embeddings client for OpenAI-compatible APIs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// Client implements domain.Embedder against POST {base}/embeddings.
type Client struct {
	cfg     config.Config
	embedHC *http.Client
	counter *tokencount.Counter
}

// New constructs an embeddings client with sensible timeouts.
func New(cfg config.Config) *Client {
	timeout := 30 * time.Second
	if cfg.IsDev() {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:     cfg,
		embedHC: &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		counter: tokencount.DefaultCounter,
	}
}

// readSnippet reads up to n bytes from r for logging.
func readSnippet(r io.Reader, n int64) string {
	if r == nil || n <= 0 {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, n))
	return string(b)
}

func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	maxElapsed, initial, maxInterval, multiplier := c.cfg.GetBackoffConfig()
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.MaxElapsedTime = maxElapsed
	expo.Multiplier = multiplier
	return expo
}

// Embed returns one vector per input text. Texts longer than the configured
// token budget are truncated before they are sent.
func (c *Client) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if !c.cfg.EmbeddingsEnabled() {
		return nil, fmt.Errorf("op=openai.Embed: %w: OPENAI_API_KEY or EMBEDDINGS_MODEL missing", domain.ErrCapabilityUnavailable)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = c.truncate(t)
	}
	b, err := json.Marshal(map[string]any{
		"model": c.cfg.EmbeddingsModel,
		"input": input,
	})
	if err != nil {
		return nil, fmt.Errorf("op=openai.Embed: %w", err)
	}
	endpoint := c.cfg.OpenAIBaseURL + "/embeddings"

	var out struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	op := func() error {
		start := time.Now()
		// Recreate request each attempt to avoid reusing consumed bodies
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
		if err != nil {
			return backoff.Permanent(err)
		}
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.embedHC.Do(r)
		if err != nil {
			observability.ObserveEmbedding("error", time.Since(start))
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode == http.StatusTooManyRequests {
			observability.ObserveEmbedding("rate_limited", time.Since(start))
			slog.Warn("embeddings provider rate limited", slog.String("op", "embed"), slog.Int("status", resp.StatusCode), slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			observability.ObserveEmbedding("client_error", time.Since(start))
			slog.Warn("embeddings provider 4xx", slog.String("op", "embed"), slog.Int("status", resp.StatusCode), slog.String("model", c.cfg.EmbeddingsModel), slog.String("endpoint", endpoint), slog.String("body", readSnippet(resp.Body, 512)))
			return backoff.Permanent(fmt.Errorf("embed status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			observability.ObserveEmbedding("server_error", time.Since(start))
			slog.Error("embeddings provider non-2xx", slog.String("op", "embed"), slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint), slog.String("body", readSnippet(resp.Body, 512)))
			return fmt.Errorf("embed status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			observability.ObserveEmbedding("decode_error", time.Since(start))
			return backoff.Permanent(fmt.Errorf("decode embeddings: %w", err))
		}
		observability.ObserveEmbedding("ok", time.Since(start))
		return nil
	}
	bo := backoff.WithContext(c.getBackoffConfig(), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("op=openai.Embed: %w: %v", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("op=openai.Embed: %w", err)
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("op=openai.Embed: %w", errors.New("embedding count does not match input count"))
	}

	res := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		idx := d.Index
		if idx < 0 || idx >= len(res) || res[idx] != nil {
			idx = i
		}
		v := make([]float32, len(d.Embedding))
		for j := range d.Embedding {
			v[j] = float32(d.Embedding[j])
		}
		res[idx] = v
	}
	return res, nil
}

func (c *Client) truncate(text string) string {
	if c.cfg.EmbedMaxTokens <= 0 || c.counter == nil {
		return text
	}
	out, err := c.counter.Truncate(text, c.cfg.EmbeddingsModel, c.cfg.EmbedMaxTokens)
	if err != nil {
		slog.Debug("token truncation skipped", slog.Any("error", err))
		return text
	}
	return out
}
