// Package tika extracts document text through an Apache Tika server.
//
// Documents are sent with PUT /tika and Accept: text/plain. Transient
// failures (network errors, 429 and 5xx) are retried with exponential
// backoff; other 4xx responses fail immediately.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/textextractor/docparse"
	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	obsctx "github.com/fairyhunter13/ai-talent-screener/internal/observability"
	"github.com/fairyhunter13/ai-talent-screener/pkg/textx"
)

const defaultBaseURL = "http://localhost:9998"

// Client is a minimal Apache Tika HTTP client implementing domain.TextExtractor.
// See: https://tika.apache.org/server/ for API details.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        config.Config
}

// New constructs a Tika client with a default timeout.
func New(cfg config.Config) *Client {
	base := cfg.TikaURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: 15 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		cfg:        cfg,
	}
}

// Extract uploads data to Tika and returns the sanitized plain text.
func (c *Client) Extract(ctx context.Context, data []byte, format domain.DocumentFormat) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ct := contentType(format)
	if ct == "" {
		observability.ObserveExtraction(string(format), "unsupported")
		return "", nil
	}

	maxElapsed, initial, maxInterval, multiplier := c.cfg.GetBackoffConfig()
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = initial
	expo.MaxInterval = maxInterval
	expo.MaxElapsedTime = maxElapsed
	expo.Multiplier = multiplier
	bo := backoff.WithContext(expo, ctx)

	var text string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "text/plain")
		req.Header.Set("Content-Type", ct)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			err := fmt.Errorf("tika status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		text = textx.SanitizeText(string(b))
		return nil
	}
	if err := backoff.Retry(op, bo); err != nil {
		obsctx.LoggerFromContext(ctx).Warn("tika extraction failed", "format", string(format), "error", err)
		observability.ObserveExtraction(string(format), "failed")
		return "", &domain.ExtractionError{Format: format, Cause: fmt.Errorf("op=tika.Extract: %w", err)}
	}
	observability.ObserveExtraction(string(format), "ok")
	return text, nil
}

func contentType(format domain.DocumentFormat) string {
	switch format {
	case domain.FormatPDF:
		return docparse.MIMEPDF
	case domain.FormatDOCX:
		return docparse.MIMEDOCX
	}
	return ""
}
