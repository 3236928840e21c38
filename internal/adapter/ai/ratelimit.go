package ai

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/observability"
)

// RateLimitKey is the limiter bucket spent by embedding calls.
const RateLimitKey = "embeddings"

// Limiter is the token bucket consulted before each embedding call.
type Limiter interface {
	Allow(ctx domain.Context, key string, cost int64) (bool, time.Duration, error)
}

type rateLimitedEmbedder struct {
	base    domain.Embedder
	limiter Limiter
}

// NewRateLimitedEmbedder spends one token per text before delegating to base.
// A denied call fails with domain.ErrRateLimited; limiter errors fail open.
func NewRateLimitedEmbedder(base domain.Embedder, l Limiter) domain.Embedder {
	if l == nil {
		return base
	}
	return &rateLimitedEmbedder{base: base, limiter: l}
}

func (e *rateLimitedEmbedder) Embed(ctx domain.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return e.base.Embed(ctx, texts)
	}
	ok, retryAfter, err := e.limiter.Allow(ctx, RateLimitKey, int64(len(texts)))
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("embedding rate limiter unavailable", slog.Any("error", err))
	}
	if !ok {
		return nil, fmt.Errorf("%w: embeddings, retry after %s", domain.ErrRateLimited, retryAfter)
	}
	return e.base.Embed(ctx, texts)
}
