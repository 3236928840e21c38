package ai

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/observability"
)

// Scorer implements domain.SimilarityScorer as the cosine similarity of two
// embeddings, clamped to [0,1].
type Scorer struct {
	embedder domain.Embedder
	breaker  *observability.Breaker
}

// NewScorer returns a Scorer. A nil embedder makes every call report
// domain.ErrCapabilityUnavailable. A nil breaker disables short-circuiting.
func NewScorer(e domain.Embedder, b *observability.Breaker) *Scorer {
	return &Scorer{embedder: e, breaker: b}
}

// Similarity embeds a and b in one request and returns their cosine similarity.
func (s *Scorer) Similarity(ctx domain.Context, a, b string) (float64, error) {
	if s == nil || s.embedder == nil {
		return 0, fmt.Errorf("op=ai.Similarity: %w: no embedding model configured", domain.ErrCapabilityUnavailable)
	}
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, nil
	}
	if s.breaker != nil && !s.breaker.Allow() {
		return 0, fmt.Errorf("op=ai.Similarity: %w: embeddings circuit open", domain.ErrCapabilityUnavailable)
	}
	vecs, err := s.embedder.Embed(ctx, []string{a, b})
	if err != nil {
		if s.breaker != nil {
			s.breaker.Failure()
		}
		if errors.Is(err, domain.ErrCapabilityUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("op=ai.Similarity: %w", err)
	}
	if s.breaker != nil {
		s.breaker.Success()
	}
	if len(vecs) != 2 {
		return 0, fmt.Errorf("op=ai.Similarity: %w: expected 2 vectors, got %d", domain.ErrInternal, len(vecs))
	}
	return Cosine(vecs[0], vecs[1]), nil
}

// Cosine returns the cosine similarity of a and b clamped to [0,1]. Vectors of
// different length or zero magnitude yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	v := dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
