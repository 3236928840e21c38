package ai

import (
	"crypto/sha1" //nolint:gosec // used for seeding only
	"encoding/binary"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// HashEmbedder is a deterministic offline Embedder. Texts sharing words
// produce correlated vectors, so similarity behaves sensibly without a model.
type HashEmbedder struct {
	Dims int
}

// NewHashEmbedder returns a HashEmbedder with the given dimensionality.
func NewHashEmbedder(dims int) HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return HashEmbedder{Dims: dims}
}

// Embed returns one bag-of-words hash vector per text.
func (h HashEmbedder) Embed(_ domain.Context, texts []string) ([][]float32, error) {
	dims := h.Dims
	if dims <= 0 {
		dims = 256
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, dims)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			w = strings.Trim(w, ".,;:!?()\"'")
			if w == "" {
				continue
			}
			addDeterministic(vec, w)
		}
		out[i] = vec
	}
	return out, nil
}

// addDeterministic adds a pseudo-random vector seeded by sha1(word) to vec.
func addDeterministic(vec []float32, word string) {
	sum := sha1.Sum([]byte(word)) //nolint:gosec
	x := binary.BigEndian.Uint32(sum[:4])
	const a = 1664525
	const c = 1013904223
	for i := range vec {
		x = uint32(uint64(a)*uint64(x) + uint64(c))
		v := float32(x) / float32(^uint32(0))
		vec[i] += 2*v - 1
	}
}
