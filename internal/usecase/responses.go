package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// ResponseService reads the recorded answer history.
type ResponseService struct {
	Repo domain.ResponseRepository
}

// NewResponseService constructs a ResponseService with the given repo.
func NewResponseService(r domain.ResponseRepository) ResponseService {
	return ResponseService{Repo: r}
}

// ListByCandidate returns every recorded answer of a candidate.
func (s ResponseService) ListByCandidate(ctx domain.Context, candidateID string) ([]domain.ResponseRecord, error) {
	if strings.TrimSpace(candidateID) == "" {
		return nil, fmt.Errorf("%w: candidate id required", domain.ErrInvalidArgument)
	}
	return s.Repo.ListByCandidate(ctx, candidateID)
}

// ReadinessCheck represents a single readiness probe result used by handlers.
type ReadinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}
