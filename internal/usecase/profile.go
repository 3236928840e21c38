// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/extraction"
	"github.com/fairyhunter13/ai-talent-screener/internal/matching"
	obsctx "github.com/fairyhunter13/ai-talent-screener/internal/observability"
)

// Warnings attached to a ProfileOutcome.
const (
	WarnExtractionFailed  = "text extraction failed; profile built from empty text"
	WarnUnsupportedFormat = "unsupported document format; profile built from empty text"
	WarnNoText            = "no text found in document"
)

// ProfileOutcome is a candidate profile plus the non-fatal problems met
// while building it.
type ProfileOutcome struct {
	Profile  domain.CandidateProfile `json:"profile"`
	Warnings []string                `json:"warnings,omitempty"`
}

// ProfileService turns documents and job text into profiles and scores them.
type ProfileService struct {
	Extractor domain.TextExtractor
	Builder   extraction.ProfileBuilder
}

// NewProfileService constructs a ProfileService.
func NewProfileService(x domain.TextExtractor, b extraction.ProfileBuilder) ProfileService {
	return ProfileService{Extractor: x, Builder: b}
}

// CandidateFromDocument extracts text and builds a profile. Extraction
// failures never fail the call; they become warnings on an empty profile.
func (s ProfileService) CandidateFromDocument(ctx context.Context, data []byte, format domain.DocumentFormat) (ProfileOutcome, error) {
	if err := ctx.Err(); err != nil {
		return ProfileOutcome{}, err
	}
	var warnings []string
	text := ""
	switch format {
	case domain.FormatPDF, domain.FormatDOCX:
		t, err := s.Extractor.Extract(ctx, data, format)
		switch {
		case errors.Is(err, domain.ErrExtractionFailed):
			obsctx.LoggerFromContext(ctx).Warn("document extraction failed", slog.String("format", string(format)), slog.Any("error", err))
			warnings = append(warnings, WarnExtractionFailed)
		case err != nil:
			return ProfileOutcome{}, err
		case strings.TrimSpace(t) == "":
			warnings = append(warnings, WarnNoText)
		default:
			text = t
		}
	default:
		warnings = append(warnings, WarnUnsupportedFormat)
	}
	return ProfileOutcome{Profile: s.Builder.BuildCandidate(text), Warnings: warnings}, nil
}

// CandidateFromText builds a profile from already extracted text.
func (s ProfileService) CandidateFromText(text string) domain.CandidateProfile {
	return s.Builder.BuildCandidate(text)
}

// Job builds the skill profile of a job description.
func (s ProfileService) Job(title, text string) domain.JobSkillProfile {
	return s.Builder.BuildJob(title, text)
}

// Match scores a candidate against a job and records the score distribution.
func (s ProfileService) Match(candidate domain.CandidateProfile, job domain.JobSkillProfile) domain.MatchResult {
	res := matching.Score(candidate, job)
	observability.ObserveMatch(res.Score)
	return res
}
