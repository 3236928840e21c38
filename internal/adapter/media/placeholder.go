// Package media provides the placeholder facial and tone analyzer.
//
// No real video or audio model is wired. Analyses are recorded with status
// "placeholder" and fixed metrics so downstream consumers keep a stable shape.
package media

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// Fixed placeholder metrics.
const (
	EngagementScore = 0.75
	ToneConfidence  = 0.8
	SpeakingRateWPM = 150
)

// Placeholder implements domain.MediaAnalyzer without inspecting the payload
// beyond checking that something was captured.
type Placeholder struct{}

// NewPlaceholder returns a Placeholder analyzer.
func NewPlaceholder() Placeholder { return Placeholder{} }

// Analyze returns the fixed analysis for kind.
func (Placeholder) Analyze(ctx context.Context, kind domain.MediaKind, payload []byte) (domain.MediaAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return domain.MediaAnalysis{}, err
	}
	if len(payload) == 0 {
		return domain.NotCaptured(), nil
	}
	switch kind {
	case domain.MediaFacial:
		return domain.MediaAnalysis{
			Status:  domain.MediaPlaceholder,
			Metrics: map[string]float64{"engagement": EngagementScore},
			Summary: "Facial analysis placeholder: engagement not measured.",
		}, nil
	case domain.MediaTone:
		return domain.MediaAnalysis{
			Status:  domain.MediaPlaceholder,
			Metrics: map[string]float64{"confidence": ToneConfidence, "speaking_rate_wpm": SpeakingRateWPM},
			Summary: "Tone analysis placeholder: delivery not measured.",
		}, nil
	}
	return domain.MediaAnalysis{}, fmt.Errorf("op=media.Analyze: %w: unknown media kind %q", domain.ErrInvalidArgument, kind)
}
