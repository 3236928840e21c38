// Package evaluation scores free-text screening answers.
package evaluation

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/matching"
	"github.com/fairyhunter13/ai-talent-screener/internal/nlp"
	"github.com/fairyhunter13/ai-talent-screener/internal/observability"
	"github.com/fairyhunter13/ai-talent-screener/pkg/textx"
)

// Weights of the blended score when semantic similarity is available.
const (
	KeywordWeight    = 0.4
	SimilarityWeight = 0.6
)

// Feedback fragments surfaced to reviewers.
const (
	FeedbackNoResponse            = "No response provided."
	FeedbackNoKeywords            = "Did not identify expected key terms."
	FeedbackSimilarityUnavailable = "Semantic similarity unavailable; scored on keyword overlap only."
)

// Evaluation is the outcome of scoring one answer.
type Evaluation struct {
	Score           float64
	KeywordScore    float64
	MatchedKeywords []string
	// Similarity is in [0,1]; meaningful only when SimilarityUsed is true.
	Similarity     float64
	SimilarityUsed bool
	Polarity       float64
	Sentiment      string
	Feedback       string
}

// Evaluator blends keyword overlap with optional semantic similarity.
type Evaluator struct {
	Similarity domain.SimilarityScorer
}

// NewEvaluator constructs an Evaluator. A nil scorer means similarity is
// unavailable and answers are scored on keyword overlap alone.
func NewEvaluator(s domain.SimilarityScorer) Evaluator { return Evaluator{Similarity: s} }

// Evaluate scores answer against q. It never fails: a missing answer scores 0
// with neutral sentiment, and similarity errors fall back to keyword-only
// scoring.
func (e Evaluator) Evaluate(ctx domain.Context, q domain.ScreeningQuestion, answer string) Evaluation {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Evaluation{Sentiment: nlp.SentimentNeutral, Feedback: FeedbackNoResponse}
	}

	var (
		feedback []string
		ev       Evaluation
	)
	keywords := ExpectedKeywords(q)
	ev.KeywordScore, ev.MatchedKeywords = keywordOverlap(keywords, answer)
	if len(keywords) > 0 {
		if len(ev.MatchedKeywords) > 0 {
			feedback = append(feedback, fmt.Sprintf("Recognized key terms: %s.", strings.Join(ev.MatchedKeywords, ", ")))
		} else {
			feedback = append(feedback, FeedbackNoKeywords)
		}
	}

	ev.Score = ev.KeywordScore
	if ref := reference(q, keywords); ref != "" {
		if sim, ok := e.similarity(ctx, ref, answer); ok {
			ev.Similarity, ev.SimilarityUsed = sim, true
			ev.Score = KeywordWeight*ev.KeywordScore + SimilarityWeight*100*sim
			feedback = append(feedback, fmt.Sprintf("Semantic similarity to expected answer: %.2f%%", 100*sim))
		}
	}
	if !ev.SimilarityUsed {
		feedback = append(feedback, FeedbackSimilarityUnavailable)
	}

	ev.Score = matching.Round2(ev.Score)
	ev.KeywordScore = matching.Round2(ev.KeywordScore)
	ev.Polarity = nlp.Polarity(answer)
	ev.Sentiment = nlp.SentimentLabel(ev.Polarity)
	feedback = append(feedback, fmt.Sprintf("Overall sentiment: %s.", ev.Sentiment))
	ev.Feedback = strings.Join(feedback, " ")
	return ev
}

func (e Evaluator) similarity(ctx domain.Context, ref, answer string) (float64, bool) {
	if e.Similarity == nil {
		return 0, false
	}
	sim, err := e.Similarity.Similarity(ctx, ref, answer)
	if err != nil {
		if !errors.Is(err, domain.ErrCapabilityUnavailable) {
			observability.LoggerFromContext(ctx).Warn("semantic similarity failed", slog.Any("error", err))
		}
		return 0, false
	}
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, true
}

// ExpectedKeywords returns the lower-cased keywords of q. The ideal answer,
// read as a comma-separated list, stands in when no keywords are configured.
func ExpectedKeywords(q domain.ScreeningQuestion) []string {
	if len(q.ExpectedKeywords) > 0 {
		return textx.SplitList(strings.Join(q.ExpectedKeywords, ","))
	}
	return textx.SplitList(q.IdealAnswer)
}

// keywordOverlap returns 100*|matched|/|keywords| using substring
// containment on the lower-cased answer.
func keywordOverlap(keywords []string, answer string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}
	lower := strings.ToLower(answer)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return 100 * float64(len(matched)) / float64(len(keywords)), matched
}

func reference(q domain.ScreeningQuestion, keywords []string) string {
	if s := strings.TrimSpace(q.IdealAnswer); s != "" {
		return s
	}
	return strings.Join(keywords, ", ")
}
