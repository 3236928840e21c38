package nlp

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

var (
	vaderOnce sync.Once
	vader     *govader.SentimentIntensityAnalyzer
)

// Polarity returns the VADER compound score of text, in [-1,1]. VADER handles
// negation, intensifiers and punctuation emphasis. Text without opinion words
// scores 0.
func Polarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	vaderOnce.Do(func() { vader = govader.NewSentimentIntensityAnalyzer() })
	return vader.PolarityScores(text).Compound
}

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentLabel maps a polarity to a sentiment label using a dead band of ±0.1.
func SentimentLabel(p float64) string {
	switch {
	case p > 0.1:
		return SentimentPositive
	case p < -0.1:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
