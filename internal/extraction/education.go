package extraction

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/nlp"
)

var (
	educationKeywordRe = regexp.MustCompile(`(?i)(?:\b(?:b\.?\s?s|m\.?\s?s|b\.?\s?sc|m\.?\s?sc|ph\.?\s?d)\b|\b(?:bachelor'?s?|master'?s?|doctorate|degrees?|diplomas?|universit(?:y|ies)|colleges?|institutes?|academy)\b)`)

	// Phrase-level patterns. Character classes exclude '.' and newlines so a
	// match never crosses a sentence.
	educationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:bachelor(?:'s)?|master(?:'s)?|ph\.?d\.?|doctorate)[ \t]+of[ \t]+\w+(?:[ \t]+in[ \t]+[A-Za-z][\w &-]*)?(?:[ \t]+(?:at|from)[ \t]+[A-Za-z][\w &-]*)?`),
		regexp.MustCompile(`\b(?:[A-Z][A-Za-z&]*[ \t]+)+(?:University|College|Institute|Academy)\b(?:[ \t]+of[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*)?`),
		regexp.MustCompile(`\b[A-Z][A-Z.]+[ \t]+in[ \t]+[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*(?:,[ \t]*\d{4})?`),
		regexp.MustCompile(`(?i)\b(?:master|bachelor|ph\.?d)[ \t]+(?:of[ \t]+)?[\w ]+?[ \t]+from[ \t]+[\w ]+?University\b`),
	}
)

const (
	minEducationSentenceLen   = 20
	minEducationSentenceWords = 5
	minEducationMatchLen      = 10
)

// EducationRules returns the ordered education extraction rules.
func EducationRules() []Rule {
	return []Rule{
		{Name: "education-sentences", Apply: educationSentences},
		{Name: "education-phrases", Apply: educationPatternMatches, SkipCovered: true},
	}
}

// Education extracts education statements: keyword-bearing sentences first,
// then phrase-pattern matches that no collected statement already contains.
func Education(text string) []string { return RunRules(EducationRules(), text) }

func educationSentences(text string) []string {
	var out []string
	for _, s := range nlp.Sentences(text) {
		if len(s) <= minEducationSentenceLen || len(strings.Fields(s)) <= minEducationSentenceWords {
			continue
		}
		if educationKeywordRe.MatchString(s) {
			out = append(out, s)
		}
	}
	return out
}

func educationPatternMatches(text string) []string {
	var out []string
	for _, re := range educationPatterns {
		for _, m := range re.FindAllString(text, -1) {
			m = strings.TrimRight(collapseSpaces(m), " ,&-")
			if len(m) > minEducationMatchLen {
				out = append(out, m)
			}
		}
	}
	return out
}
