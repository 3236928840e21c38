package extraction

import (
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/vocab"
)

// maxEntitySkillTokens bounds entity mentions promoted to job skills.
const maxEntitySkillTokens = 4

// CandidateSkills returns the canonical form of every vocabulary term
// contained in text, in vocabulary order. Matching is substring containment
// on the lower-cased text.
func CandidateSkills(text string, v *vocab.Vocabulary) []string {
	var acc dedup
	for _, term := range containedTerms(text, v) {
		acc.add(v.Canonical(term))
	}
	return acc.items
}

// JobSkills returns the lower-cased vocabulary terms contained in text plus
// short organization, product, location or misc entities that mention a
// technology brand.
func JobSkills(text string, v *vocab.Vocabulary, annotator domain.Annotator) []string {
	var acc dedup
	for _, term := range containedTerms(text, v) {
		acc.add(term)
	}
	if annotator == nil {
		return acc.items
	}
	for _, e := range annotator.Entities(text) {
		switch e.Label {
		case domain.EntityOrg, domain.EntityProduct, domain.EntityLocation, domain.EntityMisc:
		default:
			continue
		}
		mention := strings.ToLower(collapseSpaces(e.Text))
		if len(strings.Fields(mention)) >= maxEntitySkillTokens || !v.ContainsBrand(mention) {
			continue
		}
		acc.add(mention)
	}
	return acc.items
}

func containedTerms(text string, v *vocab.Vocabulary) []string {
	if v == nil {
		return nil
	}
	lower := strings.ToLower(text)
	var out []string
	for _, term := range v.Skills {
		if strings.Contains(lower, term) {
			out = append(out, term)
		}
	}
	return out
}
