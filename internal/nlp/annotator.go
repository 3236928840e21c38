package nlp

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// ProseAnnotator recognizes entities with the prose statistical tagger.
type ProseAnnotator struct{}

// NewProseAnnotator constructs a ProseAnnotator.
func NewProseAnnotator() ProseAnnotator { return ProseAnnotator{} }

// Entities implements domain.Annotator. Tagger failures yield no entities.
func (ProseAnnotator) Entities(text string) (ents []domain.Entity) {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("prose tagger panicked", slog.Any("recover", rec))
			ents = nil
		}
	}()
	doc, err := prose.NewDocument(text)
	if err != nil {
		slog.Warn("prose document failed", slog.Any("error", err))
		return nil
	}
	for _, e := range doc.Entities() {
		ents = append(ents, domain.Entity{Text: e.Text, Label: proseLabel(e.Label)})
	}
	return ents
}

func proseLabel(l string) domain.EntityLabel {
	switch strings.ToUpper(l) {
	case "PERSON":
		return domain.EntityPerson
	case "ORG", "ORGANIZATION":
		return domain.EntityOrg
	case "PRODUCT":
		return domain.EntityProduct
	case "GPE", "LOC", "LOCATION":
		return domain.EntityLocation
	default:
		return domain.EntityMisc
	}
}

// Chain merges the entities of several annotators in order, dropping exact
// duplicates.
type Chain []domain.Annotator

// Entities implements domain.Annotator.
func (c Chain) Entities(text string) []domain.Entity {
	var out []domain.Entity
	seen := map[domain.Entity]struct{}{}
	for _, a := range c {
		if a == nil {
			continue
		}
		for _, e := range a.Entities(text) {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

var (
	tokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+#.&'-]*[,;:]?`)

	orgSuffixes = map[string]struct{}{
		"inc": {}, "corp": {}, "corporation": {}, "llc": {}, "ltd": {}, "gmbh": {}, "company": {},
		"university": {}, "college": {}, "institute": {}, "academy": {}, "labs": {},
		"technologies": {}, "systems": {}, "solutions": {}, "group": {}, "bank": {},
	}
	// words that start capitalized runs in resumes but are never part of a name
	nonNameWords = map[string]struct{}{
		"experience": {}, "education": {}, "skills": {}, "summary": {}, "profile": {},
		"projects": {}, "project": {}, "objective": {}, "contact": {}, "work": {},
		"employment": {}, "history": {}, "professional": {}, "references": {},
		"certifications": {}, "languages": {}, "interests": {}, "curriculum": {}, "vitae": {},
		"resume": {}, "the": {}, "and": {}, "of": {}, "in": {}, "at": {}, "for": {},
		"present": {}, "current": {}, "email": {}, "phone": {}, "address": {}, "website": {},
	}
)

// RuleAnnotator is a heuristic recognizer over capitalized word runs. It needs
// no model and is fully deterministic.
type RuleAnnotator struct {
	// Brands are lower-cased technology brands; runs mentioning one are products.
	Brands []string
}

// NewRuleAnnotator constructs a RuleAnnotator for the given brands.
func NewRuleAnnotator(brands []string) RuleAnnotator { return RuleAnnotator{Brands: brands} }

// Entities implements domain.Annotator.
func (a RuleAnnotator) Entities(text string) []domain.Entity {
	var out []domain.Entity
	for _, line := range strings.Split(text, "\n") {
		for _, run := range capitalizedRuns(line) {
			if label, ok := a.classify(run); ok {
				out = append(out, domain.Entity{Text: strings.Join(run, " "), Label: label})
			}
		}
	}
	return out
}

func (a RuleAnnotator) classify(run []string) (domain.EntityLabel, bool) {
	joined := strings.ToLower(strings.Join(run, " "))
	for _, b := range a.Brands {
		if b != "" && strings.Contains(joined, b) {
			return domain.EntityProduct, true
		}
	}
	last := strings.ToLower(strings.TrimSuffix(run[len(run)-1], "."))
	if _, ok := orgSuffixes[last]; ok && len(run) > 1 {
		return domain.EntityOrg, true
	}
	if len(run) >= 2 && len(run) <= 3 && looksLikeName(run) {
		return domain.EntityPerson, true
	}
	return "", false
}

func looksLikeName(run []string) bool {
	for _, w := range run {
		if _, ok := nonNameWords[strings.ToLower(w)]; ok {
			return false
		}
		rs := []rune(w)
		if len(rs) < 2 || !unicode.IsUpper(rs[0]) {
			return false
		}
		for _, r := range rs[1:] {
			if !unicode.IsLower(r) && r != '\'' && r != '-' {
				return false
			}
		}
	}
	return true
}

// capitalizedRuns groups adjacent capitalized tokens of a line. Trailing
// punctuation on a token closes the run it belongs to.
func capitalizedRuns(line string) [][]string {
	var (
		runs [][]string
		cur  []string
		prev = -1
	)
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, cur)
		}
		cur = nil
	}
	for _, loc := range tokenRe.FindAllStringIndex(line, -1) {
		tok := line[loc[0]:loc[1]]
		if prev >= 0 && strings.TrimSpace(line[prev:loc[0]]) != "" {
			flush()
		}
		prev = loc[1]
		closes := strings.ContainsAny(tok[len(tok)-1:], ",;:")
		word := strings.TrimRight(tok, ",;:")
		if word != "" && unicode.IsUpper(rune(word[0])) {
			cur = append(cur, strings.TrimSuffix(word, "."))
			if closes || strings.HasSuffix(word, ".") {
				flush()
			}
			continue
		}
		flush()
	}
	flush()
	return runs
}
