// Package nlp provides the lightweight language capabilities used by the
// extractors: sentence segmentation, named-entity annotation and polarity
// scoring.
package nlp

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// abbreviations never terminate a sentence.
var abbreviations = map[string]struct{}{
	"b.s.": {}, "m.s.": {}, "b.a.": {}, "m.a.": {}, "ph.d.": {}, "b.sc.": {}, "m.sc.": {},
	"b.tech.": {}, "m.tech.": {}, "mba.": {}, "dr.": {}, "mr.": {}, "mrs.": {}, "ms.": {},
	"prof.": {}, "jr.": {}, "sr.": {}, "st.": {}, "inc.": {}, "ltd.": {}, "co.": {},
	"corp.": {}, "e.g.": {}, "i.e.": {}, "etc.": {}, "vs.": {}, "u.s.": {}, "no.": {},
	"jan.": {}, "feb.": {}, "mar.": {}, "apr.": {}, "jun.": {}, "jul.": {}, "aug.": {},
	"sep.": {}, "sept.": {}, "oct.": {}, "nov.": {}, "dec.": {},
}

// Sentences splits text into sentences with the prose segmenter. Line breaks
// always end a sentence. A split right after a known abbreviation or a
// single-letter initial is undone. Whitespace inside each sentence is
// collapsed to single spaces.
func Sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var cur string
		for _, s := range segmentLine(line) {
			s = strings.Join(strings.Fields(s), " ")
			if s == "" {
				continue
			}
			if cur == "" {
				cur = s
				continue
			}
			if continuesAfter(cur) {
				cur += " " + s
				continue
			}
			out = append(out, cur)
			cur = s
		}
		if cur != "" {
			out = append(out, cur)
		}
	}
	return out
}

func segmentLine(line string) []string {
	doc, err := prose.NewDocument(line, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		slog.Warn("prose segmentation failed", slog.Any("error", err))
		return []string{line}
	}
	sents := doc.Sentences()
	if len(sents) == 0 {
		return []string{line}
	}
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out
}

// continuesAfter reports whether a segment ending like s was cut at an
// abbreviation rather than at a sentence end.
func continuesAfter(s string) bool {
	fields := strings.Fields(s)
	w := strings.TrimRight(fields[len(fields)-1], `"')]`)
	if !strings.HasSuffix(w, ".") {
		return false
	}
	lw := strings.ToLower(strings.TrimLeft(w, `"'([`))
	if _, ok := abbreviations[lw]; ok {
		return true
	}
	// "J." style initials
	r := []rune(lw)
	return len(r) == 2 && unicode.IsLetter(r[0])
}
