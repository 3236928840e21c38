package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	titleRe = regexp.MustCompile(`(?i)\b(engineer|developer|manager|specialist|consultant)\b`)
	// contactRe marks lines such as "Email: ..." that are never a name.
	contactRe = regexp.MustCompile(`(?i)\b(address|email|phone|website)\b`)
)

// Email returns the first e-mail address in text, or "".
func Email(text string) string { return emailRe.FindString(text) }

// Phone returns the first North-American style phone number in text, or "".
func Phone(text string) string { return strings.TrimSpace(phoneRe.FindString(text)) }

// Name returns the candidate name. It prefers the first multi-word PERSON
// entity without an occupational title and falls back to the first title-case
// line of 2 to 4 words that carries no contact keyword.
func Name(text string, annotator domain.Annotator) string {
	if annotator != nil {
		for _, e := range annotator.Entities(text) {
			if e.Label != domain.EntityPerson {
				continue
			}
			name := collapseSpaces(e.Text)
			if len(strings.Fields(name)) > 1 && !titleRe.MatchString(name) {
				return name
			}
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 || !isTitleCase(words) {
			continue
		}
		if contactRe.MatchString(line) {
			continue
		}
		return strings.Join(words, " ")
	}
	return ""
}

// isTitleCase reports whether every word with letters starts with an
// upper-case letter followed only by lower-case letters.
func isTitleCase(words []string) bool {
	cased := false
	for _, w := range words {
		first := true
		for _, r := range w {
			if !unicode.IsLetter(r) {
				first = true
				continue
			}
			if first && !unicode.IsUpper(r) || !first && !unicode.IsLower(r) {
				return false
			}
			first = false
			cased = true
		}
	}
	return cased
}
