package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fairyhunter13/ai-talent-screener/internal/nlp"
)

const (
	months   = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`
	rangeSep = `[ \t]*(?:-|–|—|to)[ \t]*`
	openEnd  = `(?:present|current|now|till date|to date)`
)

var (
	experienceHeaderRe = regexp.MustCompile(`(?im)^[ \t]*(?:work experience|professional experience|employment history|project experience|experience|projects)[ \t]*:?[ \t]*$`)

	monthRangeRe = regexp.MustCompile(`(?i)\b` + months + `[ \t,]*\d{4}` + rangeSep + `(?:` + months + `[ \t,]*\d{4}|` + openEnd + `)`)
	yearRangeRe  = regexp.MustCompile(`(?i)\b\d{4}` + rangeSep + `(?:\d{4}\b|` + openEnd + `)`)

	jobActionRe = regexp.MustCompile(`(?i)\b(?:managed|developed|implemented|led|created|designed|built|responsibilit(?:y|ies)|achievements?|projects?)\b`)
)

const (
	minExperienceEntryLen    = 50
	minExperienceSentenceLen = 30
	maxHeadingWords          = 6
)

var (
	experienceSectionRule  = Rule{Name: "experience-section", Apply: experienceFromSection}
	experienceSentenceRule = Rule{Name: "experience-sentences", Apply: experienceFromSentences}
)

// ExperienceRules returns the experience strategies in precedence order.
func ExperienceRules() []Rule {
	return []Rule{experienceSectionRule, experienceSentenceRule}
}

// Experience extracts job entries. The section strategy is used whenever an
// experience header is present; otherwise sentences are scanned for job
// actions and date ranges.
func Experience(text string) []string {
	if section, ok := experienceSection(text); ok {
		return RunRules([]Rule{experienceSectionRule}, section)
	}
	return RunRules([]Rule{experienceSentenceRule}, text)
}

// experienceSection returns the text between the first experience header and
// the next one (or the end of the document).
func experienceSection(text string) (string, bool) {
	locs := experienceHeaderRe.FindAllStringIndex(text, 2)
	if len(locs) == 0 {
		return "", false
	}
	end := len(text)
	if len(locs) > 1 {
		end = locs[1][0]
	}
	return text[locs[0][1]:end], true
}

// experienceFromSection splits a section into entries on the first delimiter
// kind that occurs: month-year ranges, then year ranges, then a company line
// followed by a title line.
func experienceFromSection(section string) []string {
	lines := strings.Split(section, "\n")
	cuts := dateCuts(lines, monthRangeRe)
	if len(cuts) == 0 {
		cuts = dateCuts(lines, yearRangeRe)
	}
	if len(cuts) == 0 {
		cuts = headingCuts(lines)
	}
	var out []string
	prev := 0
	for _, c := range append(cuts, len(lines)) {
		entry := collapseSpaces(strings.Join(lines[prev:c], " "))
		if len(entry) > minExperienceEntryLen {
			out = append(out, entry)
		}
		prev = c
	}
	return out
}

// dateCuts returns the indexes of lines holding a date range. A date on the
// line right after a two-line heading cuts at the heading instead.
func dateCuts(lines []string, re *regexp.Regexp) []int {
	var cuts []int
	for i, l := range lines {
		if !re.MatchString(l) {
			continue
		}
		c := i
		for c > 0 && c > i-2 && isHeadingLine(lines[c-1]) && !re.MatchString(lines[c-1]) {
			c--
		}
		if len(cuts) == 0 || c > cuts[len(cuts)-1] {
			cuts = append(cuts, c)
		}
	}
	return cuts
}

// headingCuts finds company lines directly followed by a title line.
func headingCuts(lines []string) []int {
	var cuts []int
	for i := 0; i+1 < len(lines); i++ {
		if isHeadingLine(lines[i]) && isHeadingLine(lines[i+1]) {
			cuts = append(cuts, i)
			i++
		}
	}
	return cuts
}

// isHeadingLine reports a short line whose words all start upper-case and
// which does not end like a sentence.
func isHeadingLine(l string) bool {
	l = strings.TrimSpace(l)
	if l == "" || strings.HasSuffix(l, ".") {
		return false
	}
	words := strings.Fields(l)
	if len(words) > maxHeadingWords {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) && !isConnector(w) {
			return false
		}
	}
	return true
}

func isConnector(w string) bool {
	switch strings.ToLower(w) {
	case "of", "and", "at", "&", "for", "the", "in":
		return true
	}
	return false
}

// experienceFromSentences collects sentences carrying a job action or a date
// range and groups them into entries, starting a new entry at every date.
func experienceFromSentences(text string) []string {
	var (
		out []string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, " "))
		}
		cur = nil
	}
	for _, s := range nlp.Sentences(text) {
		if len(s) <= minExperienceSentenceLen {
			continue
		}
		dated := monthRangeRe.MatchString(s) || yearRangeRe.MatchString(s)
		if !dated && !jobActionRe.MatchString(s) {
			continue
		}
		if dated {
			flush()
		}
		cur = append(cur, s)
	}
	flush()
	return out
}
