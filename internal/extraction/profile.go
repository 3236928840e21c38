package extraction

import (
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/vocab"
	"github.com/fairyhunter13/ai-talent-screener/pkg/textx"
)

// DefaultSummaryLength is the number of characters kept in a profile summary.
const DefaultSummaryLength = 500

// ProfileBuilder composes the field extractors into profiles. It holds no
// mutable state and is safe for concurrent use.
type ProfileBuilder struct {
	Annotator  domain.Annotator
	Vocabulary *vocab.Vocabulary
	SummaryLen int
}

// NewProfileBuilder constructs a ProfileBuilder. A non-positive summaryLen
// selects DefaultSummaryLength.
func NewProfileBuilder(a domain.Annotator, v *vocab.Vocabulary, summaryLen int) ProfileBuilder {
	if summaryLen <= 0 {
		summaryLen = DefaultSummaryLength
	}
	return ProfileBuilder{Annotator: a, Vocabulary: v, SummaryLen: summaryLen}
}

// BuildCandidate derives a candidate profile from resume text. Missing fields
// are left empty.
func (b ProfileBuilder) BuildCandidate(text string) domain.CandidateProfile {
	text = textx.SanitizeText(text)
	return domain.CandidateProfile{
		Name:       Name(text, b.Annotator),
		Email:      Email(text),
		Phone:      Phone(text),
		Skills:     CandidateSkills(text, b.Vocabulary),
		Education:  Education(text),
		Experience: Experience(text),
		Summary:    textx.Truncate(text, b.SummaryLen, "..."),
	}
}

// BuildJob derives a job skill profile from a job description.
func (b ProfileBuilder) BuildJob(title, text string) domain.JobSkillProfile {
	text = textx.SanitizeText(text)
	return domain.JobSkillProfile{
		Title:  strings.TrimSpace(title),
		Text:   text,
		Skills: JobSkills(text, b.Vocabulary, b.Annotator),
	}
}
