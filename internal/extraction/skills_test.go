package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/nlp"
	"github.com/fairyhunter13/ai-talent-screener/internal/vocab"
)

func defaultVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.Default()
	require.NoError(t, err)
	return v
}

func TestCandidateSkills_CanonicalFormsInVocabularyOrder(t *testing.T) {
	v := defaultVocab(t)
	got := CandidateSkills("Experienced in Python, Excel and machine learning.", v)
	assert.Equal(t, []string{"Python", "Machine Learning", "Excel"}, got)
}

func TestCandidateSkills_ContainmentMatching(t *testing.T) {
	v := defaultVocab(t)
	got := CandidateSkills("Operated NoSQL stores", v)
	assert.Contains(t, got, "Sql")
	assert.Contains(t, got, "Nosql")
}

func TestCandidateSkills_NoVocabulary(t *testing.T) {
	assert.Empty(t, CandidateSkills("Python", nil))
	assert.Empty(t, CandidateSkills("", defaultVocab(t)))
}

func TestJobSkills_TermsAndBrandEntities(t *testing.T) {
	v := defaultVocab(t)
	text := "We need Python and SQL. Experience with AWS Lambda preferred."

	got := JobSkills(text, v, nlp.NewRuleAnnotator(v.Brands))

	assert.Equal(t, []string{"python", "sql", "aws", "aws lambda"}, got)
}

func TestJobSkills_EntityFilter(t *testing.T) {
	v := defaultVocab(t)
	a := fixedAnnotator{
		{Text: "Docker Inc", Label: domain.EntityOrg},
		{Text: "Jenkins Smith", Label: domain.EntityPerson},
		{Text: "Oracle Cloud Infrastructure Services", Label: domain.EntityProduct},
		{Text: "Contoso Labs", Label: domain.EntityOrg},
	}

	got := JobSkills("plain text", v, a)

	assert.Equal(t, []string{"docker inc"}, got)
}

func TestJobSkills_NilAnnotator(t *testing.T) {
	v := defaultVocab(t)
	assert.Equal(t, []string{"python", "sql"}, JobSkills("python and sql", v, nil))
}
