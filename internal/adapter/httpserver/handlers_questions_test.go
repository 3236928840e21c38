package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

func TestQuestionsCRUD(t *testing.T) {
	env := newTestEnv(t, stubExtractor{})

	rec := doJSON(t, env.handler, http.MethodPost, "/v1/jobs/job-1/questions",
		`{"text":"Which databases have you used?","expected_keywords":["PostgreSQL"," Redis "]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var q1 domain.ScreeningQuestion
	decodeBody(t, rec, &q1)
	assert.NotEmpty(t, q1.ID)
	assert.Equal(t, "job-1", q1.JobID)
	assert.Equal(t, domain.QuestionText, q1.Type)
	assert.Equal(t, []string{"postgresql", "redis"}, q1.ExpectedKeywords)
	assert.Equal(t, 1, q1.Order)

	rec = doJSON(t, env.handler, http.MethodPost, "/v1/jobs/job-1/questions",
		`{"text":"Introduce yourself","type":"video"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var q2 domain.ScreeningQuestion
	decodeBody(t, rec, &q2)
	assert.Equal(t, 2, q2.Order)

	rec = doJSON(t, env.handler, http.MethodPatch, "/v1/questions/"+q2.ID, `{"order":-1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.handler, http.MethodPatch, "/v1/questions/"+q1.ID, `{"order":3,"ideal_answer":"postgres"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var upd domain.ScreeningQuestion
	decodeBody(t, rec, &upd)
	assert.Equal(t, 3, upd.Order)
	assert.Equal(t, "postgres", upd.IdealAnswer)
	assert.Equal(t, q1.Text, upd.Text)

	rec = doJSON(t, env.handler, http.MethodGet, "/v1/jobs/job-1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		JobID     string                     `json:"job_id"`
		Questions []domain.ScreeningQuestion `json:"questions"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Questions, 2)
	assert.Equal(t, q2.ID, list.Questions[0].ID)
	assert.Equal(t, q1.ID, list.Questions[1].ID)

	rec = doJSON(t, env.handler, http.MethodDelete, "/v1/questions/"+q2.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, env.handler, http.MethodDelete, "/v1/questions/"+q2.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestQuestions_Validation(t *testing.T) {
	env := newTestEnv(t, stubExtractor{})

	rec := doJSON(t, env.handler, http.MethodPost, "/v1/jobs/job-1/questions", `{"text":"Q","type":"essay"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var e errorEnvelope
	decodeBody(t, rec, &e)
	assert.Equal(t, map[string]any{"type": "question_type"}, e.Error.Details)

	rec = doJSON(t, env.handler, http.MethodPost, "/v1/jobs/job-1/questions", `{"type":"text"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.handler, http.MethodGet, "/v1/jobs/bad%20id/questions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.handler, http.MethodPatch, "/v1/questions/missing", `{"text":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, env.handler, http.MethodPatch, "/v1/questions/missing", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCandidateResponsesHandler(t *testing.T) {
	env := newTestEnv(t, stubExtractor{})
	env.responses.recs = []domain.ResponseRecord{
		{SessionID: "s1", CandidateID: "c1", JobID: "j1", Response: domain.ScreeningResponse{QuestionID: "q1", Score: 80}},
		{SessionID: "s2", CandidateID: "c2", JobID: "j1"},
	}

	rec := doJSON(t, env.handler, http.MethodGet, "/v1/candidates/c1/responses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Responses []domain.ResponseRecord `json:"responses"`
	}
	decodeBody(t, rec, &out)
	require.Len(t, out.Responses, 1)
	assert.Equal(t, "q1", out.Responses[0].Response.QuestionID)

	rec = doJSON(t, env.handler, http.MethodGet, "/v1/candidates/nobody/responses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"candidate_id":"nobody","responses":[]}`, rec.Body.String())
}
