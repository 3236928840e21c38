package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/usecase"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	decodeBody(t, rec, &env)
	return env.Error.Code
}

func multipartUpload(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestCandidateProfileHandler_PDF(t *testing.T) {
	env := newTestEnv(t, stubExtractor{text: "Jane Doe\njane@example.com\nSkilled in Python and SQL."})
	body, ct := multipartUpload(t, "document", "resume.pdf", []byte("%PDF-1.4\n%fake"))
	req := httptest.NewRequest(http.MethodPost, "/v1/profiles/candidate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out candidateProfileResponse
	decodeBody(t, rec, &out)
	assert.Equal(t, domain.FormatPDF, out.Format)
	assert.Equal(t, "jane@example.com", out.Profile.Email)
	assert.Contains(t, out.Profile.Skills, "Python")
	assert.Empty(t, out.Warnings)
}

func TestCandidateProfileHandler_ExtractionFailureIsWarning(t *testing.T) {
	env := newTestEnv(t, stubExtractor{err: &domain.ExtractionError{Format: domain.FormatDOCX, Cause: errors.New("corrupt")}})
	body, ct := multipartUpload(t, "document", "resume.docx", []byte("not really a zip"))
	req := httptest.NewRequest(http.MethodPost, "/v1/profiles/candidate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out candidateProfileResponse
	decodeBody(t, rec, &out)
	assert.Equal(t, domain.FormatDOCX, out.Format)
	assert.Equal(t, []string{usecase.WarnExtractionFailed}, out.Warnings)
	assert.Empty(t, out.Profile.Skills)
}

func TestCandidateProfileHandler_UnsupportedFormat(t *testing.T) {
	env := newTestEnv(t, stubExtractor{text: "should not be used"})
	body, ct := multipartUpload(t, "document", "resume.txt", []byte("plain text resume"))
	req := httptest.NewRequest(http.MethodPost, "/v1/profiles/candidate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out candidateProfileResponse
	decodeBody(t, rec, &out)
	assert.Equal(t, []string{usecase.WarnUnsupportedFormat}, out.Warnings)
}

func TestCandidateProfileHandler_BadRequests(t *testing.T) {
	env := newTestEnv(t, stubExtractor{})

	rec := doJSON(t, env.handler, http.MethodPost, "/v1/profiles/candidate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct := multipartUpload(t, "resume", "resume.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/v1/profiles/candidate", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big, ct := multipartUpload(t, "document", "resume.pdf", bytes.Repeat([]byte("a"), 3<<20))
	req = httptest.NewRequest(http.MethodPost, "/v1/profiles/candidate", big)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestJobProfileAndMatch(t *testing.T) {
	env := newTestEnv(t, stubExtractor{})

	rec := doJSON(t, env.handler, http.MethodPost, "/v1/profiles/job", `{"title":"Data Engineer","text":"We need Python and SQL."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var job domain.JobSkillProfile
	decodeBody(t, rec, &job)
	assert.Equal(t, "Data Engineer", job.Title)
	assert.Equal(t, []string{"python", "sql"}, job.Skills)

	rec = doJSON(t, env.handler, http.MethodPost, "/v1/match", `{"candidate":{"skills":["Python"]},"job":{"skills":["python","sql"]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var m domain.MatchResult
	decodeBody(t, rec, &m)
	assert.Equal(t, 50.0, m.Score)
	assert.Equal(t, []string{"python"}, m.MatchedSkills)
}

func TestJobProfile_Validation(t *testing.T) {
	env := newTestEnv(t, stubExtractor{})

	rec := doJSON(t, env.handler, http.MethodPost, "/v1/profiles/job", `{"title":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env2 errorEnvelope
	decodeBody(t, rec, &env2)
	assert.Equal(t, "INVALID_ARGUMENT", env2.Error.Code)
	assert.Equal(t, map[string]any{"text": "required"}, env2.Error.Details)

	rec = doJSON(t, env.handler, http.MethodPost, "/v1/profiles/job", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.handler, http.MethodPost, "/v1/profiles/job", `{"text":"x","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadyzHandler(t *testing.T) {
	env := newTestEnv(t, stubExtractor{})
	env.srv.DBCheck = func(context.Context) error { return nil }
	env.srv.RedisCheck = func(context.Context) error { return errors.New("down") }

	rec := doJSON(t, env.handler, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var out struct {
		Checks []usecase.ReadinessCheck `json:"checks"`
	}
	decodeBody(t, rec, &out)
	require.Len(t, out.Checks, 2)
	assert.Equal(t, usecase.ReadinessCheck{Name: "db", OK: true}, out.Checks[0])
	assert.Equal(t, usecase.ReadinessCheck{Name: "redis", OK: false, Details: "down"}, out.Checks[1])

	env.srv.RedisCheck = nil
	rec = doJSON(t, env.handler, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
