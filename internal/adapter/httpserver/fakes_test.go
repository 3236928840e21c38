package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/evaluation"
	"github.com/fairyhunter13/ai-talent-screener/internal/extraction"
	"github.com/fairyhunter13/ai-talent-screener/internal/nlp"
	"github.com/fairyhunter13/ai-talent-screener/internal/screening"
	"github.com/fairyhunter13/ai-talent-screener/internal/usecase"
	"github.com/fairyhunter13/ai-talent-screener/internal/vocab"
)

type memQuestions struct {
	mu   sync.Mutex
	seq  int
	byID map[string]domain.ScreeningQuestion
}

func newMemQuestions() *memQuestions {
	return &memQuestions{byID: map[string]domain.ScreeningQuestion{}}
}

func (m *memQuestions) ListByJob(_ context.Context, jobID string) ([]domain.ScreeningQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.ScreeningQuestion{}
	for _, q := range m.byID {
		if q.JobID == jobID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *memQuestions) Get(_ context.Context, id string) (domain.ScreeningQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.byID[id]
	if !ok {
		return domain.ScreeningQuestion{}, domain.ErrNotFound
	}
	return q, nil
}

func (m *memQuestions) Create(_ context.Context, q domain.ScreeningQuestion) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		m.seq++
		q.ID = fmt.Sprintf("q%d", m.seq)
	}
	m.byID[q.ID] = q
	return q.ID, nil
}

func (m *memQuestions) Update(_ context.Context, q domain.ScreeningQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[q.ID]; !ok {
		return domain.ErrNotFound
	}
	m.byID[q.ID] = q
	return nil
}

func (m *memQuestions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memResponses struct {
	mu   sync.Mutex
	recs []domain.ResponseRecord
}

func (m *memResponses) Record(_ context.Context, r domain.ResponseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, r)
	return nil
}

func (m *memResponses) ListByCandidate(_ context.Context, candidateID string) ([]domain.ResponseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ResponseRecord
	for _, r := range m.recs {
		if r.CandidateID == candidateID {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, []byte, domain.DocumentFormat) (string, error) {
	return s.text, s.err
}

type testEnv struct {
	srv       *Server
	questions *memQuestions
	responses *memResponses
	handler   http.Handler
}

func newTestEnv(t *testing.T, x domain.TextExtractor) *testEnv {
	t.Helper()
	v, err := vocab.Default()
	require.NoError(t, err)
	builder := extraction.NewProfileBuilder(nlp.NewRuleAnnotator(v.Brands), v, 0)

	qs := newMemQuestions()
	rs := &memResponses{}
	mgr := screening.NewManager(qs, screening.NewMemoryStore(), evaluation.NewEvaluator(nil))
	mgr.Recorder = rs

	cfg := config.Config{MaxUploadMB: 1}
	srv := NewServer(cfg,
		usecase.NewProfileService(x, builder),
		usecase.NewQuestionService(qs),
		usecase.NewResponseService(rs),
		mgr,
	)
	return &testEnv{srv: srv, questions: qs, responses: rs, handler: testRouter(srv)}
}

func testRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Use(AcceptJSON)
	r.Post("/v1/profiles/candidate", s.CandidateProfileHandler())
	r.Post("/v1/profiles/job", s.JobProfileHandler())
	r.Post("/v1/match", s.MatchHandler())
	r.Get("/v1/jobs/{jobID}/questions", s.ListQuestionsHandler())
	r.Post("/v1/jobs/{jobID}/questions", s.CreateQuestionHandler())
	r.Patch("/v1/questions/{id}", s.UpdateQuestionHandler())
	r.Delete("/v1/questions/{id}", s.DeleteQuestionHandler())
	r.Get("/v1/candidates/{id}/responses", s.CandidateResponsesHandler())
	r.Post("/v1/sessions", s.StartSessionHandler())
	r.Get("/v1/sessions/{id}", s.SessionStateHandler())
	r.Post("/v1/sessions/{id}/answers", s.SubmitAnswerHandler())
	r.Delete("/v1/sessions/{id}", s.DisconnectSessionHandler())
	r.Get("/readyz", s.ReadyzHandler())
	return r
}
