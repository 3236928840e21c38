package screening

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/evaluation"
)

type questionsStub struct {
	mu    sync.Mutex
	byJob map[string][]domain.ScreeningQuestion
	err   error
}

func newQuestionsStub(jobID string, qs ...domain.ScreeningQuestion) *questionsStub {
	return &questionsStub{byJob: map[string][]domain.ScreeningQuestion{jobID: qs}}
}

func (s *questionsStub) ListByJob(_ context.Context, jobID string) ([]domain.ScreeningQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.ScreeningQuestion(nil), s.byJob[jobID]...), nil
}

func (s *questionsStub) add(jobID string, q domain.ScreeningQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byJob[jobID] = append(s.byJob[jobID], q)
}

func (s *questionsStub) Get(context.Context, string) (domain.ScreeningQuestion, error) {
	return domain.ScreeningQuestion{}, domain.ErrNotFound
}
func (s *questionsStub) Create(context.Context, domain.ScreeningQuestion) (string, error) {
	return "", errors.New("not implemented")
}
func (s *questionsStub) Update(context.Context, domain.ScreeningQuestion) error {
	return errors.New("not implemented")
}
func (s *questionsStub) Delete(context.Context, string) error { return errors.New("not implemented") }

type recorderFake struct {
	mu      sync.Mutex
	records []domain.ResponseRecord
	err     error
}

func (r *recorderFake) Record(_ context.Context, rec domain.ResponseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *recorderFake) ListByCandidate(context.Context, string) ([]domain.ResponseRecord, error) {
	return nil, nil
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.SessionEvent
	err    error
}

func (p *publisherFake) Publish(_ context.Context, ev domain.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *publisherFake) types() []domain.SessionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.SessionEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mediaFunc func(ctx context.Context, kind domain.MediaKind, payload []byte) (domain.MediaAnalysis, error)

func (f mediaFunc) Analyze(ctx context.Context, kind domain.MediaKind, payload []byte) (domain.MediaAnalysis, error) {
	return f(ctx, kind, payload)
}

type failingStore struct {
	*MemoryStore
	putErr error
}

func (s failingStore) Put(ctx context.Context, sess domain.ScreeningSession) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryStore.Put(ctx, sess)
}

func newTestManager(qs *questionsStub) (*Manager, *MemoryStore, *recorderFake, *publisherFake) {
	store := NewMemoryStore()
	rec := &recorderFake{}
	pub := &publisherFake{}
	m := NewManager(qs, store, evaluation.NewEvaluator(nil))
	m.Recorder = rec
	m.Events = pub
	m.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return m, store, rec, pub
}

type lockerFake struct {
	mu       sync.Mutex
	err      error
	held     int
	released int
}

func (l *lockerFake) Lock(context.Context, string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.held++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
	}, nil
}
