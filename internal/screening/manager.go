// Package screening runs interactive screening sessions: one ordered question
// list per session, each answer evaluated as it arrives.
package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	obsmetrics "github.com/fairyhunter13/ai-talent-screener/internal/adapter/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/evaluation"
	"github.com/fairyhunter13/ai-talent-screener/internal/matching"
	"github.com/fairyhunter13/ai-talent-screener/internal/observability"
)

// DefaultMediaTimeout bounds a single facial or tone analysis.
const DefaultMediaTimeout = 2 * time.Second

var tracer = otel.Tracer("screening.manager")

// AnswerEvaluator scores one answer against its question.
type AnswerEvaluator interface {
	Evaluate(ctx domain.Context, q domain.ScreeningQuestion, answer string) evaluation.Evaluation
}

// StartRequest opens a session. SessionID is the identity of the owning
// connection.
type StartRequest struct {
	SessionID   string
	CandidateID string
	JobID       string
}

// SubmitRequest answers the current question. Media carries captured audio or
// video for voice and video questions and may be empty.
type SubmitRequest struct {
	SessionID  string
	AnswerText string
	Media      []byte
}

// Outcome is the observable result of an accepted answer: either the next
// question or, when Finished, every response of the session.
type Outcome struct {
	Response     domain.ScreeningResponse
	Next         *domain.ScreeningQuestion
	Finished     bool
	Responses    []domain.ScreeningResponse
	OverallScore float64
}

// Manager owns the session state machine. Events for one session are
// processed one at a time; different sessions proceed concurrently.
//
// Recorder, Events and Media are optional. Their failures are logged and never
// fail a session.
type Manager struct {
	Questions domain.QuestionRepository
	Store     domain.SessionStore
	Evaluator AnswerEvaluator

	Recorder domain.ResponseRepository
	Events   domain.SessionEventPublisher
	Media    domain.MediaAnalyzer

	MediaTimeout time.Duration
	// IdleTimeout is how long an active session may go without an answer
	// before Reap aborts it. Zero disables reaping.
	IdleTimeout time.Duration
	Now         func() time.Time

	// Locker serializes session events across processes sharing Store.
	// NewManager sets it when the store implements domain.SessionLocker.
	Locker domain.SessionLocker

	locks keyLock
}

// NewManager constructs a Manager with the required collaborators.
func NewManager(q domain.QuestionRepository, store domain.SessionStore, ev AnswerEvaluator) *Manager {
	m := &Manager{Questions: q, Store: store, Evaluator: ev, MediaTimeout: DefaultMediaTimeout, Now: time.Now}
	if l, ok := store.(domain.SessionLocker); ok {
		m.Locker = l
	}
	return m
}

// lock holds the in-process lock for id and, with a Locker, the shared one.
func (m *Manager) lock(ctx domain.Context, id string) (func(), error) {
	unlock := m.locks.Lock(id)
	if m.Locker == nil {
		return unlock, nil
	}
	release, err := m.Locker.Lock(ctx, id)
	if err != nil {
		unlock()
		return nil, err
	}
	return func() {
		release()
		unlock()
	}, nil
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now().UTC()
}

// Start snapshots the job's questions and activates the session, returning
// the first question. A job without questions yields domain.ErrNoQuestions
// and no session is created.
func (m *Manager) Start(ctx domain.Context, req StartRequest) (domain.ScreeningQuestion, error) {
	if req.SessionID == "" || req.CandidateID == "" || req.JobID == "" {
		return domain.ScreeningQuestion{}, fmt.Errorf("%w: session_id, candidate_id and job_id are required", domain.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "screening.Start")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", req.SessionID), attribute.String("job.id", req.JobID))
	ctx = observability.WithAttrs(ctx, slog.String("session_id", req.SessionID), slog.String("job_id", req.JobID))

	unlock, err := m.lock(ctx, req.SessionID)
	if err != nil {
		return domain.ScreeningQuestion{}, failSpan(span, fmt.Errorf("op=screening.Start: %w", err))
	}
	defer unlock()

	existing, err := m.Store.Get(ctx, req.SessionID)
	switch {
	case err == nil && existing.State == domain.SessionActive:
		return domain.ScreeningQuestion{}, fmt.Errorf("%w: session %s already active", domain.ErrConflict, req.SessionID)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return domain.ScreeningQuestion{}, failSpan(span, fmt.Errorf("op=screening.Start: %w", err))
	}

	qs, err := m.Questions.ListByJob(ctx, req.JobID)
	if err != nil {
		return domain.ScreeningQuestion{}, failSpan(span, fmt.Errorf("op=screening.Start: %w", err))
	}
	if len(qs) == 0 {
		return domain.ScreeningQuestion{}, fmt.Errorf("%w: job %s", domain.ErrNoQuestions, req.JobID)
	}
	snapshot := append([]domain.ScreeningQuestion(nil), qs...)
	sort.SliceStable(snapshot, func(i, j int) bool { return snapshot[i].Order < snapshot[j].Order })

	now := m.now()
	s := domain.ScreeningSession{
		ID:          req.SessionID,
		CandidateID: req.CandidateID,
		JobID:       req.JobID,
		Questions:   snapshot,
		State:       domain.SessionActive,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.Store.Put(ctx, s); err != nil {
		return domain.ScreeningQuestion{}, failSpan(span, fmt.Errorf("op=screening.Start: %w", err))
	}
	obsmetrics.SessionStarted()
	observability.LoggerFromContext(ctx).Info("screening session started", slog.Int("questions", len(snapshot)))
	m.publish(ctx, domain.EventSessionStarted, s, "", 0)
	return snapshot[0], nil
}

// SubmitAnswer evaluates answerText against the current question and advances
// the session. Sessions that are not active reject the answer with
// domain.ErrSessionNotActive and are left unchanged.
func (m *Manager) SubmitAnswer(ctx domain.Context, req SubmitRequest) (Outcome, error) {
	if req.SessionID == "" {
		return Outcome{}, fmt.Errorf("%w: session_id is required", domain.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "screening.SubmitAnswer")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", req.SessionID))
	ctx = observability.WithAttrs(ctx, slog.String("session_id", req.SessionID))

	unlock, err := m.lock(ctx, req.SessionID)
	if err != nil {
		return Outcome{}, failSpan(span, fmt.Errorf("op=screening.SubmitAnswer: %w", err))
	}
	defer unlock()

	s, err := m.Store.Get(ctx, req.SessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return Outcome{}, fmt.Errorf("%w: no session %s", domain.ErrSessionNotActive, req.SessionID)
	}
	if err != nil {
		return Outcome{}, failSpan(span, fmt.Errorf("op=screening.SubmitAnswer: %w", err))
	}
	q, ok := s.Current()
	if s.State != domain.SessionActive || !ok {
		return Outcome{}, fmt.Errorf("%w: session %s is %s", domain.ErrSessionNotActive, req.SessionID, s.State)
	}

	ev := m.Evaluator.Evaluate(ctx, q, req.AnswerText)
	facial, tone := m.analyzeMedia(ctx, q.Type, req.Media)
	now := m.now()
	resp := domain.ScreeningResponse{
		QuestionID:        q.ID,
		ResponseText:      req.AnswerText,
		Score:             ev.Score,
		SentimentPolarity: ev.Polarity,
		Sentiment:         ev.Sentiment,
		Feedback:          ev.Feedback,
		Facial:            facial,
		Tone:              tone,
		AnsweredAt:        now,
	}
	s.Responses = append(s.Responses, resp)
	s.CurrentIndex++
	s.UpdatedAt = now

	out := Outcome{Response: resp}
	next, more := s.Current()
	if more {
		if err := m.Store.Put(ctx, s); err != nil {
			return Outcome{}, failSpan(span, fmt.Errorf("op=screening.SubmitAnswer: %w", err))
		}
		out.Next = &next
	} else {
		if err := m.Store.Delete(ctx, s.ID); err != nil {
			return Outcome{}, failSpan(span, fmt.Errorf("op=screening.SubmitAnswer: %w", err))
		}
		s.State = domain.SessionCompleted
		out.Finished = true
		out.Responses = s.Responses
		out.OverallScore = OverallScore(s.Responses)
	}

	obsmetrics.ObserveAnswer(string(q.Type), resp.Score)
	m.record(ctx, s, resp)
	m.publish(ctx, domain.EventSessionAnswered, s, q.ID, resp.Score)
	if out.Finished {
		obsmetrics.SessionEnded(string(domain.SessionCompleted))
		observability.LoggerFromContext(ctx).Info("screening session completed",
			slog.Int("answers", len(s.Responses)),
			slog.Float64("overall_score", out.OverallScore))
		m.publish(ctx, domain.EventSessionCompleted, s, "", out.OverallScore)
	}
	return out, nil
}

// Disconnect aborts an active session and discards its state. Unknown
// sessions are ignored.
func (m *Manager) Disconnect(ctx domain.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", domain.ErrInvalidArgument)
	}
	ctx, span := tracer.Start(ctx, "screening.Disconnect")
	defer span.End()
	ctx = observability.WithAttrs(ctx, slog.String("session_id", sessionID))

	unlock, err := m.lock(ctx, sessionID)
	if err != nil {
		return failSpan(span, fmt.Errorf("op=screening.Disconnect: %w", err))
	}
	defer unlock()
	return m.abort(ctx, sessionID, "disconnect")
}

// abort must be called with the session lock held.
func (m *Manager) abort(ctx domain.Context, sessionID, reason string) error {
	s, err := m.Store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("op=screening.abort: %w", err)
	}
	if err := m.Store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("op=screening.abort: %w", err)
	}
	if s.State != domain.SessionActive {
		return nil
	}
	s.State = domain.SessionAborted
	obsmetrics.SessionEnded(string(domain.SessionAborted))
	observability.LoggerFromContext(ctx).Info("screening session aborted",
		slog.String("reason", reason),
		slog.Int("answers", len(s.Responses)))
	m.publish(ctx, domain.EventSessionAborted, s, "", 0)
	return nil
}

// State reports the session's state; sessions without a record are idle.
func (m *Manager) State(ctx domain.Context, sessionID string) (domain.SessionState, error) {
	s, err := m.Store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SessionIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("op=screening.State: %w", err)
	}
	return s.State, nil
}

// Reap aborts active sessions idle for longer than IdleTimeout as of now and
// returns how many were aborted.
func (m *Manager) Reap(ctx domain.Context, now time.Time) (int, error) {
	if m.IdleTimeout <= 0 {
		return 0, nil
	}
	sessions, err := m.Store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("op=screening.Reap: %w", err)
	}
	reaped := 0
	for _, s := range sessions {
		if now.Sub(s.UpdatedAt) <= m.IdleTimeout {
			continue
		}
		unlock, err := m.lock(ctx, s.ID)
		if err != nil {
			observability.LoggerFromContext(ctx).Warn("reap session skipped", slog.String("session_id", s.ID), slog.Any("error", err))
			continue
		}
		// the session may have moved on while we were listing
		cur, err := m.Store.Get(ctx, s.ID)
		if err == nil && now.Sub(cur.UpdatedAt) > m.IdleTimeout {
			if err := m.abort(observability.WithAttrs(ctx, slog.String("session_id", s.ID)), s.ID, "idle timeout"); err != nil {
				observability.LoggerFromContext(ctx).Warn("reap session failed", slog.String("session_id", s.ID), slog.Any("error", err))
			} else {
				reaped++
			}
		}
		unlock()
	}
	return reaped, nil
}

// OverallScore is the mean response score rounded to two decimals.
func OverallScore(rs []domain.ScreeningResponse) float64 {
	if len(rs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rs {
		sum += r.Score
	}
	return matching.Round2(sum / float64(len(rs)))
}

func (m *Manager) analyzeMedia(ctx domain.Context, t domain.QuestionType, payload []byte) (facial, tone domain.MediaAnalysis) {
	facial, tone = domain.NotCaptured(), domain.NotCaptured()
	switch t {
	case domain.QuestionVideo:
		facial = m.analyze(ctx, domain.MediaFacial, payload)
		tone = m.analyze(ctx, domain.MediaTone, payload)
	case domain.QuestionVoice:
		tone = m.analyze(ctx, domain.MediaTone, payload)
	}
	return facial, tone
}

type analysisResult struct {
	a   domain.MediaAnalysis
	err error
}

// analyze runs one media analysis under MediaTimeout. Any failure, including
// an analyzer that ignores cancellation, degrades to an unavailable result.
func (m *Manager) analyze(ctx domain.Context, kind domain.MediaKind, payload []byte) domain.MediaAnalysis {
	if len(payload) == 0 {
		return domain.NotCaptured()
	}
	if m.Media == nil {
		return domain.MediaAnalysis{Status: domain.MediaUnavailable}
	}
	timeout := m.MediaTimeout
	if timeout <= 0 {
		timeout = DefaultMediaTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan analysisResult, 1)
	go func() {
		a, err := m.Media.Analyze(ctx, kind, payload)
		done <- analysisResult{a: a, err: err}
	}()
	var res analysisResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	if res.err != nil {
		observability.LoggerFromContext(ctx).Warn("media analysis unavailable",
			slog.String("kind", string(kind)),
			slog.Any("error", res.err))
		return domain.MediaAnalysis{Status: domain.MediaUnavailable}
	}
	return res.a
}

func (m *Manager) record(ctx domain.Context, s domain.ScreeningSession, resp domain.ScreeningResponse) {
	if m.Recorder == nil {
		return
	}
	err := m.Recorder.Record(ctx, domain.ResponseRecord{
		SessionID:   s.ID,
		CandidateID: s.CandidateID,
		JobID:       s.JobID,
		Response:    resp,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("record response failed",
			slog.String("question_id", resp.QuestionID),
			slog.Any("error", err))
	}
}

func (m *Manager) publish(ctx domain.Context, typ domain.SessionEventType, s domain.ScreeningSession, questionID string, score float64) {
	if m.Events == nil {
		return
	}
	ev := domain.SessionEvent{
		ID:          uuid.NewString(),
		Type:        typ,
		SessionID:   s.ID,
		CandidateID: s.CandidateID,
		JobID:       s.JobID,
		QuestionID:  questionID,
		Score:       score,
		OccurredAt:  m.now(),
	}
	if err := m.Events.Publish(ctx, ev); err != nil {
		observability.LoggerFromContext(ctx).Warn("publish session event failed",
			slog.String("event", string(typ)),
			slog.Any("error", err))
	}
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
