package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrRateLimited           = errors.New("rate limited")
	ErrUpstreamTimeout       = errors.New("upstream timeout")
	ErrNoQuestions           = errors.New("no screening questions found for this job")
	ErrSessionNotActive      = errors.New("screening session not active")
	ErrExtractionFailed      = errors.New("text extraction failed")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrInternal              = errors.New("internal error")
)

// DocumentFormat tags an uploaded document. Only pdf and docx are extracted.
type DocumentFormat string

const (
	FormatPDF     DocumentFormat = "pdf"
	FormatDOCX    DocumentFormat = "docx"
	FormatUnknown DocumentFormat = ""
)

// ExtractionError reports a failed extraction. It matches ErrExtractionFailed
// and the underlying cause with errors.Is.
type ExtractionError struct {
	Format DocumentFormat
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Format, e.Cause)
}

func (e *ExtractionError) Unwrap() []error { return []error{ErrExtractionFailed, e.Cause} }

// EntityLabel classifies a named entity returned by an Annotator.
type EntityLabel string

const (
	EntityPerson   EntityLabel = "PERSON"
	EntityOrg      EntityLabel = "ORG"
	EntityProduct  EntityLabel = "PRODUCT"
	EntityLocation EntityLabel = "LOCATION"
	EntityMisc     EntityLabel = "MISC"
)

// Entity is a labelled span of text.
type Entity struct {
	Text  string
	Label EntityLabel
}

// CandidateProfile is the structured view of one resume.
// Invariants: Skills are canonical vocabulary entries without duplicates; the
// profile is built in one pass and never patched afterwards.
type CandidateProfile struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Skills     []string `json:"skills"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
	Summary    string   `json:"summary"`
}

// JobSkillProfile holds the lower-cased skills required by a job description.
// Skills are a pure function of Text and the skill vocabulary.
type JobSkillProfile struct {
	Title  string   `json:"title,omitempty"`
	Text   string   `json:"text,omitempty"`
	Skills []string `json:"skills"`
}

// MatchResult is the skill-overlap score between a candidate and a job.
// Score is a percentage in [0,100] rounded to 2 decimals.
type MatchResult struct {
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
}

// QuestionType enumerates screening question kinds.
type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionVoice          QuestionType = "voice"
	QuestionVideo          QuestionType = "video"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionMultipleChoice, QuestionVoice, QuestionVideo:
		return true
	}
	return false
}

// ScreeningQuestion belongs to exactly one job and is asked in Order.
type ScreeningQuestion struct {
	ID               string       `json:"id"`
	JobID            string       `json:"job_id"`
	Text             string       `json:"text"`
	Type             QuestionType `json:"type"`
	ExpectedKeywords []string     `json:"expected_keywords,omitempty"`
	IdealAnswer      string       `json:"ideal_answer,omitempty"`
	Order            int          `json:"order"`
}

// QuestionUpdate is a partial update. Nil fields are left unchanged.
type QuestionUpdate struct {
	Text             *string
	Type             *QuestionType
	ExpectedKeywords *[]string
	IdealAnswer      *string
	Order            *int
}

// Empty reports whether the update carries no changes.
func (u QuestionUpdate) Empty() bool {
	return u.Text == nil && u.Type == nil && u.ExpectedKeywords == nil && u.IdealAnswer == nil && u.Order == nil
}

// Apply returns q with the non-nil fields of u applied.
func (u QuestionUpdate) Apply(q ScreeningQuestion) ScreeningQuestion {
	if u.Text != nil {
		q.Text = *u.Text
	}
	if u.Type != nil {
		q.Type = *u.Type
	}
	if u.ExpectedKeywords != nil {
		q.ExpectedKeywords = append([]string(nil), (*u.ExpectedKeywords)...)
	}
	if u.IdealAnswer != nil {
		q.IdealAnswer = *u.IdealAnswer
	}
	if u.Order != nil {
		q.Order = *u.Order
	}
	return q
}

// SessionState is the lifecycle state of a screening session.
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionActive    SessionState = "active"
	SessionCompleted SessionState = "completed"
	SessionAborted   SessionState = "aborted"
)

// MediaStatus describes how a media analysis was obtained.
type MediaStatus string

const (
	MediaNotCaptured MediaStatus = "not_captured"
	MediaPlaceholder MediaStatus = "placeholder"
	MediaUnavailable MediaStatus = "unavailable"
)

// MediaAnalysis is the output of a facial or tone analysis.
type MediaAnalysis struct {
	Status  MediaStatus        `json:"status"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Summary string             `json:"summary,omitempty"`
}

// NotCaptured is the analysis recorded when a question does not call for media.
func NotCaptured() MediaAnalysis { return MediaAnalysis{Status: MediaNotCaptured} }

// ScreeningResponse is the evaluated answer to one question.
type ScreeningResponse struct {
	QuestionID        string        `json:"question_id"`
	ResponseText      string        `json:"response_text"`
	Score             float64       `json:"score"`
	SentimentPolarity float64       `json:"sentiment_polarity"`
	Sentiment         string        `json:"sentiment"`
	Feedback          string        `json:"feedback"`
	Facial            MediaAnalysis `json:"facial"`
	Tone              MediaAnalysis `json:"tone"`
	AnsweredAt        time.Time     `json:"answered_at"`
}

// ScreeningSession is the state of one interactive interview.
// Invariants: 0 <= CurrentIndex <= len(Questions); len(Responses) == CurrentIndex;
// Questions are fixed at start.
type ScreeningSession struct {
	ID           string              `json:"id"`
	CandidateID  string              `json:"candidate_id"`
	JobID        string              `json:"job_id"`
	Questions    []ScreeningQuestion `json:"questions"`
	CurrentIndex int                 `json:"current_index"`
	Responses    []ScreeningResponse `json:"responses"`
	State        SessionState        `json:"state"`
	StartedAt    time.Time           `json:"started_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Current returns the question awaiting an answer.
func (s ScreeningSession) Current() (ScreeningQuestion, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return ScreeningQuestion{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// ResponseRecord is a persisted answer with its session coordinates.
type ResponseRecord struct {
	SessionID   string            `json:"session_id"`
	CandidateID string            `json:"candidate_id"`
	JobID       string            `json:"job_id"`
	Response    ScreeningResponse `json:"response"`
}

// SessionEventType names a session lifecycle transition.
type SessionEventType string

const (
	EventSessionStarted   SessionEventType = "session.started"
	EventSessionAnswered  SessionEventType = "session.answered"
	EventSessionCompleted SessionEventType = "session.completed"
	EventSessionAborted   SessionEventType = "session.aborted"
)

// SessionEvent is published on every session transition.
type SessionEvent struct {
	ID          string           `json:"id"`
	Type        SessionEventType `json:"type"`
	SessionID   string           `json:"session_id"`
	CandidateID string           `json:"candidate_id"`
	JobID       string           `json:"job_id"`
	QuestionID  string           `json:"question_id,omitempty"`
	Score       float64          `json:"score,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// Context is an alias so ports can be declared without importing context everywhere.
type Context = context.Context
