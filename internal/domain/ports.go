package domain

// TextExtractor turns raw document bytes into plain text. Unsupported formats
// yield "" and a nil error; failures yield an *ExtractionError.
type TextExtractor interface {
	Extract(ctx Context, data []byte, format DocumentFormat) (string, error)
}

// Annotator recognizes named entities in free text.
type Annotator interface {
	Entities(text string) []Entity
}

// QuestionRepository stores screening questions per job.
type QuestionRepository interface {
	// ListByJob returns the job's questions sorted by Order.
	ListByJob(ctx Context, jobID string) ([]ScreeningQuestion, error)
	Get(ctx Context, id string) (ScreeningQuestion, error)
	Create(ctx Context, q ScreeningQuestion) (string, error)
	Update(ctx Context, q ScreeningQuestion) error
	Delete(ctx Context, id string) error
}

// ResponseRepository persists evaluated answers as they are recorded.
type ResponseRepository interface {
	Record(ctx Context, r ResponseRecord) error
	ListByCandidate(ctx Context, candidateID string) ([]ResponseRecord, error)
}

// SessionStore holds live screening sessions keyed by session id.
// Get returns ErrNotFound when no session exists.
type SessionStore interface {
	Get(ctx Context, id string) (ScreeningSession, error)
	Put(ctx Context, s ScreeningSession) error
	Delete(ctx Context, id string) error
	List(ctx Context) ([]ScreeningSession, error)
}

// SessionLocker serializes events for one session across processes. Lock
// returns ErrConflict when the session stays locked past the wait budget.
type SessionLocker interface {
	Lock(ctx Context, id string) (unlock func(), err error)
}

// SessionEventPublisher emits session lifecycle events.
type SessionEventPublisher interface {
	Publish(ctx Context, ev SessionEvent) error
}

// Embedder returns embedding vectors for texts.
type Embedder interface {
	Embed(ctx Context, texts []string) ([][]float32, error)
}

// SimilarityScorer returns semantic similarity in [0,1] between two texts.
// It returns ErrCapabilityUnavailable when no model is configured.
type SimilarityScorer interface {
	Similarity(ctx Context, a, b string) (float64, error)
}

// MediaKind selects the analysis performed by a MediaAnalyzer.
type MediaKind string

const (
	MediaFacial MediaKind = "facial"
	MediaTone   MediaKind = "tone"
)

// MediaAnalyzer analyzes captured video frames or audio.
type MediaAnalyzer interface {
	Analyze(ctx Context, kind MediaKind, payload []byte) (MediaAnalysis, error)
}
