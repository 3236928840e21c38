package postgres

import (
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// ResponseRepo persists evaluated answers.
type ResponseRepo struct{ Pool PgxPool }

// NewResponseRepo constructs a ResponseRepo with the given pool.
func NewResponseRepo(p PgxPool) *ResponseRepo { return &ResponseRepo{Pool: p} }

// Record appends one evaluated answer.
func (r *ResponseRepo) Record(ctx domain.Context, rec domain.ResponseRecord) error {
	tracer := otel.Tracer("repo.responses")
	ctx, span := tracer.Start(ctx, "responses.Record")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "screening_responses"),
	)
	facial, err := json.Marshal(rec.Response.Facial)
	if err != nil {
		return fmt.Errorf("op=response.record: %w", err)
	}
	tone, err := json.Marshal(rec.Response.Tone)
	if err != nil {
		return fmt.Errorf("op=response.record: %w", err)
	}
	resp := rec.Response
	q := `INSERT INTO screening_responses (session_id, candidate_id, job_id, question_id, response_text, score, sentiment_polarity, sentiment, feedback, facial, tone, answered_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err = r.Pool.Exec(ctx, q, rec.SessionID, rec.CandidateID, rec.JobID, resp.QuestionID, resp.ResponseText, resp.Score, resp.SentimentPolarity, resp.Sentiment, resp.Feedback, facial, tone, resp.AnsweredAt.UTC())
	if err != nil {
		return fmt.Errorf("op=response.record: %w", err)
	}
	return nil
}

// ListByCandidate returns a candidate's responses oldest first.
func (r *ResponseRepo) ListByCandidate(ctx domain.Context, candidateID string) ([]domain.ResponseRecord, error) {
	tracer := otel.Tracer("repo.responses")
	ctx, span := tracer.Start(ctx, "responses.ListByCandidate")
	defer span.End()
	q := `SELECT session_id, candidate_id, job_id, question_id, response_text, score, sentiment_polarity, sentiment, feedback, facial, tone, answered_at FROM screening_responses WHERE candidate_id=$1 ORDER BY answered_at ASC, id ASC`
	rows, err := r.Pool.Query(ctx, q, candidateID)
	if err != nil {
		return nil, fmt.Errorf("op=response.list_by_candidate: %w", err)
	}
	defer rows.Close()
	out := []domain.ResponseRecord{}
	for rows.Next() {
		var rec domain.ResponseRecord
		var facial, tone []byte
		resp := &rec.Response
		if err := rows.Scan(&rec.SessionID, &rec.CandidateID, &rec.JobID, &resp.QuestionID, &resp.ResponseText, &resp.Score, &resp.SentimentPolarity, &resp.Sentiment, &resp.Feedback, &facial, &tone, &resp.AnsweredAt); err != nil {
			return nil, fmt.Errorf("op=response.list_by_candidate: %w", err)
		}
		if err := json.Unmarshal(facial, &resp.Facial); err != nil {
			return nil, fmt.Errorf("op=response.list_by_candidate: facial: %w", err)
		}
		if err := json.Unmarshal(tone, &resp.Tone); err != nil {
			return nil, fmt.Errorf("op=response.list_by_candidate: tone: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=response.list_by_candidate: %w", err)
	}
	return out, nil
}
