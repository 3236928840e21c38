package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

// QuestionRepo persists screening questions.
type QuestionRepo struct{ Pool PgxPool }

// NewQuestionRepo constructs a QuestionRepo with the given pool.
func NewQuestionRepo(p PgxPool) *QuestionRepo { return &QuestionRepo{Pool: p} }

const questionColumns = `id, job_id, text, type, expected_keywords, ideal_answer, sort_order`

// ListByJob returns the job's questions ordered by sort order, then id.
func (r *QuestionRepo) ListByJob(ctx domain.Context, jobID string) ([]domain.ScreeningQuestion, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.ListByJob")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "screening_questions"),
	)
	q := `SELECT ` + questionColumns + ` FROM screening_questions WHERE job_id=$1 ORDER BY sort_order ASC, id ASC`
	rows, err := r.Pool.Query(ctx, q, jobID)
	if err != nil {
		return nil, fmt.Errorf("op=question.list_by_job: %w", err)
	}
	defer rows.Close()
	out := []domain.ScreeningQuestion{}
	for rows.Next() {
		sq, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("op=question.list_by_job: %w", err)
		}
		out = append(out, sq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=question.list_by_job: %w", err)
	}
	return out, nil
}

// Get loads a question by id.
func (r *QuestionRepo) Get(ctx domain.Context, id string) (domain.ScreeningQuestion, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Get")
	defer span.End()
	q := `SELECT ` + questionColumns + ` FROM screening_questions WHERE id=$1`
	sq, err := scanQuestion(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScreeningQuestion{}, fmt.Errorf("op=question.get: %w", domain.ErrNotFound)
		}
		return domain.ScreeningQuestion{}, fmt.Errorf("op=question.get: %w", err)
	}
	return sq, nil
}

// Create inserts a question and returns its id (generates one if empty).
func (r *QuestionRepo) Create(ctx domain.Context, sq domain.ScreeningQuestion) (string, error) {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Create")
	defer span.End()
	id := sq.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	q := `INSERT INTO screening_questions (` + questionColumns + `, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.Pool.Exec(ctx, q, id, sq.JobID, sq.Text, string(sq.Type), keywordsOrEmpty(sq.ExpectedKeywords), sq.IdealAnswer, sq.Order, now, now)
	if err != nil {
		return "", fmt.Errorf("op=question.create: %w", err)
	}
	return id, nil
}

// Update overwrites the mutable fields of an existing question.
func (r *QuestionRepo) Update(ctx domain.Context, sq domain.ScreeningQuestion) error {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Update")
	defer span.End()
	q := `UPDATE screening_questions SET text=$2, type=$3, expected_keywords=$4, ideal_answer=$5, sort_order=$6, updated_at=$7 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, sq.ID, sq.Text, string(sq.Type), keywordsOrEmpty(sq.ExpectedKeywords), sq.IdealAnswer, sq.Order, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=question.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=question.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a question by id.
func (r *QuestionRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.questions")
	ctx, span := tracer.Start(ctx, "questions.Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM screening_questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("op=question.delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=question.delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanQuestion(row pgx.Row) (domain.ScreeningQuestion, error) {
	var sq domain.ScreeningQuestion
	var typ string
	var kws []string
	if err := row.Scan(&sq.ID, &sq.JobID, &sq.Text, &typ, &kws, &sq.IdealAnswer, &sq.Order); err != nil {
		return domain.ScreeningQuestion{}, err
	}
	sq.Type = domain.QuestionType(typ)
	if len(kws) > 0 {
		sq.ExpectedKeywords = kws
	}
	return sq, nil
}

func keywordsOrEmpty(k []string) []string {
	if k == nil {
		return []string{}
	}
	return k
}
