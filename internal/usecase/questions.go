package usecase

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/pkg/textx"
)

// QuestionService manages the screening questions of a job.
type QuestionService struct {
	Repo domain.QuestionRepository
}

// NewQuestionService constructs a QuestionService with the given repo.
func NewQuestionService(r domain.QuestionRepository) QuestionService {
	return QuestionService{Repo: r}
}

// ListByJob returns the job's questions in asking order.
func (s QuestionService) ListByJob(ctx domain.Context, jobID string) ([]domain.ScreeningQuestion, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("%w: job id required", domain.ErrInvalidArgument)
	}
	return s.Repo.ListByJob(ctx, jobID)
}

// Add validates and stores a question. When Order is zero the question is
// appended after the job's current last question.
func (s QuestionService) Add(ctx domain.Context, q domain.ScreeningQuestion) (domain.ScreeningQuestion, error) {
	q = normalizeQuestion(q)
	if err := validateQuestion(q); err != nil {
		return domain.ScreeningQuestion{}, err
	}
	if q.Order == 0 {
		existing, err := s.Repo.ListByJob(ctx, q.JobID)
		if err != nil {
			return domain.ScreeningQuestion{}, err
		}
		q.Order = 1
		for _, e := range existing {
			if e.Order >= q.Order {
				q.Order = e.Order + 1
			}
		}
	}
	id, err := s.Repo.Create(ctx, q)
	if err != nil {
		return domain.ScreeningQuestion{}, err
	}
	q.ID = id
	return q, nil
}

// Update applies a partial update. Sessions already started keep their own
// snapshot and are unaffected.
func (s QuestionService) Update(ctx domain.Context, id string, u domain.QuestionUpdate) (domain.ScreeningQuestion, error) {
	if strings.TrimSpace(id) == "" {
		return domain.ScreeningQuestion{}, fmt.Errorf("%w: question id required", domain.ErrInvalidArgument)
	}
	if u.Empty() {
		return domain.ScreeningQuestion{}, fmt.Errorf("%w: no fields to update", domain.ErrInvalidArgument)
	}
	cur, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.ScreeningQuestion{}, err
	}
	next := normalizeQuestion(u.Apply(cur))
	if err := validateQuestion(next); err != nil {
		return domain.ScreeningQuestion{}, err
	}
	if err := s.Repo.Update(ctx, next); err != nil {
		return domain.ScreeningQuestion{}, err
	}
	return next, nil
}

// Delete removes a question.
func (s QuestionService) Delete(ctx domain.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: question id required", domain.ErrInvalidArgument)
	}
	return s.Repo.Delete(ctx, id)
}

func normalizeQuestion(q domain.ScreeningQuestion) domain.ScreeningQuestion {
	q.JobID = strings.TrimSpace(q.JobID)
	q.Text = strings.TrimSpace(q.Text)
	q.IdealAnswer = strings.TrimSpace(q.IdealAnswer)
	if q.Type == "" {
		q.Type = domain.QuestionText
	}
	if q.ExpectedKeywords != nil {
		q.ExpectedKeywords = textx.SplitList(strings.Join(q.ExpectedKeywords, ","))
	}
	return q
}

func validateQuestion(q domain.ScreeningQuestion) error {
	switch {
	case q.JobID == "":
		return fmt.Errorf("%w: job id required", domain.ErrInvalidArgument)
	case q.Text == "":
		return fmt.Errorf("%w: question text required", domain.ErrInvalidArgument)
	case !q.Type.Valid():
		return fmt.Errorf("%w: unknown question type %q", domain.ErrInvalidArgument, q.Type)
	case q.Order < 0:
		return fmt.Errorf("%w: order must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}
