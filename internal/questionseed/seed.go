// Package questionseed loads screening questions from YAML files into a
// question repository.
//
// Seeding is idempotent: question ids are derived from the job id and the
// question text, so re-running a seed updates questions in place instead of
// duplicating them.
package questionseed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/pkg/textx"
)

// DefaultPath is the seed file used by SeedDefault.
const DefaultPath = "configs/questions/default.yaml"

type seedYAML struct {
	Jobs []seedJob `yaml:"jobs"`
	// Questions is the flat shape where every item names its job.
	Questions []seedQuestion `yaml:"questions"`
}

type seedJob struct {
	JobID     string         `yaml:"job_id"`
	Questions []seedQuestion `yaml:"questions"`
}

type seedQuestion struct {
	JobID            string   `yaml:"job_id"`
	Text             string   `yaml:"text"`
	Type             string   `yaml:"type"`
	ExpectedKeywords []string `yaml:"expected_keywords"`
	IdealAnswer      string   `yaml:"ideal_answer"`
	Order            int      `yaml:"order"`
}

// Result counts what a seed run changed.
type Result struct {
	Created int
	Updated int
}

// QuestionID returns the deterministic id of a seeded question.
func QuestionID(jobID, text string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("screening-question:"+jobID+":"+strings.TrimSpace(text))).String()
}

// SeedFile upserts every question in the YAML file at path.
func SeedFile(ctx domain.Context, repo domain.QuestionRepository, path string) (Result, error) {
	// Mitigate file inclusion issues by constraining to current working directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return Result{}, err
	}
	abs = filepath.Clean(abs)
	wd = filepath.Clean(wd)
	if os.Getenv("SEED_ALLOW_ABSPATHS") != "1" {
		if !strings.HasPrefix(abs, wd+string(os.PathSeparator)) && abs != wd {
			return Result{}, fmt.Errorf("%w: disallowed path: %s", domain.ErrInvalidArgument, abs)
		}
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: seed file not found: %s", domain.ErrNotFound, path)
		}
		return Result{}, err
	}
	qs, err := Parse(b)
	if err != nil {
		return Result{}, fmt.Errorf("op=questionseed.SeedFile %s: %w", path, err)
	}
	return upsertAll(ctx, repo, qs)
}

// SeedDefault seeds DefaultPath.
func SeedDefault(ctx domain.Context, repo domain.QuestionRepository) (Result, error) {
	return SeedFile(ctx, repo, DefaultPath)
}

// Parse decodes a seed document into questions with ids and orders assigned.
// Questions without an order are numbered by their position within the job.
func Parse(b []byte) ([]domain.ScreeningQuestion, error) {
	var doc seedYAML
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml parse: %v", domain.ErrInvalidArgument, err)
	}
	var out []domain.ScreeningQuestion
	seen := make(map[string]struct{})
	position := make(map[string]int)
	add := func(jobID string, sq seedQuestion) error {
		jobID = strings.TrimSpace(jobID)
		text := strings.TrimSpace(sq.Text)
		if jobID == "" || text == "" {
			return fmt.Errorf("%w: question needs job_id and text", domain.ErrInvalidArgument)
		}
		id := QuestionID(jobID, text)
		if _, dup := seen[id]; dup {
			return nil
		}
		seen[id] = struct{}{}
		position[jobID]++
		q := domain.ScreeningQuestion{
			ID:               id,
			JobID:            jobID,
			Text:             text,
			Type:             domain.QuestionType(strings.ToLower(strings.TrimSpace(sq.Type))),
			ExpectedKeywords: textx.SplitList(strings.Join(sq.ExpectedKeywords, ",")),
			IdealAnswer:      strings.TrimSpace(sq.IdealAnswer),
			Order:            sq.Order,
		}
		if q.Type == "" {
			q.Type = domain.QuestionText
		}
		if !q.Type.Valid() {
			return fmt.Errorf("%w: unknown question type %q", domain.ErrInvalidArgument, sq.Type)
		}
		if q.Order <= 0 {
			q.Order = position[jobID]
		}
		if q.ExpectedKeywords == nil {
			q.ExpectedKeywords = []string{}
		}
		out = append(out, q)
		return nil
	}
	for _, j := range doc.Jobs {
		for _, sq := range j.Questions {
			if err := add(j.JobID, sq); err != nil {
				return nil, err
			}
		}
	}
	for _, sq := range doc.Questions {
		if err := add(sq.JobID, sq); err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no questions to seed", domain.ErrInvalidArgument)
	}
	return out, nil
}

func upsertAll(ctx domain.Context, repo domain.QuestionRepository, qs []domain.ScreeningQuestion) (Result, error) {
	var res Result
	for _, q := range qs {
		_, err := repo.Get(ctx, q.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if _, err := repo.Create(ctx, q); err != nil {
				return res, fmt.Errorf("op=questionseed.create: %w", err)
			}
			res.Created++
		case err != nil:
			return res, fmt.Errorf("op=questionseed.get: %w", err)
		default:
			if err := repo.Update(ctx, q); err != nil {
				return res, fmt.Errorf("op=questionseed.update: %w", err)
			}
			res.Updated++
		}
	}
	return res, nil
}
