package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

type questionRequest struct {
	Text             string   `json:"text" validate:"required,max=2000"`
	Type             string   `json:"type" validate:"question_type"`
	ExpectedKeywords []string `json:"expected_keywords" validate:"max=50,dive,max=100"`
	IdealAnswer      string   `json:"ideal_answer" validate:"max=5000"`
	Order            int      `json:"order" validate:"min=0"`
}

type questionPatch struct {
	Text             *string   `json:"text" validate:"omitempty,min=1,max=2000"`
	Type             *string   `json:"type" validate:"omitempty,question_type"`
	ExpectedKeywords *[]string `json:"expected_keywords" validate:"omitempty,max=50"`
	IdealAnswer      *string   `json:"ideal_answer" validate:"omitempty,max=5000"`
	Order            *int      `json:"order" validate:"omitempty,min=1"`
}

func (p questionPatch) update() domain.QuestionUpdate {
	u := domain.QuestionUpdate{
		Text:             p.Text,
		ExpectedKeywords: p.ExpectedKeywords,
		IdealAnswer:      p.IdealAnswer,
		Order:            p.Order,
	}
	if p.Type != nil {
		t := domain.QuestionType(*p.Type)
		u.Type = &t
	}
	return u
}

// ListQuestionsHandler returns a job's questions in asking order.
func (s *Server) ListQuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if err := ValidateID("job_id", jobID); err != nil {
			writeError(w, r, err, nil)
			return
		}
		qs, err := s.Questions.ListByJob(r.Context(), jobID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"job_id": jobID, "questions": qs})
	}
}

// CreateQuestionHandler appends a question to a job.
func (s *Server) CreateQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if err := ValidateID("job_id", jobID); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req questionRequest
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		q, err := s.Questions.Add(r.Context(), domain.ScreeningQuestion{
			JobID:            jobID,
			Text:             SanitizeString(req.Text),
			Type:             domain.QuestionType(req.Type),
			ExpectedKeywords: req.ExpectedKeywords,
			IdealAnswer:      req.IdealAnswer,
			Order:            req.Order,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// UpdateQuestionHandler applies a partial update. Absent fields are unchanged.
func (s *Server) UpdateQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("id", id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req questionPatch
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		q, err := s.Questions.Update(r.Context(), id, req.update())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// DeleteQuestionHandler removes a question.
func (s *Server) DeleteQuestionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("id", id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Questions.Delete(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CandidateResponsesHandler lists every recorded answer of a candidate.
func (s *Server) CandidateResponsesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("candidate_id", id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		recs, err := s.Responses.ListByCandidate(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if recs == nil {
			recs = []domain.ResponseRecord{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"candidate_id": id, "responses": recs})
	}
}
