package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/screening"
)

type answerResponse struct {
	Response     domain.ScreeningResponse   `json:"response"`
	Next         *domain.ScreeningQuestion  `json:"next_question,omitempty"`
	Finished     bool                       `json:"finished"`
	Responses    []domain.ScreeningResponse `json:"responses,omitempty"`
	OverallScore *float64                   `json:"overall_score,omitempty"`
}

// StartSessionHandler opens a screening session and returns its first question.
func (s *Server) StartSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID   string `json:"session_id" validate:"required,max=100"`
			CandidateID string `json:"candidate_id" validate:"required,max=100"`
			JobID       string `json:"job_id" validate:"required,max=100"`
		}
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		q, err := s.Sessions.Start(r.Context(), screening.StartRequest{
			SessionID:   req.SessionID,
			CandidateID: req.CandidateID,
			JobID:       req.JobID,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"session_id": req.SessionID,
			"state":      domain.SessionActive,
			"question":   q,
		})
	}
}

// SubmitAnswerHandler evaluates the answer to the current question. Media is
// an optional base64 payload of captured audio or video.
func (s *Server) SubmitAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("session_id", id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req struct {
			AnswerText string `json:"answer_text" validate:"max=20000"`
			Media      []byte `json:"media"`
		}
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		out, err := s.Sessions.SubmitAnswer(r.Context(), screening.SubmitRequest{
			SessionID:  id,
			AnswerText: req.AnswerText,
			Media:      req.Media,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		resp := answerResponse{Response: out.Response, Next: out.Next, Finished: out.Finished}
		if out.Finished {
			score := out.OverallScore
			resp.Responses = out.Responses
			resp.OverallScore = &score
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// SessionStateHandler reports the lifecycle state; unknown sessions are idle.
func (s *Server) SessionStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("session_id", id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		st, err := s.Sessions.State(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "state": st})
	}
}

// DisconnectSessionHandler aborts a session.
func (s *Server) DisconnectSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := ValidateID("session_id", id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Sessions.Disconnect(r.Context(), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
