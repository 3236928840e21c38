package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/ai-talent-screener/internal/adapter/textextractor/docparse"
	"github.com/fairyhunter13/ai-talent-screener/internal/config"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/internal/screening"
	"github.com/fairyhunter13/ai-talent-screener/internal/usecase"
)

// Server aggregates handlers dependencies.
type Server struct {
	Cfg       config.Config
	Profiles  usecase.ProfileService
	Questions usecase.QuestionService
	Responses usecase.ResponseService
	Sessions  *screening.Manager

	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
	KafkaCheck func(ctx context.Context) error
	TikaCheck  func(ctx context.Context) error
}

// NewServer constructs an HTTP server with the screening services wired.
func NewServer(cfg config.Config, profiles usecase.ProfileService, questions usecase.QuestionService, responses usecase.ResponseService, sessions *screening.Manager) *Server {
	return &Server{Cfg: cfg, Profiles: profiles, Questions: questions, Responses: responses, Sessions: sessions}
}

type candidateProfileResponse struct {
	Format   domain.DocumentFormat   `json:"format"`
	Profile  domain.CandidateProfile `json:"profile"`
	Warnings []string                `json:"warnings,omitempty"`
}

// CandidateProfileHandler builds a candidate profile from an uploaded resume.
// Unsupported formats still produce a (blank) profile with a warning.
func (s *Server) CandidateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) || strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code:    "INVALID_ARGUMENT",
					Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: document file required", domain.ErrInvalidArgument), map[string]string{"field": "document"})
			return
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: document read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		format := docparse.FormatFromMIME(mimetype.Detect(data).String())
		if format == domain.FormatUnknown {
			format = docparse.DetectFormat(data, header.Filename)
		}
		out, err := s.Profiles.CandidateFromDocument(r.Context(), data, format)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, candidateProfileResponse{Format: format, Profile: out.Profile, Warnings: out.Warnings})
	}
}

// JobProfileHandler extracts required skills from a job description.
func (s *Server) JobProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title string `json:"title" validate:"max=300"`
			Text  string `json:"text" validate:"required,max=50000"`
		}
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		writeJSON(w, http.StatusOK, s.Profiles.Job(SanitizeString(req.Title), req.Text))
	}
}

// MatchHandler scores a candidate profile against a job skill profile.
func (s *Server) MatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Candidate domain.CandidateProfile `json:"candidate"`
			Job       domain.JobSkillProfile  `json:"job"`
		}
		if details, err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, details)
			return
		}
		writeJSON(w, http.StatusOK, s.Profiles.Match(req.Candidate, req.Job))
	}
}

// ReadyzHandler returns a readiness handler that probes DB, Redis, Kafka and Tika.
// Unwired probes are skipped.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name  string
			check func(context.Context) error
		}{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
			{"kafka", s.KafkaCheck},
			{"tika", s.TikaCheck},
		}
		checks := make([]usecase.ReadinessCheck, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.check == nil {
				continue
			}
			if err := p.check(ctx); err != nil {
				ok = false
				checks = append(checks, usecase.ReadinessCheck{Name: p.name, OK: false, Details: err.Error()})
				continue
			}
			checks = append(checks, usecase.ReadinessCheck{Name: p.name, OK: true})
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
