package domain

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrConflict", ErrConflict, "conflict"},
		{"ErrNoQuestions", ErrNoQuestions, "no screening questions found for this job"},
		{"ErrSessionNotActive", ErrSessionNotActive, "screening session not active"},
		{"ErrExtractionFailed", ErrExtractionFailed, "text extraction failed"},
		{"ErrCapabilityUnavailable", ErrCapabilityUnavailable, "capability unavailable"},
		{"ErrInternal", ErrInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, tt.err.Error())
			}
		})
	}
}

func TestExtractionError_MatchesSentinelAndCause(t *testing.T) {
	err := fmt.Errorf("op=profile.candidate: %w", &ExtractionError{Format: FormatPDF, Cause: io.ErrUnexpectedEOF})

	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed in chain")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected cause in chain")
	}
	var xe *ExtractionError
	if !errors.As(err, &xe) || xe.Format != FormatPDF {
		t.Fatalf("expected *ExtractionError with pdf format, got %v", xe)
	}
	if got := xe.Error(); got != "extract pdf: unexpected EOF" {
		t.Errorf("unexpected message %q", got)
	}
}
