// Package docparse extracts plain text from PDF and DOCX documents in process.
package docparse

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	obsmetrics "github.com/fairyhunter13/ai-talent-screener/internal/adapter/observability"
	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
	"github.com/fairyhunter13/ai-talent-screener/pkg/textx"
)

// MIME types of the supported formats.
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor implements domain.TextExtractor with pure-Go parsers.
type Extractor struct{}

// New returns an Extractor.
func New() Extractor { return Extractor{} }

// Extract returns the document text with paragraphs separated by newlines.
// Unsupported formats yield "" and a nil error. Parser failures, including
// parser panics on malformed input, are reported as *domain.ExtractionError.
func (Extractor) Extract(ctx context.Context, data []byte, format domain.DocumentFormat) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if format != domain.FormatPDF && format != domain.FormatDOCX {
		obsmetrics.ObserveExtraction(string(format), "unsupported")
		return "", nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("parser panic: %v", rec)
		}
		outcome := "ok"
		if err != nil {
			err = &domain.ExtractionError{Format: format, Cause: err}
			outcome = "failed"
		}
		obsmetrics.ObserveExtraction(string(format), outcome)
	}()

	if format == domain.FormatPDF {
		text, err = pdfText(data)
	} else {
		text, err = docxText(data)
	}
	if err != nil {
		return "", err
	}
	return textx.SanitizeText(text), nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer func() { _ = doc.Close() }()
	return docxXMLToText(doc.Editable().GetContent()), nil
}

var (
	docxBreakRe = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTabRe   = regexp.MustCompile(`<w:tab\s*/>`)
	docxTagRe   = regexp.MustCompile(`<[^>]+>`)
)

// docxXMLToText flattens WordprocessingML into text, one paragraph per line.
func docxXMLToText(x string) string {
	x = docxBreakRe.ReplaceAllString(x, "\n")
	x = docxTabRe.ReplaceAllString(x, "\t")
	x = docxTagRe.ReplaceAllString(x, "")
	return html.UnescapeString(x)
}

// DetectFormat sniffs the document format from its content, falling back to
// the file extension when the content is inconclusive.
func DetectFormat(data []byte, filename string) domain.DocumentFormat {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is(MIMEPDF):
		return domain.FormatPDF
	case mt.Is(MIMEDOCX):
		return domain.FormatDOCX
	}
	return FormatFromFilename(filename)
}

// FormatFromFilename maps a .pdf or .docx extension to its format.
func FormatFromFilename(name string) domain.DocumentFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return domain.FormatPDF
	case ".docx":
		return domain.FormatDOCX
	}
	return domain.FormatUnknown
}

// FormatFromMIME maps a declared MIME type to its format.
func FormatFromMIME(mt string) domain.DocumentFormat {
	mt = strings.ToLower(strings.TrimSpace(strings.SplitN(mt, ";", 2)[0]))
	switch mt {
	case MIMEPDF:
		return domain.FormatPDF
	case MIMEDOCX:
		return domain.FormatDOCX
	}
	return domain.FormatUnknown
}
