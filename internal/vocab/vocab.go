// Package vocab loads the controlled skill vocabulary used for skill extraction.
package vocab

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed skills.yaml
var defaultYAML []byte

// Vocabulary is an ordered, versioned list of lower-cased skill terms plus the
// technology brands used to recognize skill-like named entities.
type Vocabulary struct {
	Version string
	Skills  []string
	Brands  []string
	caser   cases.Caser
	mu      sync.Mutex
}

type vocabYAML struct {
	Version string   `yaml:"version"`
	Skills  []string `yaml:"skills"`
	Brands  []string `yaml:"brands"`
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
	defaultErr   error
)

// Default returns the embedded vocabulary.
func Default() (*Vocabulary, error) {
	defaultOnce.Do(func() { defaultVocab, defaultErr = Parse(defaultYAML) })
	return defaultVocab, defaultErr
}

// Load reads a vocabulary file. An empty path returns the embedded default.
func Load(path string) (*Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	b, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("op=vocab.Load: %w", err)
	}
	v, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("op=vocab.Load: %w", err)
	}
	return v, nil
}

// Parse decodes a vocabulary document. Terms are lower-cased and deduplicated
// keeping the first occurrence.
func Parse(b []byte) (*Vocabulary, error) {
	var doc vocabYAML
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}
	if strings.TrimSpace(doc.Version) == "" {
		return nil, errors.New("vocabulary version is required")
	}
	skills := normalize(doc.Skills)
	if len(skills) == 0 {
		return nil, errors.New("vocabulary has no skills")
	}
	return &Vocabulary{
		Version: doc.Version,
		Skills:  skills,
		Brands:  normalize(doc.Brands),
		caser:   cases.Title(language.English),
	}, nil
}

func normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Canonical returns the title-cased display form of a vocabulary term.
func (v *Vocabulary) Canonical(term string) string {
	// cases.Caser is stateful and not safe for concurrent use.
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.caser.String(term)
}

// ContainsBrand reports whether s mentions a known technology brand.
func (v *Vocabulary) ContainsBrand(s string) bool {
	s = strings.ToLower(s)
	for _, b := range v.Brands {
		if strings.Contains(s, b) {
			return true
		}
	}
	return false
}
