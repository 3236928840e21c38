package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-talent-screener/internal/domain"
)

const maxJSONBody = 1 << 20

var (
	vldOnce sync.Once
	vld     *validator.Validate
	idRe    = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		_ = vld.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || domain.QuestionType(s).Valid()
		})
	})
	return vld
}

// ValidateID checks a path identifier: required, at most 100 characters and
// limited to alphanumerics and the separators "_.:-".
func ValidateID(field, id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidArgument, field)
	case len(id) > 100:
		return fmt.Errorf("%w: %s is too long (max 100 characters)", domain.ErrInvalidArgument, field)
	case !idRe.MatchString(id):
		return fmt.Errorf("%w: %s contains invalid characters", domain.ErrInvalidArgument, field)
	}
	return nil
}

// decodeJSON reads a capped JSON body into dst and runs struct validation.
// The returned details map field names to the failed validation tag.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty body", domain.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument)
	}
	if err := getValidator().Struct(dst); err != nil {
		verrs := map[string]string{}
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				verrs[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		return verrs, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument)
	}
	return nil, nil
}

// SanitizeString strips control characters and invalid UTF-8 from
// user-supplied free text and trims surrounding whitespace.
func SanitizeString(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || (r >= 32 && r != 127) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}
