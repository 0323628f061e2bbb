package aimodel

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	apperrors "github.com/StuFraser/aqua-ripple/pkg/errors"
)

const excerptLimit = 300

var fencePattern = regexp.MustCompile("(?m)^```(?:json)?\\s*|\\s*```$")

// StripCodeFence removes markdown code fences the model sometimes wraps around JSON.
func StripCodeFence(text string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(text), ""))
}

// Excerpt returns at most the first 300 characters of text.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit])
}

// DecodeJSON strips fences from text and decodes it into out.
// Syntax errors are malformed_ai_response; type mismatches are schema_validation_error.
func DecodeJSON(text string, out any) error {
	raw := StripCodeFence(text)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperrors.Wrap(apperrors.CodeSchemaValidationError, "AI response failed schema validation", err)
		}
		return apperrors.Wrap(apperrors.CodeMalformedAIResponse, "AI returned malformed JSON (raw response: "+Excerpt(text)+")", err)
	}
	return nil
}
