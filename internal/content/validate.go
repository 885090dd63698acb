package content

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/repurposer/internal/platform"
)

// MinContentWords is the minimum word count for pasted content.
const MinContentWords = 50

// ValidationError is a client-correctable input problem. It never
// originates from a remote call failing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// WordCount counts whitespace-separated tokens. Leading and trailing
// whitespace is ignored and any run of spaces, tabs or newlines is a
// single separator.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// IsEligible reports whether the current input can be submitted. In URL mode
// only a non-blank URL is required; otherwise the content must reach
// minWords words.
func IsEligible(useURL bool, sourceURL, rawContent string, minWords int) bool {
	if useURL {
		return strings.TrimSpace(sourceURL) != ""
	}
	return WordCount(rawContent) >= minWords
}

// Validate checks the request invariants: non-blank content, one to six
// unique known formats, and known tone and length presets.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return Invalid("content cannot be empty")
	}
	if len(r.Formats) == 0 {
		return Invalid("at least one output format must be selected")
	}
	seen := make(map[platform.Format]struct{}, len(r.Formats))
	for _, f := range r.Formats {
		if !f.Valid() {
			return Invalid("unknown output format %q", f)
		}
		if _, dup := seen[f]; dup {
			return Invalid("output format %q selected more than once", f)
		}
		seen[f] = struct{}{}
	}
	if !r.Tone.Valid() {
		return Invalid("unknown tone %q", r.Tone)
	}
	if !r.Length.Valid() {
		return Invalid("unknown length %q", r.Length)
	}
	if r.NoVoice && r.VoiceID != "" {
		return Invalid("a brand voice cannot be both selected and disabled")
	}
	if r.Config != nil {
		if err := r.Config.Validate(); err != nil {
			return &ValidationError{Message: err.Error()}
		}
	}
	return nil
}
