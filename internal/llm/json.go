package llm

import (
	"encoding/json"
	"fmt"

	"github.com/TobiSchelling/repurposer/internal/decode"
)

// ParseJSON decodes an LLM response into v, handling markdown code blocks.
func ParseJSON(text string, v any) error {
	text = decode.StripCodeFence(text)
	if text == "" {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parsing LLM response as JSON: %w", err)
	}
	return nil
}
