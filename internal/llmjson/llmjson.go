// Package llmjson extracts structured data from a language model's text
// channel. Models are instructed to respond with bare JSON but routinely
// wrap it in markdown code fences or surrounding prose, so parsing first
// strips known wrapper patterns and then falls back to extracting the
// outermost JSON value.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Clean removes markdown code fences around a model response.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Unmarshal parses a model response into v. It tries the cleaned text
// first, then the outermost JSON object or array embedded in it.
func Unmarshal(text string, v any) error {
	cleaned := Clean(text)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		if extracted, ok := extract(cleaned, pair[0], pair[1]); ok {
			if err := json.Unmarshal([]byte(extracted), v); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("no parsable JSON in response: %s", truncate(text, 200))
}

// extract returns the substring from the first open delimiter to the
// last close delimiter.
func extract(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
