package agents

import (
	"encoding/json"
	"strings"
)

// ChatCompleter is the transport the agents speak over. Satisfied by
// llm/groq.Client and by test fakes.
type ChatCompleter interface {
	Complete(model, system, user string, temperature float64, maxTokens int) (string, error)
}

// stripCodeFences removes a surrounding markdown code block, which models
// add despite being told to answer with bare JSON.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```json"); i >= 0 {
		rest := text[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+len("```"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	return text
}

// decodeJSON is the schema-validated decode step at the service boundary.
// The second return is the Ok/Malformed tag: consumers branch on it instead
// of trusting free-form data.
func decodeJSON[T any](raw string) (T, bool) {
	var out T
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}
