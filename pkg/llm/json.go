package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a surrounding markdown code fence from an LLM response.
// Accepted variants:
//   - raw text (returned trimmed, unchanged otherwise)
//   - ```json\n...\n```
//   - ```\n...\n```
//
// Models are instructed not to fence their output, but they frequently do
// anyway, so stripping happens defensively before every parse.
func StripFences(response string) string {
	s := strings.TrimSpace(response)

	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	} else {
		return s
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseJSONResponse strips fences from a response and unmarshals the result
// into the target type. The whole stripped response must be valid JSON;
// surrounding prose is rejected rather than scanned around.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	cleaned := StripFences(response)
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return result, fmt.Errorf("response is not valid JSON: %w", err)
	}

	return result, nil
}
