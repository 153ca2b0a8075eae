package scoring

import (
	"encoding/json"
	"strings"
)

// ParseJSONObject decodes the first JSON object found in model text. Code
// fences and surrounding prose are tolerated. It returns nil when no object
// can be decoded.
func ParseJSONObject(text string) map[string]any {
	text = stripCodeFence(text)
	if text == "" {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return obj
	}

	start := strings.Index(text, "{")
	if start < 0 {
		return nil
	}
	// Decoder stops after the first complete value, ignoring trailing prose.
	dec := json.NewDecoder(strings.NewReader(text[start:]))
	obj = nil
	if err := dec.Decode(&obj); err == nil && obj != nil {
		return obj
	}

	end := strings.LastIndex(text, "}")
	if end > start {
		obj = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
			return obj
		}
	}
	return nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
