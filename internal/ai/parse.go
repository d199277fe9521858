package ai

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// ExtractJSONObject pulls a JSON object out of model output. It first tries
// the whole text, then the span from the first '{' to the last '}'. It
// returns nil when neither decodes to an object.
func ExtractJSONObject(text string) map[string]any {
	if obj := decodeObject(text); obj != nil {
		return obj
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	return decodeObject(text[start : end+1])
}

func decodeObject(s string) map[string]any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil
	}
	// Trailing content means the text was not a single object.
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}
	return obj
}
