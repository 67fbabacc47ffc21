package quizgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

var (
	errEmptyPayload = errors.New("empty payload")
	errUnknownShape = errors.New("payload has no question list")
)

// decodeQuestions accepts, in order: a top-level array, an object with a
// "questions" array, or an object whose first array-valued field holds
// question objects. Anything else is rejected.
func decodeQuestions(raw string) ([]Question, error) {
	s := cleanJSON(raw)
	if s == "" {
		return nil, errEmptyPayload
	}

	switch s[0] {
	case '[':
		return decodeList([]byte(s))
	case '{':
		var wrapped struct {
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
			return nil, err
		}
		if list := bytes.TrimSpace(wrapped.Questions); len(list) > 0 && list[0] == '[' {
			return decodeList(list)
		}

		list, err := firstArrayField(s)
		if err != nil {
			return nil, err
		}
		qs, err := decodeList(list)
		if err != nil {
			return nil, err
		}
		if !questionShaped(qs) {
			return nil, errUnknownShape
		}
		return qs, nil
	default:
		return nil, errUnknownShape
	}
}

// decodeList decodes each element on its own so one malformed item does not
// discard the rest.
func decodeList(b []byte) ([]Question, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(items))
	for _, it := range items {
		var q Question
		if err := json.Unmarshal(it, &q); err != nil {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func firstArrayField(s string) (json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '[' {
			return v, nil
		}
	}
	return nil, errUnknownShape
}

func questionShaped(qs []Question) bool {
	for _, q := range qs {
		if strings.TrimSpace(q.Question) != "" && len(q.Options) > 0 {
			return true
		}
	}
	return false
}

func cleanJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	content = strings.TrimSpace(content)

	if content == "" || content[0] == '{' || content[0] == '[' {
		return content
	}

	start := strings.IndexAny(content, "{[")
	if start == -1 {
		return ""
	}
	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end <= start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
