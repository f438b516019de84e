package analysis

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// errNoStructuredContent is recovered locally by facet fallbacks; it never
// reaches the caller of Analyze.
var errNoStructuredContent = errors.New("no structured object found in completion text")

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParseStructured extracts a JSON object from completion text. Models are
// instructed to answer with a bare object, but frequently wrap it in prose or
// a code fence; candidates are tried in order of strictness.
func ParseStructured(text string) (map[string]any, error) {
	trimmed := strings.TrimSpace(text)

	if obj, err := unmarshalObject(trimmed); err == nil {
		return obj, nil
	}

	if match := fencedBlockRe.FindStringSubmatch(trimmed); match != nil {
		if obj, err := unmarshalObject(strings.TrimSpace(match[1])); err == nil {
			return obj, nil
		}
	}

	if candidate := firstObject(trimmed); candidate != "" {
		if obj, err := unmarshalObject(candidate); err == nil {
			return obj, nil
		}
	}

	return nil, errNoStructuredContent
}

func unmarshalObject(s string) (map[string]any, error) {
	if !strings.HasPrefix(s, "{") {
		return nil, errNoStructuredContent
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}

	return obj, nil
}

// firstObject returns the first balanced top-level JSON object in s,
// brace-counting outside of string literals.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
