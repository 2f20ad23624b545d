package jsonutil

import (
	"encoding/json"
	"regexp"
	"strings"
)

// This package implements the recovery chain for loosely-structured model
// output: nominally JSON, possibly wrapped in a code fence, possibly holding
// raw newlines inside string values, possibly truncated. Each step is more
// tolerant and more lossy than the one before, so the order is fixed:
// direct parse, newline repair, brace slice, then per-field extraction.

// StripFence removes a leading/trailing markdown code-fence wrapper.
// The first line after the opening fence marker is dropped together with
// the marker itself ("```json\n..." and plain "```" both handled).
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = s[3:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// EscapeNewlinesInStrings walks the text tracking string-literal boundaries
// and replaces every raw newline found inside a string literal with the
// two-character escape sequence. Escape sequences and quote characters are
// respected, so already-escaped content is left untouched.
func EscapeNewlinesInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, c := range s {
		if escaped {
			escaped = false
			b.WriteRune(c)
			continue
		}
		switch c {
		case '\\':
			escaped = true
			b.WriteRune(c)
		case '"':
			inString = !inString
			b.WriteRune(c)
		case '\n':
			if inString {
				b.WriteString(`\n`)
			} else {
				b.WriteRune(c)
			}
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// UnmarshalLenient tries to unmarshal model output into v with best effort:
// 1) strip a code-fence wrapper
// 2) direct unmarshal
// 3) escape raw newlines inside string values and retry
// 4) slice from the first '{' to the last '}', repair newlines, retry
// The error from the last attempt is returned when every step fails.
func UnmarshalLenient(data []byte, v any) error {
	text := StripFence(string(data))

	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}

	fixed := EscapeNewlinesInStrings(text)
	if err2 := json.Unmarshal([]byte(fixed), v); err2 == nil {
		return nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		sliced := EscapeNewlinesInStrings(text[start : end+1])
		if err3 := json.Unmarshal([]byte(sliced), v); err3 == nil {
			return nil
		} else {
			err = err3
		}
	}
	return err
}

// The fields the rewrite schema uses are precompiled; extraction is safe to
// call from concurrent request handlers. Other fields compile on demand.
var fieldPatterns = map[string]*regexp.Regexp{
	"main_text":      compileFieldPattern("main_text"),
	"call_to_action": compileFieldPattern("call_to_action"),
	"thread":         compileFieldPattern("thread"),
}

func compileFieldPattern(field string) *regexp.Regexp {
	return regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
}

func fieldPattern(field string) *regexp.Regexp {
	if re, ok := fieldPatterns[field]; ok {
		return re
	}
	return compileFieldPattern(field)
}

// ExtractStringField pulls the value of a quoted string field out of
// otherwise unparseable text. Escaped characters inside the value are
// accepted; the returned string is unescaped when possible and returned
// raw (with newlines normalized) otherwise.
func ExtractStringField(s, field string) (string, bool) {
	m := fieldPattern(field).FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return unescapeValue(m[1]), true
}

// ExtractStringArray pulls a flat array of quoted strings for a field.
// Nested structures are not supported; this is a last-resort recovery.
func ExtractStringArray(s, field string) ([]string, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*\[([^\]]*)\]`)
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	inner := strings.TrimSpace(m[1])
	if inner == "" {
		return nil, true
	}
	itemRe := regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	var out []string
	for _, im := range itemRe.FindAllStringSubmatch(inner, -1) {
		out = append(out, unescapeValue(im[1]))
	}
	return out, true
}

// unescapeValue turns the raw escaped body of a JSON string literal into its
// value. Raw newlines that survived inside the match are re-escaped first so
// the round trip through json.Unmarshal succeeds.
func unescapeValue(raw string) string {
	quoted := `"` + strings.ReplaceAll(raw, "\n", `\n`) + `"`
	var out string
	if err := json.Unmarshal([]byte(quoted), &out); err != nil {
		return raw
	}
	return out
}
