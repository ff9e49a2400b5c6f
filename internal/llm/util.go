package llm

import "strings"

// CleanJSONBlock returns the JSON value inside a model response. Markdown code fences are
// removed, and when prose surrounds the value only the first balanced object or array is kept.
// Text with no JSON value is returned trimmed.
func CleanJSONBlock(text string) string {
	text = stripFence(strings.TrimSpace(text))

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	if value := balancedJSON(text[start:]); value != "" {
		return value
	}
	return text
}

// stripFence removes a surrounding ``` block and its optional language tag.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		tag := text[:nl]
		if !strings.ContainsAny(tag, " {[") {
			text = text[nl+1:]
		}
	}
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// balancedJSON returns the prefix of text that closes the object or array text starts with,
// or "" when it never closes. Brackets inside string literals are ignored.
func balancedJSON(text string) string {
	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
