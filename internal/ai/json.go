// AngelaMos | 2026
// json.go

package ai

import (
	"strings"
	"unicode"
)

const fence = "```"

// ExtractJSON pulls a JSON document out of model output that may be wrapped
// in a markdown fence or surrounded by prose. It returns "" when nothing that
// looks like JSON is present.
func ExtractJSON(text string) string {
	t := stripFence(text)

	start := strings.IndexAny(t, "{[")
	if start < 0 {
		return ""
	}

	closer := byte('}')
	if t[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(t, closer)
	if end < start {
		return ""
	}
	return t[start : end+1]
}

// stripFence removes a single surrounding markdown fence from text output.
// Fences nested inside the body are kept: the body runs to the last closing
// fence.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, fence) {
		return t
	}

	body := t[len(fence):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = strings.TrimLeftFunc(body, unicode.IsLetter)
	}
	if end := strings.LastIndex(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
