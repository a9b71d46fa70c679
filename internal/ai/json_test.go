// AngelaMos | 2026
// json_test.go

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n[1,2]\n```", want: `[1,2]`},
		{name: "prose around object", in: "Sure! Here it is: {\"a\":{\"b\":2}} Enjoy.", want: `{"a":{"b":2}}`},
		{name: "prose around array", in: "Result:\n[{\"front\":\"x\"}]\nDone", want: `[{"front":"x"}]`},
		{name: "no json", in: "I cannot help with that.", want: ""},
		{name: "unterminated", in: "{\"a\": 1", want: ""},
		{
			name: "code block inside string",
			in:   `{"content":"Run:\n` + "```go\\nfmt.Println(1)\\n```" + `"}`,
			want: `{"content":"Run:\n` + "```go\\nfmt.Println(1)\\n```" + `"}`,
		},
		{
			name: "fenced with code block inside string",
			in:   "```json\n" + `{"content":"` + "```go\\nx := 1\\n```" + `"}` + "\n```",
			want: `{"content":"` + "```go\\nx := 1\\n```" + `"}`,
		},
		{name: "single line fence", in: "```json {\"a\":1}```", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, "# Title\n\nBody", stripFence("```markdown\n# Title\n\nBody\n```"))
	assert.Equal(t, "plain text", stripFence("  plain text \n"))
	assert.Equal(t, "Intro\n```go\nx := 1\n```\nDone", stripFence("```markdown\nIntro\n```go\nx := 1\n```\nDone\n```"))
	assert.Equal(t, "Intro\n```go\nx := 1\n```", stripFence("Intro\n```go\nx := 1\n```"))
}

func TestTruncateRuneSafe(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo wörld", 5))
	assert.Equal(t, "short", truncate("short", 10))
}
