// AngelaMos | 2026
// service_test.go

package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/core"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []Prompt
}

func (f *fakeGenerator) Generate(_ context.Context, p Prompt) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func newService(gen Generator) *Service {
	return NewService(gen, "https://img.example.com/", nil)
}

func TestGenerateCourseOutline(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + `{
		"title": "Intro to Go",
		"description": "Learn Go",
		"category": "Programming",
		"modules": [
			{"title": "Basics", "lessons": [{"title": "Hello", "content": "# Hi", "duration": "5 min"}, {"title": ""}]},
			{"title": "", "lessons": [{"title": "Orphan"}]}
		]
	}` + "\n```"}

	outline, err := newService(gen).GenerateCourseOutline(context.Background(), "Go", "")
	require.NoError(t, err)
	assert.Equal(t, "Intro to Go", outline.Title)
	assert.Equal(t, "beginner", outline.Difficulty)
	require.Len(t, outline.Modules, 1)
	require.Len(t, outline.Modules[0].Lessons, 1)

	require.Len(t, gen.prompts, 1)
	assert.True(t, gen.prompts[0].JSON)
	assert.Contains(t, gen.prompts[0].Messages[0].Text, "beginner level course about: Go")
}

func TestGenerateCourseOutlineWithCodeBlocks(t *testing.T) {
	body := `{"title":"Go","modules":[{"title":"Basics","lessons":[` +
		`{"title":"Hello","content":"Run:\n` + "```go\\nfmt.Println(1)\\n```" + `","duration":"5 min"}]}]}`

	for name, reply := range map[string]string{
		"bare":   body,
		"fenced": "```json\n" + body + "\n```",
	} {
		t.Run(name, func(t *testing.T) {
			outline, err := newService(&fakeGenerator{reply: reply}).GenerateCourseOutline(context.Background(), "Go", "beginner")
			require.NoError(t, err)
			require.Len(t, outline.Modules, 1)
			assert.Contains(t, outline.Modules[0].Lessons[0].Content, "fmt.Println(1)")
		})
	}
}

func TestGenerationFailures(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		gen  *fakeGenerator
		run  func(*Service) error
		want error
	}{
		{
			name: "upstream error",
			gen:  &fakeGenerator{err: errors.New("boom")},
			run:  func(s *Service) error { _, err := s.GenerateSummary(ctx, "text"); return err },
			want: ErrGenerationFailed,
		},
		{
			name: "no json",
			gen:  &fakeGenerator{reply: "sorry"},
			run:  func(s *Service) error { _, err := s.GenerateQuiz(ctx, "text", 3); return err },
			want: ErrGenerationFailed,
		},
		{
			name: "empty outline",
			gen:  &fakeGenerator{reply: `{"title":"x","modules":[]}`},
			run:  func(s *Service) error { _, err := s.GenerateCourseOutline(ctx, "Go", "advanced"); return err },
			want: ErrGenerationFailed,
		},
		{
			name: "missing content",
			gen:  &fakeGenerator{},
			run:  func(s *Service) error { _, err := s.GenerateFlashcards(ctx, "  "); return err },
			want: core.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(newService(tt.gen)), tt.want)
		})
	}
}

func TestNotConfigured(t *testing.T) {
	s := newService(nil)
	assert.False(t, s.Configured())

	_, err := s.GenerateSummary(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNotConfigured)

	u, err := s.GenerateImage("a cat")
	require.NoError(t, err)
	assert.NotEmpty(t, u)
}

func TestGenerateQuizSanitises(t *testing.T) {
	gen := &fakeGenerator{reply: `{"questions": [
		{"question": "2+2?", "options": ["3", "4"], "correctAnswer": 1, "explanation": "math"},
		{"question": "one option", "options": ["a"], "correctAnswer": 0},
		{"question": "out of range", "options": ["a", "b"], "correctAnswer": 5},
		{"question": "", "options": ["a", "b"], "correctAnswer": 0},
		{"question": "3+3?", "options": ["6", "7"], "correctAnswer": 0}
	]}`}

	questions, err := newService(gen).GenerateQuiz(context.Background(), "arithmetic", 0)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "2+2?", questions[0].Question)
	assert.Equal(t, 1, questions[0].CorrectAnswer)
	assert.Contains(t, gen.prompts[0].Messages[0].Text, "Write 5 questions")
}

func TestGenerateQuizCapsCount(t *testing.T) {
	gen := &fakeGenerator{reply: `[
		{"question": "a", "options": ["1", "2"], "correctAnswer": 0},
		{"question": "b", "options": ["1", "2"], "correctAnswer": 0}
	]`}

	questions, err := newService(gen).GenerateQuiz(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestGenerateFlashcards(t *testing.T) {
	gen := &fakeGenerator{reply: `Here you go: [{"front":"goroutine","back":"lightweight thread"},{"front":"","back":"x"}]`}

	cards, err := newService(gen).GenerateFlashcards(context.Background(), "concurrency")
	require.NoError(t, err)
	assert.Equal(t, []Flashcard{{Front: "goroutine", Back: "lightweight thread"}}, cards)
}

func TestGenerateTutorResponse(t *testing.T) {
	gen := &fakeGenerator{reply: "  Think about channels.  "}
	history := make([]Message, 0, 30)
	for i := 0; i < 30; i++ {
		history = append(history, Message{Role: RoleUser, Text: "q"})
	}
	history = append(history, Message{Role: RoleModel, Text: " "})

	reply, err := newService(gen).GenerateTutorResponse(context.Background(), history, "How do I sync?", "Lesson on goroutines")
	require.NoError(t, err)
	assert.Equal(t, "Think about channels.", reply)

	p := gen.prompts[0]
	assert.Contains(t, p.System, "Lesson on goroutines")
	assert.Len(t, p.Messages, maxHistory)
	assert.Equal(t, "How do I sync?", p.Messages[len(p.Messages)-1].Text)
	assert.False(t, p.JSON)
}

func TestGenerateLessonContent(t *testing.T) {
	gen := &fakeGenerator{reply: "```markdown\n# Goroutines\nThey are cheap.\n```"}

	content, err := newService(gen).GenerateLessonContent(context.Background(), "Go", "Goroutines")
	require.NoError(t, err)
	assert.Equal(t, "# Goroutines\nThey are cheap.", content)
}

func TestGenerateImage(t *testing.T) {
	u, err := newService(nil).GenerateImage("sunset over mountains")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "https://img.example.com/prompt/sunset%20over%20mountains?"))
	assert.Contains(t, u, "width=1024")
	assert.Contains(t, u, "nologo=true")

	_, err = newService(nil).GenerateImage(" ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
