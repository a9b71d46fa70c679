// AngelaMos | 2026
// service.go

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/learnhub/internal/core"
)

var (
	ErrGenerationFailed = errors.New("ai generation failed")
	ErrNotConfigured    = errors.New("ai generation not configured")
)

const (
	maxContentRunes = 12000
	maxHistory      = 20
	defaultQuizSize = 5
	maxQuizSize     = 20
)

type CourseOutline struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Difficulty  string          `json:"difficulty"`
	Modules     []OutlineModule `json:"modules"`
}

type OutlineModule struct {
	Title   string          `json:"title"`
	Lessons []OutlineLesson `json:"lessons"`
}

type OutlineLesson struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Duration string `json:"duration"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Service wraps a Generator with the platform's prompts. Every failure is
// reported as a zero value plus an error wrapping ErrGenerationFailed so
// callers can show a retry message.
type Service struct {
	gen          Generator
	imageBaseURL string
	logger       *slog.Logger
	tracer       trace.Tracer
}

// NewService accepts a nil Generator; text operations then fail with
// ErrNotConfigured while GenerateImage keeps working.
func NewService(gen Generator, imageBaseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gen:          gen,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		logger:       logger.With("component", "ai"),
		tracer:       otel.Tracer("learnhub/ai"),
	}
}

func (s *Service) Configured() bool {
	return s.gen != nil
}

func (s *Service) generate(ctx context.Context, op string, p Prompt) (string, error) {
	if s.gen == nil {
		return "", ErrNotConfigured
	}

	ctx, span := s.tracer.Start(ctx, "ai."+op)
	defer span.End()
	span.SetAttributes(attribute.Bool("ai.json", p.JSON), attribute.Int("ai.messages", len(p.Messages)))

	text, err := s.gen.Generate(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		s.logger.Warn("generation failed", "op", op, "error", err)
		return "", fmt.Errorf("%s: %w: %w", op, ErrGenerationFailed, err)
	}
	return text, nil
}

func (s *Service) generateJSON(ctx context.Context, op string, p Prompt, out any) error {
	p.JSON = true
	text, err := s.generate(ctx, op, p)
	if err != nil {
		return err
	}

	raw := ExtractJSON(text)
	if raw == "" {
		s.logger.Warn("no json in model output", "op", op)
		return fmt.Errorf("%s: no json in response: %w", op, ErrGenerationFailed)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("malformed json in model output", "op", op, "error", err)
		return fmt.Errorf("%s: decode: %w: %w", op, ErrGenerationFailed, err)
	}
	return nil
}

func userPrompt(system, text string) Prompt {
	return Prompt{System: system, Messages: []Message{{Role: RoleUser, Text: text}}}
}

func (s *Service) GenerateCourseOutline(ctx context.Context, topic, difficulty string) (*CourseOutline, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("course outline: topic required: %w", core.ErrInvalidInput)
	}
	if difficulty == "" {
		difficulty = "beginner"
	}

	system := `You are an expert curriculum designer. Respond with a single JSON object of the form
{"title": string, "description": string, "category": string, "difficulty": "beginner"|"intermediate"|"advanced",
 "modules": [{"title": string, "lessons": [{"title": string, "content": string, "duration": string}]}]}.
Create 3 to 5 modules with 2 to 4 lessons each. Lesson content is a short markdown introduction.
Durations look like "10 min".`
	msg := fmt.Sprintf("Create a %s level course about: %s", difficulty, topic)

	var outline CourseOutline
	if err := s.generateJSON(ctx, "course_outline", userPrompt(system, msg), &outline); err != nil {
		return nil, err
	}

	outline.Modules = sanitiseModules(outline.Modules)
	if strings.TrimSpace(outline.Title) == "" || len(outline.Modules) == 0 {
		return nil, fmt.Errorf("course outline: empty outline: %w", ErrGenerationFailed)
	}
	if outline.Difficulty == "" {
		outline.Difficulty = difficulty
	}
	return &outline, nil
}

func sanitiseModules(in []OutlineModule) []OutlineModule {
	out := make([]OutlineModule, 0, len(in))
	for _, m := range in {
		if strings.TrimSpace(m.Title) == "" {
			continue
		}
		lessons := make([]OutlineLesson, 0, len(m.Lessons))
		for _, l := range m.Lessons {
			if strings.TrimSpace(l.Title) == "" {
				continue
			}
			lessons = append(lessons, l)
		}
		m.Lessons = lessons
		out = append(out, m)
	}
	return out
}

func (s *Service) GenerateLessonContent(ctx context.Context, courseTitle, lessonTitle string) (string, error) {
	if strings.TrimSpace(lessonTitle) == "" {
		return "", fmt.Errorf("lesson content: lesson title required: %w", core.ErrInvalidInput)
	}

	system := "You are an expert teacher. Write engaging, well structured lesson material in markdown " +
		"with headings, short paragraphs, code samples where relevant and a brief recap at the end."
	msg := fmt.Sprintf("Course: %s\nLesson: %s\nWrite the full lesson.", courseTitle, lessonTitle)

	text, err := s.generate(ctx, "lesson_content", userPrompt(system, msg))
	if err != nil {
		return "", err
	}
	content := stripFence(text)
	if content == "" {
		return "", fmt.Errorf("lesson content: %w", ErrGenerationFailed)
	}
	return content, nil
}

// GenerateImage returns a URL on the image endpoint that renders the prompt.
// No request is made here; the image is produced when the URL is fetched.
func (s *Service) GenerateImage(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("image: prompt required: %w", core.ErrInvalidInput)
	}
	q := url.Values{}
	q.Set("width", "1024")
	q.Set("height", "576")
	q.Set("nologo", "true")
	return fmt.Sprintf("%s/prompt/%s?%s", s.imageBaseURL, url.PathEscape(prompt), q.Encode()), nil
}

// GenerateTutorResponse continues a tutoring conversation. Only the most
// recent turns of history are sent.
func (s *Service) GenerateTutorResponse(
	ctx context.Context,
	history []Message,
	message, lessonContext string,
) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("tutor: message required: %w", core.ErrInvalidInput)
	}

	system := "You are a friendly, patient AI tutor on an e-learning platform. Answer concisely, " +
		"guide the student towards understanding instead of just giving answers, and use markdown."
	if ctxText := strings.TrimSpace(lessonContext); ctxText != "" {
		system += "\n\nThe student is currently studying this lesson:\n" + truncate(ctxText, maxContentRunes)
	}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	msgs := make([]Message, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		msgs = append(msgs, m)
	}
	msgs = append(msgs, Message{Role: RoleUser, Text: message})

	text, err := s.generate(ctx, "tutor", Prompt{System: system, Messages: msgs})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *Service) GenerateQuiz(ctx context.Context, content string, count int) ([]QuizQuestion, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("quiz: content required: %w", core.ErrInvalidInput)
	}
	if count <= 0 {
		count = defaultQuizSize
	}
	if count > maxQuizSize {
		count = maxQuizSize
	}

	system := `You write multiple choice quizzes. Respond with a JSON array of objects of the form
{"question": string, "options": [string], "correctAnswer": number (0-based index into options), "explanation": string}.`
	msg := fmt.Sprintf("Write %d questions about the following material:\n\n%s", count, truncate(content, maxContentRunes))

	var raw json.RawMessage
	if err := s.generateJSON(ctx, "quiz", userPrompt(system, msg), &raw); err != nil {
		return nil, err
	}

	questions, err := decodeList[QuizQuestion](raw, "questions")
	if err != nil {
		return nil, fmt.Errorf("quiz: %w: %w", ErrGenerationFailed, err)
	}

	out := make([]QuizQuestion, 0, len(questions))
	for _, q := range questions {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			continue
		}
		out = append(out, q)
		if len(out) == count {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("quiz: no usable questions: %w", ErrGenerationFailed)
	}
	return out, nil
}

func (s *Service) GenerateSummary(ctx context.Context, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("summary: content required: %w", core.ErrInvalidInput)
	}

	system := "Summarise the lesson for a student in a few markdown bullet points followed by one key takeaway."
	text, err := s.generate(ctx, "summary", userPrompt(system, truncate(content, maxContentRunes)))
	if err != nil {
		return "", err
	}
	summary := stripFence(text)
	if summary == "" {
		return "", fmt.Errorf("summary: %w", ErrGenerationFailed)
	}
	return summary, nil
}

func (s *Service) GenerateFlashcards(ctx context.Context, content string) ([]Flashcard, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("flashcards: content required: %w", core.ErrInvalidInput)
	}

	system := `You create study flashcards. Respond with a JSON array of 5 to 10 objects of the form
{"front": string, "back": string}. The front is a term or question, the back a short answer.`

	var raw json.RawMessage
	if err := s.generateJSON(ctx, "flashcards", userPrompt(system, truncate(content, maxContentRunes)), &raw); err != nil {
		return nil, err
	}

	cards, err := decodeList[Flashcard](raw, "flashcards")
	if err != nil {
		return nil, fmt.Errorf("flashcards: %w: %w", ErrGenerationFailed, err)
	}

	out := make([]Flashcard, 0, len(cards))
	for _, c := range cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("flashcards: no usable cards: %w", ErrGenerationFailed)
	}
	return out, nil
}

// decodeList accepts either a bare array or an object holding the array
// under key.
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, fmt.Errorf("decode list: missing %q", key)
	}
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return list, nil
}
