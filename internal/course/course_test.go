// AngelaMos | 2026
// course_test.go

package course

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/ai"
	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/middleware"
	"github.com/carterperez-dev/learnhub/internal/storage"
	"github.com/carterperez-dev/learnhub/internal/store"
)

type fakeGenerator struct {
	outline  *ai.CourseOutline
	content  string
	err      error
	imageErr error
}

func (f *fakeGenerator) GenerateCourseOutline(_ context.Context, topic, difficulty string) (*ai.CourseOutline, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outline, nil
}

func (f *fakeGenerator) GenerateLessonContent(_ context.Context, courseTitle, lessonTitle string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content + " " + lessonTitle, nil
}

func (f *fakeGenerator) GenerateImage(prompt string) (string, error) {
	if f.imageErr != nil {
		return "", f.imageErr
	}
	return "https://img.example.com/thumb.png", nil
}

type fixture struct {
	st         *store.Store
	svc        *Service
	gen        *fakeGenerator
	instructor string
	student    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(storage.NewMemory(), "test")
	gen := &fakeGenerator{
		outline: &ai.CourseOutline{
			Title:       "Rust for Gophers",
			Description: "Ownership explained",
			Category:    "Programming",
			Difficulty:  "expert",
			Modules: []ai.OutlineModule{
				{Title: "Ownership", Lessons: []ai.OutlineLesson{{Title: "Borrowing", Content: "# Borrow", Duration: "10 min"}}},
			},
		},
		content: "generated",
	}

	ctx := context.Background()
	instructor, err := st.CreateUser(ctx, store.NewUser{Email: "grace@example.com", Password: "password123", Name: "Grace", Role: store.RoleInstructor})
	require.NoError(t, err)
	student, err := st.CreateUser(ctx, store.NewUser{Email: "ada@example.com", Password: "password123", Name: "Ada"})
	require.NoError(t, err)

	return &fixture{
		st:         st,
		svc:        NewService(st, gen, nil),
		gen:        gen,
		instructor: instructor.ID,
		student:    student.ID,
	}
}

func (f *fixture) course(t *testing.T) *store.Course {
	t.Helper()
	c, err := f.svc.Create(context.Background(), f.instructor, CourseRequest{
		Title:    "Go Basics",
		Category: "Programming",
		Modules: []ModuleInput{
			{Title: "Intro", Lessons: []LessonInput{{Title: "Hello"}, {Title: "Types"}}},
		},
	})
	require.NoError(t, err)
	return c
}

func TestCreateAndUpdateOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.course(t)

	assert.Equal(t, f.instructor, c.InstructorID)
	assert.Equal(t, store.DifficultyBeginner, c.Difficulty)
	assert.Equal(t, 2, c.LessonCount())

	_, err := f.svc.Update(ctx, "someone-else", c.ID, CourseRequest{Title: "Hijacked"})
	assert.ErrorIs(t, err, core.ErrForbidden)

	updated, err := f.svc.Update(ctx, f.instructor, c.ID, CourseRequest{Title: "Go Basics 2", Difficulty: store.DifficultyAdvanced})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics 2", updated.Title)
	assert.Equal(t, f.instructor, updated.InstructorID)

	_, err = f.svc.Update(ctx, f.instructor, "missing", CourseRequest{Title: "x"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.course(t)
	_, err := f.svc.Create(ctx, f.instructor, CourseRequest{Title: "Watercolour", Category: "Art", Difficulty: store.DifficultyIntermediate})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	art, err := f.svc.List(ctx, ListParams{Category: "art"})
	require.NoError(t, err)
	require.Len(t, art, 1)
	assert.Equal(t, "Watercolour", art[0].Title)

	found, err := f.svc.List(ctx, ListParams{Search: "go b"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := f.svc.List(ctx, ListParams{Difficulty: store.DifficultyAdvanced})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Generate(ctx, f.instructor, GenerateRequest{Topic: "Rust", Difficulty: store.DifficultyIntermediate})
	require.NoError(t, err)
	assert.Equal(t, "Rust for Gophers", c.Title)
	assert.Equal(t, store.DifficultyIntermediate, c.Difficulty)
	assert.Equal(t, "https://img.example.com/thumb.png", c.ThumbnailURL)
	require.Len(t, c.Modules, 1)
	assert.NotEmpty(t, c.Modules[0].Lessons[0].ID)

	f.gen.imageErr = fmt.Errorf("image: %w", core.ErrInvalidInput)
	c, err = f.svc.Generate(ctx, f.instructor, GenerateRequest{Topic: "Rust"})
	require.NoError(t, err)
	assert.Empty(t, c.ThumbnailURL)

	f.gen.err = fmt.Errorf("outline: %w", ai.ErrGenerationFailed)
	_, err = f.svc.Generate(ctx, f.instructor, GenerateRequest{Topic: "Rust"})
	assert.ErrorIs(t, err, ai.ErrGenerationFailed)
}

func TestRegenerateLesson(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.course(t)
	lessonID := c.Modules[0].Lessons[1].ID

	updated, err := f.svc.RegenerateLesson(ctx, f.instructor, c.ID, lessonID)
	require.NoError(t, err)
	assert.Equal(t, "generated Types", updated.Modules[0].Lessons[1].Content)
	assert.Empty(t, updated.Modules[0].Lessons[0].Content)

	_, err = f.svc.RegenerateLesson(ctx, f.instructor, c.ID, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.RegenerateLesson(ctx, f.student, c.ID, lessonID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestLearningFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.course(t)
	first := c.Modules[0].Lessons[0].ID
	second := c.Modules[0].Lessons[1].ID

	_, err := f.svc.CompleteLesson(ctx, f.student, c.ID, first)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.Enroll(ctx, f.student, c.ID)
	require.NoError(t, err)

	progress, err := f.svc.CompleteLesson(ctx, f.student, c.ID, first)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedLessons)
	assert.Equal(t, 2, progress.TotalLessons)
	assert.Equal(t, store.ActivityXP+store.LessonXP, progress.XP)

	_, err = f.svc.AddNote(ctx, f.student, c.ID, NoteRequest{LessonID: second, Timestamp: 5, Content: "later lesson"})
	require.NoError(t, err)
	_, err = f.svc.AddNote(ctx, f.student, c.ID, NoteRequest{LessonID: first, Timestamp: 75, Content: "remember this"})
	require.NoError(t, err)

	notes, err := f.svc.Notes(ctx, f.student, c.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, first, notes[0].LessonID)

	sheet, err := f.svc.CheatSheet(ctx, f.student, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics - Cheat Sheet\n\n[01:15] Hello: remember this\n[00:05] Types: later lesson\n", sheet)

	_, err = f.svc.Certificate(ctx, f.student, c.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.CompleteLesson(ctx, f.student, c.ID, second)
	require.NoError(t, err)
	cert, err := f.svc.Certificate(ctx, f.student, c.ID)
	require.NoError(t, err)
	again, err := f.svc.Certificate(ctx, f.student, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, again.ID)

	_, err = f.svc.Notes(ctx, f.student, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func asUser(id, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != "" {
				r = r.WithContext(middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: id, Role: role}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (f *fixture) do(t *testing.T, id, role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r, asUser(id, role), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandlerCatalogueIsPublic(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)

	rec := f.do(t, "", "", http.MethodGet, "/courses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lesson_count":2`)

	rec = f.do(t, "", "", http.MethodGet, "/courses/"+c.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Hello"`)

	rec = f.do(t, "", "", http.MethodGet, "/courses/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerAuthoringRequiresInstructor(t *testing.T) {
	f := newFixture(t)
	body := map[string]any{"title": "New Course", "modules": []map[string]any{{"title": "M", "lessons": []map[string]any{{"title": "L"}}}}}

	rec := f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, f.instructor, store.RoleInstructor, http.MethodPost, "/courses", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, f.instructor, store.RoleInstructor, http.MethodPost, "/courses", map[string]any{"title": "x", "difficulty": "impossible"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, f.instructor, store.RoleInstructor, http.MethodPost, "/courses/generate", map[string]any{"topic": "Rust"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rust for Gophers")

	f.gen.err = fmt.Errorf("outline: %w", ai.ErrGenerationFailed)
	rec = f.do(t, f.instructor, store.RoleInstructor, http.MethodPost, "/courses/generate", map[string]any{"topic": "Rust"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to generate course outline. Please try again.")
}

func TestHandlerStudentRoutes(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	lesson := c.Modules[0].Lessons[0].ID

	rec := f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses/"+c.ID+"/certificate", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses/"+c.ID+"/enroll", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses/"+c.ID+"/notes",
		map[string]any{"lesson_id": lesson, "timestamp": 61, "content": "closures"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"label":"01:01"`)

	rec = f.do(t, f.student, store.RoleStudent, http.MethodGet, "/courses/"+c.ID+"/notes/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "[01:01] Hello: closures")

	rec = f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses/"+c.ID+"/lessons/"+lesson+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses/"+c.ID+"/certificate", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "complete every lesson")

	last := c.Modules[0].Lessons[1].ID
	rec = f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses/"+c.ID+"/lessons/"+last+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, f.student, store.RoleStudent, http.MethodPost, "/courses/"+c.ID+"/certificate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"course_title":"Go Basics"`)

	rec = f.do(t, f.instructor, store.RoleInstructor, http.MethodPost, "/courses/"+c.ID+"/enroll", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
