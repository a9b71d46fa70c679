// AngelaMos | 2026
// service.go

package course

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/learnhub/internal/ai"
	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/store"
)

// Repository is the slice of the store the course service depends on.
type Repository interface {
	Courses(ctx context.Context) ([]store.Course, error)
	Course(ctx context.Context, id string) (*store.Course, error)
	SaveCourse(ctx context.Context, c store.Course) (*store.Course, error)
	UpdateCourse(ctx context.Context, c store.Course) (*store.Course, error)
	EnrollUser(ctx context.Context, userID, courseID string) (*store.User, error)
	IssueCertificate(ctx context.Context, userID, courseID string) (*store.Certificate, error)
	AddNote(ctx context.Context, userID string, in store.NewNote) (*store.Note, error)
	Notes(ctx context.Context, userID, courseID string) ([]store.Note, error)
	ExportCheatSheet(ctx context.Context, userID, courseID string) (string, error)
	CompleteLesson(ctx context.Context, userID, courseID, lessonID string, now time.Time) (*store.User, error)
}

var _ Repository = (*store.Store)(nil)

// Generator produces course material. *ai.Service satisfies it.
type Generator interface {
	GenerateCourseOutline(ctx context.Context, topic, difficulty string) (*ai.CourseOutline, error)
	GenerateLessonContent(ctx context.Context, courseTitle, lessonTitle string) (string, error)
	GenerateImage(prompt string) (string, error)
}

var _ Generator = (*ai.Service)(nil)

type Service struct {
	repo   Repository
	gen    Generator
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, gen: gen, logger: logger, now: time.Now}
}

// List returns the catalogue filtered by category, difficulty and a
// case-insensitive title or description search.
func (s *Service) List(ctx context.Context, p ListParams) ([]store.Course, error) {
	courses, err := s.repo.Courses(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(p.Search))
	out := courses[:0]
	for _, c := range courses {
		if p.Category != "" && !strings.EqualFold(c.Category, p.Category) {
			continue
		}
		if p.Difficulty != "" && c.Difficulty != p.Difficulty {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Title), search) &&
			!strings.Contains(strings.ToLower(c.Description), search) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*store.Course, error) {
	return s.repo.Course(ctx, id)
}

func (s *Service) Create(ctx context.Context, instructorID string, req CourseRequest) (*store.Course, error) {
	c := req.toCourse()
	c.InstructorID = instructorID
	return s.repo.SaveCourse(ctx, c)
}

func (s *Service) owned(ctx context.Context, instructorID, courseID string) (*store.Course, error) {
	c, err := s.repo.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c.InstructorID != instructorID {
		return nil, fmt.Errorf("course %s: not the owner: %w", courseID, core.ErrForbidden)
	}
	return c, nil
}

// Update replaces the course content. Only the owning instructor may edit.
func (s *Service) Update(
	ctx context.Context,
	instructorID, courseID string,
	req CourseRequest,
) (*store.Course, error) {
	if _, err := s.owned(ctx, instructorID, courseID); err != nil {
		return nil, err
	}

	c := req.toCourse()
	c.ID = courseID
	return s.repo.UpdateCourse(ctx, c)
}

// Generate asks the AI for an outline and saves it as a new course owned by
// the instructor. A thumbnail URL is attached when one can be built.
func (s *Service) Generate(
	ctx context.Context,
	instructorID string,
	req GenerateRequest,
) (*store.Course, error) {
	outline, err := s.gen.GenerateCourseOutline(ctx, req.Topic, req.Difficulty)
	if err != nil {
		return nil, err
	}

	c := store.Course{
		Title:        outline.Title,
		Description:  outline.Description,
		Category:     outline.Category,
		Difficulty:   normaliseDifficulty(outline.Difficulty, req.Difficulty),
		InstructorID: instructorID,
		Modules:      make([]store.Module, 0, len(outline.Modules)),
	}
	for _, m := range outline.Modules {
		mod := store.Module{Title: m.Title, Lessons: make([]store.Lesson, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			mod.Lessons = append(mod.Lessons, store.Lesson{
				Title:    l.Title,
				Content:  l.Content,
				Duration: l.Duration,
			})
		}
		c.Modules = append(c.Modules, mod)
	}

	thumb, err := s.gen.GenerateImage(fmt.Sprintf("Course cover illustration for %q, %s", c.Title, c.Category))
	if err != nil {
		s.logger.Warn("course thumbnail generation failed", "title", c.Title, "error", err)
	} else {
		c.ThumbnailURL = thumb
	}

	return s.repo.SaveCourse(ctx, c)
}

func normaliseDifficulty(got, requested string) string {
	switch got {
	case store.DifficultyBeginner, store.DifficultyIntermediate, store.DifficultyAdvanced:
		return got
	}
	if requested != "" {
		return requested
	}
	return store.DifficultyBeginner
}

// RegenerateLesson replaces one lesson's content with freshly generated
// material.
func (s *Service) RegenerateLesson(
	ctx context.Context,
	instructorID, courseID, lessonID string,
) (*store.Course, error) {
	c, err := s.owned(ctx, instructorID, courseID)
	if err != nil {
		return nil, err
	}

	lesson, _ := c.Lesson(lessonID)
	if lesson == nil {
		return nil, fmt.Errorf("regenerate lesson %s: %w", lessonID, core.ErrNotFound)
	}

	content, err := s.gen.GenerateLessonContent(ctx, c.Title, lesson.Title)
	if err != nil {
		return nil, err
	}
	lesson.Content = content

	return s.repo.UpdateCourse(ctx, *c)
}

func (s *Service) Enroll(ctx context.Context, userID, courseID string) (*store.User, error) {
	return s.repo.EnrollUser(ctx, userID, courseID)
}

func (s *Service) Certificate(ctx context.Context, userID, courseID string) (*store.Certificate, error) {
	return s.repo.IssueCertificate(ctx, userID, courseID)
}

func (s *Service) AddNote(ctx context.Context, userID, courseID string, req NoteRequest) (*store.Note, error) {
	return s.repo.AddNote(ctx, userID, store.NewNote{
		CourseID:  courseID,
		LessonID:  req.LessonID,
		Timestamp: req.Timestamp,
		Content:   req.Content,
	})
}

func (s *Service) Notes(ctx context.Context, userID, courseID string) ([]store.Note, error) {
	if _, err := s.repo.Course(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.Notes(ctx, userID, courseID)
}

func (s *Service) CheatSheet(ctx context.Context, userID, courseID string) (string, error) {
	return s.repo.ExportCheatSheet(ctx, userID, courseID)
}

func (s *Service) CompleteLesson(
	ctx context.Context,
	userID, courseID, lessonID string,
) (*ProgressResponse, error) {
	u, err := s.repo.CompleteLesson(ctx, userID, courseID, lessonID, s.now())
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}

	done := 0
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if u.HasCompleted(l.ID) {
				done++
			}
		}
	}

	return &ProgressResponse{
		CourseID:         courseID,
		CompletedLessons: done,
		TotalLessons:     c.LessonCount(),
		XP:               u.XP,
		Streak:           u.Streak,
	}, nil
}
