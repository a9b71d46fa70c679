// AngelaMos | 2026
// dto.go

package course

import (
	"time"

	"github.com/carterperez-dev/learnhub/internal/store"
)

type LessonInput struct {
	ID       string `json:"id,omitempty"        validate:"omitempty,max=64"`
	Title    string `json:"title"               validate:"required,min=1,max=200"`
	Content  string `json:"content"             validate:"max=50000"`
	Duration string `json:"duration"            validate:"max=32"`
	VideoURL string `json:"video_url,omitempty" validate:"omitempty,url,max=2048"`
}

type ModuleInput struct {
	ID      string        `json:"id,omitempty" validate:"omitempty,max=64"`
	Title   string        `json:"title"        validate:"required,min=1,max=200"`
	Lessons []LessonInput `json:"lessons"      validate:"max=50,dive"`
}

type CourseRequest struct {
	Title        string        `json:"title"                   validate:"required,min=2,max=200"`
	Description  string        `json:"description"             validate:"max=5000"`
	Category     string        `json:"category"                validate:"max=100"`
	Difficulty   string        `json:"difficulty"              validate:"omitempty,oneof=beginner intermediate advanced"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty" validate:"omitempty,url,max=2048"`
	Modules      []ModuleInput `json:"modules"                 validate:"max=30,dive"`
}

type GenerateRequest struct {
	Topic      string `json:"topic"      validate:"required,min=2,max=200"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
}

type NoteRequest struct {
	LessonID  string `json:"lesson_id" validate:"required,max=64"`
	Timestamp int    `json:"timestamp" validate:"min=0"`
	Content   string `json:"content"   validate:"required,max=5000"`
}

type ListParams struct {
	Category   string
	Difficulty string
	Search     string
}

type LessonResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Duration string `json:"duration"`
	VideoURL string `json:"video_url,omitempty"`
}

type ModuleResponse struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Lessons []LessonResponse `json:"lessons"`
}

type CourseResponse struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Difficulty   string           `json:"difficulty"`
	InstructorID string           `json:"instructor_id"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	LessonCount  int              `json:"lesson_count"`
	Modules      []ModuleResponse `json:"modules"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CourseSummary is the catalogue entry without lesson bodies.
type CourseSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	InstructorID string    `json:"instructor_id"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	ModuleCount  int       `json:"module_count"`
	LessonCount  int       `json:"lesson_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type NoteResponse struct {
	ID        string    `json:"id"`
	LessonID  string    `json:"lesson_id"`
	Timestamp int       `json:"timestamp"`
	Label     string    `json:"label"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CertificateResponse struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	IssuedAt    time.Time `json:"issued_at"`
}

type ProgressResponse struct {
	CourseID         string `json:"course_id"`
	CompletedLessons int    `json:"completed_lessons"`
	TotalLessons     int    `json:"total_lessons"`
	XP               int    `json:"xp"`
	Streak           int    `json:"streak"`
}

func (r CourseRequest) toCourse() store.Course {
	c := store.Course{
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Difficulty:   r.Difficulty,
		ThumbnailURL: r.ThumbnailURL,
		Modules:      make([]store.Module, 0, len(r.Modules)),
	}
	for _, m := range r.Modules {
		mod := store.Module{ID: m.ID, Title: m.Title, Lessons: make([]store.Lesson, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			mod.Lessons = append(mod.Lessons, store.Lesson{
				ID:       l.ID,
				Title:    l.Title,
				Content:  l.Content,
				Duration: l.Duration,
				VideoURL: l.VideoURL,
			})
		}
		c.Modules = append(c.Modules, mod)
	}
	return c
}

func ToCourseResponse(c *store.Course) CourseResponse {
	resp := CourseResponse{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category,
		Difficulty:   c.Difficulty,
		InstructorID: c.InstructorID,
		ThumbnailURL: c.ThumbnailURL,
		LessonCount:  c.LessonCount(),
		Modules:      make([]ModuleResponse, 0, len(c.Modules)),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	for _, m := range c.Modules {
		mod := ModuleResponse{ID: m.ID, Title: m.Title, Lessons: make([]LessonResponse, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			mod.Lessons = append(mod.Lessons, LessonResponse{
				ID:       l.ID,
				Title:    l.Title,
				Content:  l.Content,
				Duration: l.Duration,
				VideoURL: l.VideoURL,
			})
		}
		resp.Modules = append(resp.Modules, mod)
	}
	return resp
}

func ToCourseSummary(c *store.Course) CourseSummary {
	return CourseSummary{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Category:     c.Category,
		Difficulty:   c.Difficulty,
		InstructorID: c.InstructorID,
		ThumbnailURL: c.ThumbnailURL,
		ModuleCount:  len(c.Modules),
		LessonCount:  c.LessonCount(),
		CreatedAt:    c.CreatedAt,
	}
}

func ToNoteResponse(n store.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		LessonID:  n.LessonID,
		Timestamp: n.Timestamp,
		Label:     store.FormatTimestamp(n.Timestamp),
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
}

func ToCertificateResponse(c *store.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:          c.ID,
		CourseID:    c.CourseID,
		CourseTitle: c.CourseTitle,
		IssuedAt:    c.IssuedAt,
	}
}
