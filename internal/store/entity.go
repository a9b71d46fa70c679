// AngelaMos | 2026
// entity.go

package store

import (
	"time"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

const (
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCancelled = "cancelled"
)

const (
	PauseWindow = 14 * 24 * time.Hour
	ActivityXP  = 10
	LessonXP    = 50
)

type User struct {
	ID                 string        `json:"id"`
	Email              string        `json:"email"`
	PasswordHash       string        `json:"passwordHash"`
	Name               string        `json:"name"`
	Role               string        `json:"role"`
	Avatar             string        `json:"avatar,omitempty"`
	Bio                string        `json:"bio,omitempty"`
	Title              string        `json:"title,omitempty"`
	XP                 int           `json:"xp"`
	Streak             int           `json:"streak"`
	LastActiveAt       *time.Time    `json:"lastActiveAt,omitempty"`
	EnrolledCourseIDs  []string      `json:"enrolledCourseIds"`
	CompletedLessonIDs []string      `json:"completedLessonIds"`
	Achievements       []Achievement `json:"achievements"`
	Notes              []Note        `json:"notes"`
	Certificates       []Certificate `json:"certificates"`
	Subscription       Subscription  `json:"subscription"`
	TokenVersion       int           `json:"tokenVersion"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}

func (u *User) IsEnrolled(courseID string) bool {
	return contains(u.EnrolledCourseIDs, courseID)
}

func (u *User) HasCompleted(lessonID string) bool {
	return contains(u.CompletedLessonIDs, lessonID)
}

func (u *User) Certificate(courseID string) *Certificate {
	for i := range u.Certificates {
		if u.Certificates[i].CourseID == courseID {
			return &u.Certificates[i]
		}
	}
	return nil
}

func (u *User) HasAchievement(id string) bool {
	for _, a := range u.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

type Subscription struct {
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	PausedUntil *time.Time `json:"pausedUntil,omitempty"`
}

// EffectiveStatus reports a pause whose window has elapsed as active.
func (s Subscription) EffectiveStatus(now time.Time) string {
	if s.Status == SubscriptionPaused && s.PausedUntil != nil && !now.Before(*s.PausedUntil) {
		return SubscriptionActive
	}
	return s.Status
}

type Achievement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

type Note struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	LessonID  string    `json:"lessonId"`
	Timestamp int       `json:"timestamp"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Certificate struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
	IssuedAt    time.Time `json:"issuedAt"`
}

type Course struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	InstructorID string    `json:"instructorId"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Modules      []Module  `json:"modules"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Module struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Duration string `json:"duration"`
	VideoURL string `json:"videoUrl,omitempty"`
}

// Lesson returns the lesson with the given id and its position across all
// modules, or nil and -1.
func (c *Course) Lesson(id string) (*Lesson, int) {
	order := 0
	for mi := range c.Modules {
		for li := range c.Modules[mi].Lessons {
			if c.Modules[mi].Lessons[li].ID == id {
				return &c.Modules[mi].Lessons[li], order
			}
			order++
		}
	}
	return nil, -1
}

func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

type NewUser struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// UserUpdate carries the profile fields a user may change. Nil fields are
// left untouched.
type UserUpdate struct {
	Email  *string
	Name   *string
	Avatar *string
	Bio    *string
	Title  *string
}

type NewNote struct {
	CourseID  string
	LessonID  string
	Timestamp int
	Content   string
}

type Stats struct {
	Users        int `json:"users"`
	Students     int `json:"students"`
	Instructors  int `json:"instructors"`
	Courses      int `json:"courses"`
	Lessons      int `json:"lessons"`
	Enrollments  int `json:"enrollments"`
	Certificates int `json:"certificates"`
	Notes        int `json:"notes"`
}

type snapshot struct {
	Users   []User   `json:"users"`
	Courses []Course `json:"courses"`
}

func (s *snapshot) userIndex(id string) int {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *snapshot) emailIndex(email string) int {
	for i := range s.Users {
		if s.Users[i].Email == email {
			return i
		}
	}
	return -1
}

func (s *snapshot) courseIndex(id string) int {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return i
		}
	}
	return -1
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
