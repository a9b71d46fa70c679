// AngelaMos | 2026
// course.go

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/learnhub/internal/core"
)

// SaveCourse inserts a new course, filling in ids for the course and any
// module or lesson that lacks one.
func (s *Store) SaveCourse(ctx context.Context, c Course) (*Course, error) {
	if strings.TrimSpace(c.Title) == "" {
		return nil, fmt.Errorf("save course: title required: %w", core.ErrInvalidInput)
	}
	assignIDs(&c)
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := s.mutate(ctx, func(snap *snapshot) error {
		if snap.courseIndex(c.ID) >= 0 {
			return fmt.Errorf("save course: %w", core.ErrDuplicateKey)
		}
		snap.Courses = append(snap.Courses, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventCourseSaved, CourseID: c.ID, UserID: c.InstructorID})
	return &c, nil
}

// UpdateCourse replaces an existing course. Ownership and creation time are
// kept from the stored copy.
func (s *Store) UpdateCourse(ctx context.Context, c Course) (*Course, error) {
	assignIDs(&c)

	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.courseIndex(c.ID)
		if i < 0 {
			return fmt.Errorf("update course %s: %w", c.ID, core.ErrNotFound)
		}
		c.InstructorID = snap.Courses[i].InstructorID
		c.CreatedAt = snap.Courses[i].CreatedAt
		c.UpdatedAt = s.now()
		snap.Courses[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventCourseUpdated, CourseID: c.ID, UserID: c.InstructorID})
	return &c, nil
}

// EnrollUser adds the course to the user's enrollments. Enrolling twice is a
// no-op.
func (s *Store) EnrollUser(ctx context.Context, userID, courseID string) (*User, error) {
	var (
		out     User
		changed bool
	)
	err := s.mutate(ctx, func(snap *snapshot) error {
		if snap.courseIndex(courseID) < 0 {
			return fmt.Errorf("enroll: course %s: %w", courseID, core.ErrNotFound)
		}
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("enroll: user %s: %w", userID, core.ErrNotFound)
		}
		u := &snap.Users[i]
		if !u.IsEnrolled(courseID) {
			u.EnrolledCourseIDs = append(u.EnrolledCourseIDs, courseID)
			u.UpdatedAt = s.now()
			changed = true
		}
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.emit(Event{Type: EventEnrollmentCreated, UserID: userID, CourseID: courseID})
	}
	return &out, nil
}

func assignIDs(c *Course) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyBeginner
	}
	if c.Modules == nil {
		c.Modules = []Module{}
	}
	for mi := range c.Modules {
		m := &c.Modules[mi]
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if m.Lessons == nil {
			m.Lessons = []Lesson{}
		}
		for li := range m.Lessons {
			if m.Lessons[li].ID == "" {
				m.Lessons[li].ID = uuid.New().String()
			}
		}
	}
}
