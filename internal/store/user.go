// AngelaMos | 2026
// user.go

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/learnhub/internal/core"
)

// UpdateUser applies the update locally, notifies listeners and then pushes
// the result to the remote backend. Remote failures are logged only.
func (s *Store) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (*User, error) {
	var out User
	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("update user %s: %w", userID, core.ErrNotFound)
		}
		u := &snap.Users[i]

		if upd.Email != nil {
			email := normaliseEmail(*upd.Email)
			if email == "" {
				return fmt.Errorf("update user: empty email: %w", core.ErrInvalidInput)
			}
			if j := snap.emailIndex(email); j >= 0 && j != i {
				return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
			}
			u.Email = email
		}
		if upd.Name != nil {
			u.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Avatar != nil {
			u.Avatar = *upd.Avatar
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.Title != nil {
			u.Title = *upd.Title
		}
		u.UpdatedAt = s.now()
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventUserUpdated, UserID: userID})
	s.sync(ctx, &out)
	return &out, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("delete user %s: %w", userID, core.ErrNotFound)
		}
		snap.Users = append(snap.Users[:i], snap.Users[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	events := []Event{{Type: EventUserDeleted, UserID: userID}}
	if current, err := s.CurrentUserID(ctx); err == nil && current == userID {
		if err := s.kv.Delete(ctx, s.sessionKey); err != nil {
			s.logger.Warn("clear session of deleted user failed", "user_id", userID, "error", err)
		} else {
			events = append(events, Event{Type: EventSessionChanged})
		}
	}
	s.emit(events...)
	s.syncDelete(ctx, userID)
	return nil
}

// CurrentUserID returns the raw session value without resolving the user.
func (s *Store) CurrentUserID(ctx context.Context) (string, error) {
	data, err := s.kv.Get(ctx, s.sessionKey)
	if err != nil {
		return "", ErrNoSession
	}
	return string(data), nil
}

func (s *Store) AddNote(ctx context.Context, userID string, in NewNote) (*Note, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || in.Timestamp < 0 {
		return nil, fmt.Errorf("add note: %w", core.ErrInvalidInput)
	}

	note := Note{
		ID:        uuid.New().String(),
		CourseID:  in.CourseID,
		LessonID:  in.LessonID,
		Timestamp: in.Timestamp,
		Content:   content,
	}

	err := s.mutate(ctx, func(snap *snapshot) error {
		ci := snap.courseIndex(in.CourseID)
		if ci < 0 {
			return fmt.Errorf("add note: course %s: %w", in.CourseID, core.ErrNotFound)
		}
		if l, _ := snap.Courses[ci].Lesson(in.LessonID); l == nil {
			return fmt.Errorf("add note: lesson %s: %w", in.LessonID, core.ErrNotFound)
		}
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("add note: user %s: %w", userID, core.ErrNotFound)
		}
		note.CreatedAt = s.now()
		snap.Users[i].Notes = append(snap.Users[i].Notes, note)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventNoteAdded, UserID: userID, CourseID: in.CourseID})
	return &note, nil
}

// Notes returns the user's notes for a course ordered by lesson position and
// playback time.
func (s *Store) Notes(ctx context.Context, userID, courseID string) ([]Note, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := snap.userIndex(userID)
	if i < 0 {
		return nil, fmt.Errorf("notes: user %s: %w", userID, core.ErrNotFound)
	}

	var course *Course
	if ci := snap.courseIndex(courseID); ci >= 0 {
		course = &snap.Courses[ci]
	}

	notes := []Note{}
	for _, n := range snap.Users[i].Notes {
		if n.CourseID == courseID {
			notes = append(notes, n)
		}
	}
	sortNotes(notes, course)
	return notes, nil
}

// ExportCheatSheet flattens the user's notes for a course into plain text.
func (s *Store) ExportCheatSheet(ctx context.Context, userID, courseID string) (string, error) {
	course, err := s.Course(ctx, courseID)
	if err != nil {
		return "", err
	}
	notes, err := s.Notes(ctx, userID, courseID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - Cheat Sheet\n\n", course.Title)
	if len(notes) == 0 {
		b.WriteString("No notes yet.\n")
		return b.String(), nil
	}
	for _, n := range notes {
		title := "Unknown lesson"
		if l, _ := course.Lesson(n.LessonID); l != nil {
			title = l.Title
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", FormatTimestamp(n.Timestamp), title, n.Content)
	}
	return b.String(), nil
}

// FormatTimestamp renders playback seconds as mm:ss.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// IssueCertificate returns the user's certificate for the course, creating it
// on first call. The user must be enrolled and have completed every lesson.
func (s *Store) IssueCertificate(ctx context.Context, userID, courseID string) (*Certificate, error) {
	var (
		cert   Certificate
		issued bool
	)
	err := s.mutate(ctx, func(snap *snapshot) error {
		ci := snap.courseIndex(courseID)
		if ci < 0 {
			return fmt.Errorf("issue certificate: course %s: %w", courseID, core.ErrNotFound)
		}
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("issue certificate: user %s: %w", userID, core.ErrNotFound)
		}
		u := &snap.Users[i]
		if existing := u.Certificate(courseID); existing != nil {
			cert = *existing
			return nil
		}
		if !u.IsEnrolled(courseID) {
			return fmt.Errorf("issue certificate: not enrolled: %w", core.ErrForbidden)
		}
		if !courseFinished(u, &snap.Courses[ci]) {
			return fmt.Errorf("issue certificate: course not finished: %w", core.ErrForbidden)
		}

		cert = Certificate{
			ID:          uuid.New().String(),
			CourseID:    courseID,
			CourseTitle: snap.Courses[ci].Title,
			IssuedAt:    s.now(),
		}
		u.Certificates = append(u.Certificates, cert)
		u.UpdatedAt = cert.IssuedAt
		issued = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if issued {
		s.emit(Event{Type: EventCertificateIssued, UserID: userID, CourseID: courseID})
	}
	return &cert, nil
}

// ToggleSubscriptionPause pauses an active subscription for PauseWindow or
// resumes a paused one. Cancelled subscriptions cannot be toggled.
func (s *Store) ToggleSubscriptionPause(ctx context.Context, userID string, now time.Time) (*Subscription, error) {
	var sub Subscription
	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("toggle pause: user %s: %w", userID, core.ErrNotFound)
		}
		u := &snap.Users[i]

		switch u.Subscription.EffectiveStatus(now) {
		case SubscriptionActive:
			until := now.Add(PauseWindow)
			u.Subscription.Status = SubscriptionPaused
			u.Subscription.PausedUntil = &until
		case SubscriptionPaused:
			u.Subscription.Status = SubscriptionActive
			u.Subscription.PausedUntil = nil
		default:
			return fmt.Errorf("toggle pause: subscription %s: %w", u.Subscription.Status, core.ErrInvalidInput)
		}
		u.UpdatedAt = now
		sub = u.Subscription
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventSubscriptionToggled, UserID: userID, At: now})
	return &sub, nil
}

// RecordActivity advances the daily streak. Activity on the same UTC day is a
// no-op, the next day extends the streak and a longer gap restarts it.
func (s *Store) RecordActivity(ctx context.Context, userID string, now time.Time) (*User, error) {
	var (
		out     User
		changed bool
	)
	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("record activity: user %s: %w", userID, core.ErrNotFound)
		}
		changed = touchActivity(&snap.Users[i], now)
		out = snap.Users[i]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.emit(Event{Type: EventUserUpdated, UserID: userID, At: now})
	}
	return &out, nil
}

func (s *Store) AwardXP(ctx context.Context, userID string, amount int) (*User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("award xp: %w", core.ErrInvalidInput)
	}
	var out User
	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("award xp: user %s: %w", userID, core.ErrNotFound)
		}
		snap.Users[i].XP += amount
		snap.Users[i].UpdatedAt = s.now()
		out = snap.Users[i]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventUserUpdated, UserID: userID})
	return &out, nil
}

// UnlockAchievement appends the achievement unless the user already holds
// one with the same id. It reports whether it was newly unlocked.
func (s *Store) UnlockAchievement(ctx context.Context, userID string, a Achievement) (bool, error) {
	if a.ID == "" {
		return false, fmt.Errorf("unlock achievement: %w", core.ErrInvalidInput)
	}
	unlocked := false
	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("unlock achievement: user %s: %w", userID, core.ErrNotFound)
		}
		unlocked = unlock(&snap.Users[i], a, s.now())
		return nil
	})
	if err != nil {
		return false, err
	}

	if unlocked {
		s.emit(Event{Type: EventAchievementUnlocked, UserID: userID})
	}
	return unlocked, nil
}

// CompleteLesson marks a lesson finished for an enrolled user. The first
// completion awards LessonXP; every call counts as activity.
func (s *Store) CompleteLesson(ctx context.Context, userID, courseID, lessonID string, now time.Time) (*User, error) {
	var (
		out      User
		events   []Event
		finished bool
	)
	err := s.mutate(ctx, func(snap *snapshot) error {
		ci := snap.courseIndex(courseID)
		if ci < 0 {
			return fmt.Errorf("complete lesson: course %s: %w", courseID, core.ErrNotFound)
		}
		course := &snap.Courses[ci]
		if l, _ := course.Lesson(lessonID); l == nil {
			return fmt.Errorf("complete lesson: lesson %s: %w", lessonID, core.ErrNotFound)
		}
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("complete lesson: user %s: %w", userID, core.ErrNotFound)
		}
		u := &snap.Users[i]
		if !u.IsEnrolled(courseID) {
			return fmt.Errorf("complete lesson: not enrolled: %w", core.ErrForbidden)
		}

		if touchActivity(u, now) {
			finished = true
		}
		if !u.HasCompleted(lessonID) {
			u.CompletedLessonIDs = append(u.CompletedLessonIDs, lessonID)
			u.XP += LessonXP
			finished = true
			if unlock(u, Achievement{ID: "first-lesson", Title: "First Steps"}, now) {
				events = append(events, Event{Type: EventAchievementUnlocked, UserID: userID, At: now})
			}
			if courseFinished(u, course) &&
				unlock(u, Achievement{ID: "course-complete-" + courseID, Title: "Finished " + course.Title}, now) {
				events = append(events, Event{Type: EventAchievementUnlocked, UserID: userID, CourseID: courseID, At: now})
			}
		}
		u.UpdatedAt = now
		out = *u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if finished {
		events = append([]Event{{Type: EventUserUpdated, UserID: userID, CourseID: courseID, At: now}}, events...)
	}
	s.emit(events...)
	return &out, nil
}

func touchActivity(u *User, now time.Time) bool {
	today := day(now)
	if u.LastActiveAt != nil {
		gap := int(today.Sub(day(*u.LastActiveAt)).Hours() / 24)
		switch {
		case gap <= 0:
			return false
		case gap == 1:
			u.Streak++
		default:
			u.Streak = 1
		}
	} else {
		u.Streak = 1
	}

	at := now
	u.LastActiveAt = &at
	u.XP += ActivityXP
	return true
}

func unlock(u *User, a Achievement, now time.Time) bool {
	if u.HasAchievement(a.ID) {
		return false
	}
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = now
	}
	u.Achievements = append(u.Achievements, a)
	return true
}

func courseFinished(u *User, c *Course) bool {
	if c.LessonCount() == 0 {
		return false
	}
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if !u.HasCompleted(l.ID) {
				return false
			}
		}
	}
	return true
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
