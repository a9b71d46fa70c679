// AngelaMos | 2026
// events.go

package store

import (
	"time"
)

const (
	EventUserCreated         = "user.created"
	EventUserUpdated         = "user.updated"
	EventUserDeleted         = "user.deleted"
	EventSessionChanged      = "session.changed"
	EventCourseSaved         = "course.saved"
	EventCourseUpdated       = "course.updated"
	EventEnrollmentCreated   = "enrollment.created"
	EventNoteAdded           = "note.added"
	EventCertificateIssued   = "certificate.issued"
	EventSubscriptionToggled = "subscription.toggled"
	EventAchievementUnlocked = "achievement.unlocked"
)

type Event struct {
	Type     string    `json:"type"`
	UserID   string    `json:"userId,omitempty"`
	CourseID string    `json:"courseId,omitempty"`
	At       time.Time `json:"at"`
}

// Listener is called synchronously on the goroutine that performed the write.
type Listener func(Event)

type subscriber struct {
	id uint64
	fn Listener
}

// Subscribe registers fn and returns a func that removes it. Listeners run in
// subscription order.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, subscriber{id: id, fn: fn})
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(events ...Event) {
	s.listenersMu.RLock()
	subs := make([]subscriber, len(s.listeners))
	copy(subs, s.listeners)
	s.listenersMu.RUnlock()

	for _, ev := range events {
		if ev.At.IsZero() {
			ev.At = s.now()
		}
		for _, sub := range subs {
			sub.fn(ev)
		}
	}
}
