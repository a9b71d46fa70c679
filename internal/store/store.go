// AngelaMos | 2026
// store.go

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/storage"
)

var ErrNoSession = errors.New("no active session")

// Syncer pushes user changes to the auxiliary account backend.
type Syncer interface {
	PushUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
}

type Option func(*Store)

func WithSyncer(syncer Syncer) Option {
	return func(s *Store) { s.syncer = syncer }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the platform's object store. Users and courses live in a single
// JSON document; every write loads it, mutates it and saves it back while
// holding mu, then notifies listeners.
type Store struct {
	kv         storage.KV
	dbKey      string
	sessionKey string
	syncer     Syncer
	logger     *slog.Logger
	now        func() time.Time

	mu sync.Mutex

	listenersMu    sync.RWMutex
	listeners      []subscriber
	nextListenerID uint64
}

func New(kv storage.KV, namespace string, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		dbKey:      namespace + ":db",
		sessionKey: namespace + ":session",
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "store")
	return s
}

func (s *Store) Backend() string {
	return s.kv.Name()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *Store) load(ctx context.Context) (*snapshot, error) {
	data, err := s.kv.Get(ctx, s.dbKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return &snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	return &snap, nil
}

func (s *Store) save(ctx context.Context, snap *snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := s.kv.Set(ctx, s.dbKey, data); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

// mutate runs fn against a freshly loaded snapshot and persists the result
// unless fn fails.
func (s *Store) mutate(ctx context.Context, fn func(*snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(snap); err != nil {
		return err
	}
	return s.save(ctx, snap)
}

// Seed writes the snapshot read from r when the store is empty. It reports
// whether anything was written.
func (s *Store) Seed(ctx context.Context, r io.Reader) (bool, error) {
	var seed snapshot
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return false, fmt.Errorf("decode seed: %w", err)
	}

	seeded := false
	err := s.mutate(ctx, func(snap *snapshot) error {
		if len(snap.Users) > 0 || len(snap.Courses) > 0 {
			return nil
		}
		now := s.now()
		for i := range seed.Courses {
			assignIDs(&seed.Courses[i])
			if seed.Courses[i].CreatedAt.IsZero() {
				seed.Courses[i].CreatedAt = now
				seed.Courses[i].UpdatedAt = now
			}
		}
		for i := range seed.Users {
			normaliseUser(&seed.Users[i], now)
		}
		if err := seed.checkCourseRefs(); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		*snap = seed
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

// checkCourseRefs reports the first enrollment or certificate that points at
// a course missing from the snapshot.
func (s *snapshot) checkCourseRefs() error {
	for i := range s.Users {
		u := &s.Users[i]
		for _, id := range u.EnrolledCourseIDs {
			if s.courseIndex(id) < 0 {
				return fmt.Errorf("user %s enrolled in unknown course %s: %w", u.ID, id, core.ErrInvalidInput)
			}
		}
		for _, c := range u.Certificates {
			if s.courseIndex(c.CourseID) < 0 {
				return fmt.Errorf("user %s certified for unknown course %s: %w", u.ID, c.CourseID, core.ErrInvalidInput)
			}
		}
	}
	return nil
}

func (s *Store) Users(ctx context.Context) ([]User, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Users, nil
}

func (s *Store) Courses(ctx context.Context) ([]Course, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Courses, nil
}

func (s *Store) Course(ctx context.Context, id string) (*Course, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := snap.courseIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("course %s: %w", id, core.ErrNotFound)
	}
	return &snap.Courses[i], nil
}

func (s *Store) User(ctx context.Context, id string) (*User, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := snap.userIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	return &snap.Users[i], nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := snap.emailIndex(normaliseEmail(email))
	if i < 0 {
		return nil, fmt.Errorf("user by email: %w", core.ErrNotFound)
	}
	return &snap.Users[i], nil
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Users: len(snap.Users), Courses: len(snap.Courses)}
	for _, u := range snap.Users {
		if u.IsInstructor() {
			st.Instructors++
		} else {
			st.Students++
		}
		st.Enrollments += len(u.EnrolledCourseIDs)
		st.Certificates += len(u.Certificates)
		st.Notes += len(u.Notes)
	}
	for i := range snap.Courses {
		st.Lessons += snap.Courses[i].LessonCount()
	}
	return st, nil
}

func (s *Store) sync(ctx context.Context, u *User) {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.PushUser(ctx, u); err != nil {
		s.logger.Warn("remote user sync failed", "user_id", u.ID, "error", err)
	}
}

func (s *Store) syncDelete(ctx context.Context, id string) {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.DeleteUser(ctx, id); err != nil {
		s.logger.Warn("remote user delete failed", "user_id", id, "error", err)
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normaliseUser(u *User, now time.Time) {
	u.Email = normaliseEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if u.Subscription.Plan == "" {
		u.Subscription = Subscription{Plan: PlanFree, Status: SubscriptionActive}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
		u.UpdatedAt = now
	}
	if u.EnrolledCourseIDs == nil {
		u.EnrolledCourseIDs = []string{}
	}
	if u.CompletedLessonIDs == nil {
		u.CompletedLessonIDs = []string{}
	}
	if u.Achievements == nil {
		u.Achievements = []Achievement{}
	}
	if u.Notes == nil {
		u.Notes = []Note{}
	}
	if u.Certificates == nil {
		u.Certificates = []Certificate{}
	}
}

func sortNotes(notes []Note, c *Course) {
	order := func(n Note) int {
		if c == nil {
			return 0
		}
		if _, pos := c.Lesson(n.LessonID); pos >= 0 {
			return pos
		}
		return c.LessonCount()
	}
	sort.SliceStable(notes, func(i, j int) bool {
		oi, oj := order(notes[i]), order(notes[j])
		if oi != oj {
			return oi < oj
		}
		return notes[i].Timestamp < notes[j].Timestamp
	})
}
