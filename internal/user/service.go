// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/carterperez-dev/learnhub/internal/auth"
	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/store"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
) (*auth.UserInfo, error) {
	user, err := s.repo.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.User(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, password, name, role string,
) (*auth.UserInfo, error) {
	user, err := s.repo.CreateUser(ctx, store.NewUser{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	_, err := s.repo.BumpTokenVersion(ctx, userID)
	return err
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, password string,
) error {
	return s.repo.UpdatePassword(ctx, userID, password)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*store.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.User(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*store.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.repo.UpdateUser(ctx, userID, store.UserUpdate{
		Email:  req.Email,
		Name:   req.Name,
		Avatar: req.Avatar,
		Bio:    req.Bio,
		Title:  req.Title,
	})
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.DeleteUser(ctx, userID)
}

// MyCourses lists the user's enrolled courses in enrollment order with
// lesson progress.
func (s *Service) MyCourses(ctx context.Context, userID string) ([]CourseProgress, error) {
	user, err := s.repo.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.Courses(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*store.Course, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
	}

	progress := make([]CourseProgress, 0, len(user.EnrolledCourseIDs))
	for _, id := range user.EnrolledCourseIDs {
		c, ok := byID[id]
		if !ok {
			continue
		}
		progress = append(progress, courseProgress(user, c))
	}

	return progress, nil
}

func courseProgress(u *store.User, c *store.Course) CourseProgress {
	p := CourseProgress{
		CourseID:     c.ID,
		Title:        c.Title,
		Category:     c.Category,
		Difficulty:   c.Difficulty,
		ThumbnailURL: c.ThumbnailURL,
		TotalLessons: c.LessonCount(),
	}

	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if u.HasCompleted(l.ID) {
				p.CompletedLessons++
			}
		}
	}

	if p.TotalLessons > 0 {
		p.Percent = p.CompletedLessons * 100 / p.TotalLessons
	}

	if cert := u.Certificate(c.ID); cert != nil {
		issued := cert.IssuedAt
		p.CertificateID = cert.ID
		p.CertifiedAt = &issued
	}

	return p
}

func (s *Service) Certificates(ctx context.Context, userID string) ([]CertificateResponse, error) {
	user, err := s.repo.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	certs := make([]CertificateResponse, 0, len(user.Certificates))
	for _, c := range user.Certificates {
		certs = append(certs, CertificateResponse{
			ID:          c.ID,
			CourseID:    c.CourseID,
			CourseTitle: c.CourseTitle,
			IssuedAt:    c.IssuedAt,
		})
	}

	return certs, nil
}

func (s *Service) Achievements(ctx context.Context, userID string) ([]AchievementResponse, error) {
	user, err := s.repo.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]AchievementResponse, 0, len(user.Achievements))
	for _, a := range user.Achievements {
		out = append(out, AchievementResponse{
			ID:         a.ID,
			Title:      a.Title,
			UnlockedAt: a.UnlockedAt,
		})
	}

	return out, nil
}

func (s *Service) TogglePause(ctx context.Context, userID string) (*SubscriptionResponse, error) {
	now := s.now()

	sub, err := s.repo.ToggleSubscriptionPause(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	resp := ToSubscriptionResponse(*sub, now)
	return &resp, nil
}

// ListUsers filters by role and a case-insensitive name/email search, newest
// first.
func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]store.User, int, error) {
	params.Normalize()

	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, 0, err
	}

	search := strings.ToLower(strings.TrimSpace(params.Search))
	filtered := users[:0]
	for _, u := range users {
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(u.Email, search) {
			continue
		}
		filtered = append(filtered, u)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	return filtered[start:end], total, nil
}

func toUserInfo(u *store.User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Plan:         u.Subscription.Plan,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
