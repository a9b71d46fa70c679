// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/learnhub/internal/store"
)

type UpdateUserRequest struct {
	Email  *string `json:"email,omitempty"  validate:"omitempty,email,max=255"`
	Name   *string `json:"name,omitempty"   validate:"omitempty,min=1,max=100"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,url,max=2048"`
	Bio    *string `json:"bio,omitempty"    validate:"omitempty,max=1000"`
	Title  *string `json:"title,omitempty"  validate:"omitempty,max=100"`
}

type SubscriptionResponse struct {
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	PausedUntil *time.Time `json:"paused_until,omitempty"`
}

type UserResponse struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Role         string               `json:"role"`
	Avatar       string               `json:"avatar,omitempty"`
	Bio          string               `json:"bio,omitempty"`
	Title        string               `json:"title,omitempty"`
	XP           int                  `json:"xp"`
	Streak       int                  `json:"streak"`
	LastActiveAt *time.Time           `json:"last_active_at,omitempty"`
	Enrolled     int                  `json:"enrolled_courses"`
	Subscription SubscriptionResponse `json:"subscription"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type CourseProgress struct {
	CourseID         string     `json:"course_id"`
	Title            string     `json:"title"`
	Category         string     `json:"category"`
	Difficulty       string     `json:"difficulty"`
	ThumbnailURL     string     `json:"thumbnail_url,omitempty"`
	TotalLessons     int        `json:"total_lessons"`
	CompletedLessons int        `json:"completed_lessons"`
	Percent          int        `json:"percent"`
	CertificateID    string     `json:"certificate_id,omitempty"`
	CertifiedAt      *time.Time `json:"certified_at,omitempty"`
}

type CertificateResponse struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	IssuedAt    time.Time `json:"issued_at"`
}

type AchievementResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToSubscriptionResponse(s store.Subscription, now time.Time) SubscriptionResponse {
	resp := SubscriptionResponse{
		Plan:   s.Plan,
		Status: s.EffectiveStatus(now),
	}
	if resp.Status == store.SubscriptionPaused {
		resp.PausedUntil = s.PausedUntil
	}
	return resp
}

func ToUserResponse(u *store.User, now time.Time) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Avatar:       u.Avatar,
		Bio:          u.Bio,
		Title:        u.Title,
		XP:           u.XP,
		Streak:       u.Streak,
		LastActiveAt: u.LastActiveAt,
		Enrolled:     len(u.EnrolledCourseIDs),
		Subscription: ToSubscriptionResponse(u.Subscription, now),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToUserResponseList(users []store.User, now time.Time) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i], now))
	}
	return responses
}
