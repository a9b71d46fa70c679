// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"time"

	"github.com/carterperez-dev/learnhub/internal/store"
)

// Repository is the slice of the store the user service depends on.
type Repository interface {
	User(ctx context.Context, id string) (*store.User, error)
	Users(ctx context.Context) ([]store.User, error)
	Courses(ctx context.Context) ([]store.Course, error)
	Authenticate(ctx context.Context, email, password string) (*store.User, error)
	CreateUser(ctx context.Context, in store.NewUser) (*store.User, error)
	UpdateUser(ctx context.Context, id string, upd store.UserUpdate) (*store.User, error)
	UpdatePassword(ctx context.Context, id, password string) error
	BumpTokenVersion(ctx context.Context, id string) (int, error)
	DeleteUser(ctx context.Context, id string) error
	ToggleSubscriptionPause(ctx context.Context, id string, now time.Time) (*store.Subscription, error)
}

var _ Repository = (*store.Store)(nil)
