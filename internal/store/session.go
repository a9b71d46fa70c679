// AngelaMos | 2026
// session.go

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/storage"
)

func (s *Store) CurrentUser(ctx context.Context) (*User, error) {
	data, err := s.kv.Get(ctx, s.sessionKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	u, err := s.User(ctx, string(data))
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrNoSession
	}
	return u, err
}

// Authenticate checks credentials without touching the session.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.UserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	var hash *string
	if u != nil {
		hash = &u.PasswordHash
	}

	valid, newHash, err := core.CheckPassword(password, hash)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("authenticate: %w", core.ErrUnauthorized)
	}

	if newHash != "" {
		if err := s.setPasswordHash(ctx, u.ID, newHash, false); err != nil {
			s.logger.Warn("password rehash failed", "user_id", u.ID, "error", err)
		}
	}

	return u, nil
}

func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.setSession(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser registers a new account without starting a session.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	role := in.Role
	if role == "" {
		role = RoleStudent
	}
	if role != RoleStudent && role != RoleInstructor {
		return nil, fmt.Errorf("create user: role %q: %w", role, core.ErrInvalidInput)
	}
	email := normaliseEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("create user: email and password required: %w", core.ErrInvalidInput)
	}

	hash, err := core.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	u := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         role,
	}

	err = s.mutate(ctx, func(snap *snapshot) error {
		if snap.emailIndex(email) >= 0 {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		normaliseUser(&u, s.now())
		snap.Users = append(snap.Users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventUserCreated, UserID: u.ID})
	return &u, nil
}

// Signup creates the account and makes it the current session.
func (s *Store) Signup(ctx context.Context, in NewUser) (*User, error) {
	u, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.setSession(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.sessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.emit(Event{Type: EventSessionChanged})
	return nil
}

func (s *Store) setSession(ctx context.Context, userID string) error {
	if err := s.kv.Set(ctx, s.sessionKey, []byte(userID)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.emit(Event{Type: EventSessionChanged, UserID: userID})
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, userID, password string) error {
	if password == "" {
		return fmt.Errorf("update password: %w", core.ErrInvalidInput)
	}
	hash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.setPasswordHash(ctx, userID, hash, true); err != nil {
		return err
	}
	s.emit(Event{Type: EventUserUpdated, UserID: userID})
	return nil
}

func (s *Store) setPasswordHash(ctx context.Context, userID, hash string, bumpVersion bool) error {
	return s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("set password: %w", core.ErrNotFound)
		}
		snap.Users[i].PasswordHash = hash
		if bumpVersion {
			snap.Users[i].TokenVersion++
		}
		snap.Users[i].UpdatedAt = s.now()
		return nil
	})
}

// BumpTokenVersion invalidates every access token issued to the user.
func (s *Store) BumpTokenVersion(ctx context.Context, userID string) (int, error) {
	var version int
	err := s.mutate(ctx, func(snap *snapshot) error {
		i := snap.userIndex(userID)
		if i < 0 {
			return fmt.Errorf("bump token version: %w", core.ErrNotFound)
		}
		snap.Users[i].TokenVersion++
		version = snap.Users[i].TokenVersion
		return nil
	})
	return version, err
}
