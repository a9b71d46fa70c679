// AngelaMos | 2026
// memory.go

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/learnhub/internal/core"
)

type memoryRepository struct {
	mu     sync.Mutex
	byID   map[string]*RefreshToken
	byHash map[string]string
}

// NewMemoryRepository keeps refresh tokens in process. Sessions do not
// survive a restart.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:   make(map[string]*RefreshToken),
		byHash: make(map[string]string),
	}
}

func (r *memoryRepository) Create(_ context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	if _, ok := r.byID[token.ID]; ok {
		return fmt.Errorf("create refresh token: %w", core.ErrDuplicateKey)
	}

	stored := *token
	r.byID[token.ID] = &stored
	r.byHash[token.TokenHash] = token.ID
	return nil
}

func (r *memoryRepository) FindByHash(
	_ context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byHash[tokenHash]
	if !ok {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	token := *r.byID[id]
	return &token, nil
}

func (r *memoryRepository) FindByID(
	_ context.Context,
	id string,
) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	token := *stored
	return &token, nil
}

func (r *memoryRepository) MarkAsUsed(
	_ context.Context,
	id, replacedByID string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byID[id]
	if !ok || token.IsUsed {
		return fmt.Errorf("mark refresh token as used: %w", core.ErrNotFound)
	}
	token.MarkAsUsed(replacedByID)
	return nil
}

func (r *memoryRepository) RevokeByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byID[id]
	if !ok || token.IsRevoked() {
		return fmt.Errorf("revoke refresh token: %w", core.ErrNotFound)
	}
	token.Revoke()
	return nil
}

func (r *memoryRepository) revokeWhere(match func(*RefreshToken) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.byID {
		if match(token) && !token.IsRevoked() {
			token.Revoke()
		}
	}
}

func (r *memoryRepository) RevokeByFamilyID(
	_ context.Context,
	familyID string,
) error {
	r.revokeWhere(func(t *RefreshToken) bool { return t.FamilyID == familyID })
	return nil
}

func (r *memoryRepository) RevokeAllForUser(
	_ context.Context,
	userID string,
) error {
	r.revokeWhere(func(t *RefreshToken) bool { return t.UserID == userID })
	return nil
}

func (r *memoryRepository) GetActiveSessionsForUser(
	_ context.Context,
	userID string,
) ([]RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var tokens []RefreshToken
	for _, token := range r.byID {
		if token.UserID == userID && token.IsValid() {
			tokens = append(tokens, *token)
		}
	}

	sortNewestFirst(tokens)
	return tokens, nil
}

func (r *memoryRepository) DeleteExpired(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	var deleted int64
	for id, token := range r.byID {
		if token.ExpiresAt.Before(cutoff) {
			delete(r.byHash, token.TokenHash)
			delete(r.byID, id)
			deleted++
		}
	}

	return deleted, nil
}
