// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/learnhub/internal/core"
)

type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	FindByID(ctx context.Context, id string) (*RefreshToken, error)
	MarkAsUsed(ctx context.Context, id, replacedByID string) error
	RevokeByID(ctx context.Context, id string) error
	RevokeByFamilyID(ctx context.Context, familyID string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	GetActiveSessionsForUser(
		ctx context.Context,
		userID string,
	) ([]RefreshToken, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// retention keeps used and revoked tokens around after expiry so reuse of
// a rotated token is still detected.
const retention = 24 * time.Hour

type redisRepository struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisRepository stores each token as a JSON value with a TTL, plus a
// hash lookup key and per-user and per-family id sets.
func NewRedisRepository(rdb *redis.Client, prefix string) Repository {
	if prefix == "" {
		prefix = "auth"
	}
	return &redisRepository{rdb: rdb, prefix: prefix}
}

func (r *redisRepository) tokenKey(id string) string {
	return r.prefix + ":rt:" + id
}

func (r *redisRepository) hashKey(hash string) string {
	return r.prefix + ":rt:hash:" + hash
}

func (r *redisRepository) userKey(userID string) string {
	return r.prefix + ":rt:user:" + userID
}

func (r *redisRepository) familyKey(familyID string) string {
	return r.prefix + ":rt:family:" + familyID
}

func ttlFor(token *RefreshToken) time.Duration {
	ttl := time.Until(token.ExpiresAt) + retention
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (r *redisRepository) Create(ctx context.Context, token *RefreshToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	ttl := ttlFor(token)
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.tokenKey(token.ID), data, ttl)
		pipe.Set(ctx, r.hashKey(token.TokenHash), token.ID, ttl)
		pipe.SAdd(ctx, r.userKey(token.UserID), token.ID)
		pipe.Expire(ctx, r.userKey(token.UserID), ttl)
		pipe.SAdd(ctx, r.familyKey(token.FamilyID), token.ID)
		pipe.Expire(ctx, r.familyKey(token.FamilyID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *redisRepository) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	id, err := r.rdb.Get(ctx, r.hashKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *redisRepository) FindByID(
	ctx context.Context,
	id string,
) (*RefreshToken, error) {
	data, err := r.rdb.Get(ctx, r.tokenKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	var token RefreshToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode refresh token: %w", err)
	}

	return &token, nil
}

// update applies fn under WATCH so concurrent rotations of the same token
// cannot both succeed.
func (r *redisRepository) update(
	ctx context.Context,
	id string,
	fn func(*RefreshToken) error,
) error {
	key := r.tokenKey(id)

	return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}

		var token RefreshToken
		if err := json.Unmarshal(data, &token); err != nil {
			return fmt.Errorf("decode refresh token: %w", err)
		}

		if err := fn(&token); err != nil {
			return err
		}

		updated, err := json.Marshal(&token)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}, key)
}

func (r *redisRepository) MarkAsUsed(
	ctx context.Context,
	id, replacedByID string,
) error {
	err := r.update(ctx, id, func(t *RefreshToken) error {
		if t.IsUsed {
			return core.ErrNotFound
		}
		t.MarkAsUsed(replacedByID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark refresh token as used: %w", err)
	}

	return nil
}

func (r *redisRepository) RevokeByID(ctx context.Context, id string) error {
	err := r.update(ctx, id, func(t *RefreshToken) error {
		if t.IsRevoked() {
			return core.ErrNotFound
		}
		t.Revoke()
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

func (r *redisRepository) revokeSet(ctx context.Context, setKey string) error {
	ids, err := r.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return err
	}

	for _, id := range ids {
		err := r.RevokeByID(ctx, id)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}
	}

	return nil
}

func (r *redisRepository) RevokeByFamilyID(
	ctx context.Context,
	familyID string,
) error {
	if err := r.revokeSet(ctx, r.familyKey(familyID)); err != nil {
		return fmt.Errorf("revoke token family: %w", err)
	}
	return nil
}

func (r *redisRepository) RevokeAllForUser(
	ctx context.Context,
	userID string,
) error {
	if err := r.revokeSet(ctx, r.userKey(userID)); err != nil {
		return fmt.Errorf("revoke all user tokens: %w", err)
	}
	return nil
}

func (r *redisRepository) GetActiveSessionsForUser(
	ctx context.Context,
	userID string,
) ([]RefreshToken, error) {
	ids, err := r.rdb.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get active sessions: %w", err)
	}

	tokens := make([]RefreshToken, 0, len(ids))
	var stale []any
	for _, id := range ids {
		token, err := r.FindByID(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get active sessions: %w", err)
		}
		if token.IsValid() {
			tokens = append(tokens, *token)
		}
	}

	if len(stale) > 0 {
		//nolint:errcheck // stale set members expire with the set anyway
		_ = r.rdb.SRem(ctx, r.userKey(userID), stale...).Err()
	}

	sortNewestFirst(tokens)
	return tokens, nil
}

// DeleteExpired is a no-op for Redis: token keys carry their own TTL.
func (r *redisRepository) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

func sortNewestFirst(tokens []RefreshToken) {
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
	})
}
