// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, rehash, err := CheckPassword("correct-horse", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehash)

	ok, _, err = CheckPassword("wrong-horse", &hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPasswordUnknownAccount(t *testing.T) {
	empty := ""
	for _, h := range []*string{nil, &empty} {
		ok, rehash, err := CheckPassword("learnhub-timing-equaliser", h)
		require.NoError(t, err)
		assert.False(t, ok, "the dummy hash must never authenticate")
		assert.Empty(t, rehash)
	}
}

func TestCheckPasswordUpgradesOldParams(t *testing.T) {
	old := argonParams{memory: 32 * 1024, time: 2, threads: 2, keyLen: 32}
	salt := []byte("0123456789abcdef")
	hash := old.encode(salt, old.derive("correct-horse", salt))

	ok, rehash, err := CheckPassword("correct-horse", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, rehash)

	params, _, _, err := parseHash(rehash)
	require.NoError(t, err)
	assert.Equal(t, currentParams, params)
}

func TestCheckPasswordRejectsForeignHash(t *testing.T) {
	bcrypt := "$2a$10$abcdefghijklmnopqrstuv"
	_, _, err := CheckPassword("x", &bcrypt)
	assert.Error(t, err)
}

func TestRefreshTokenHash(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, HashToken(a), HashToken(b))
}
