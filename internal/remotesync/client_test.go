// AngelaMos | 2026
// client_test.go

package remotesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/config"
	"github.com/carterperez-dev/learnhub/internal/store"
)

func TestNewDisabledWithoutBaseURL(t *testing.T) {
	c := New(config.SyncConfig{})
	assert.Nil(t, c)
	assert.False(t, c.Enabled())
}

func TestPushUser(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(config.SyncConfig{BaseURL: srv.URL + "/"})
	require.True(t, c.Enabled())

	err := c.PushUser(context.Background(), &store.User{
		ID:           "u-1",
		Email:        "a@example.com",
		Name:         "Ada",
		PasswordHash: "secret-hash",
		Role:         store.RoleStudent,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/users/u-1", gotPath)
	assert.Equal(t, "Ada", gotBody["name"])
	assert.NotContains(t, gotBody, "passwordHash")
}

func TestDeleteUserErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		http.Error(w, "user not found", http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(config.SyncConfig{BaseURL: srv.URL}).DeleteUser(context.Background(), "u-2")
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "user not found", httpErr.Body)
}
