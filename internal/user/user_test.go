// AngelaMos | 2026
// user_test.go

package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/middleware"
	"github.com/carterperez-dev/learnhub/internal/storage"
	"github.com/carterperez-dev/learnhub/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New(storage.NewMemory(), "test")
	return NewService(st), st
}

func createUser(t *testing.T, svc *Service, email, name, role string) string {
	t.Helper()
	info, err := svc.Create(context.Background(), email, "password123", name, role)
	require.NoError(t, err)
	return info.ID
}

func TestUserProvider(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id := createUser(t, svc, "Ada@Example.com", "Ada", "")

	info, err := svc.Authenticate(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, store.RoleStudent, info.Role)
	assert.Equal(t, store.PlanFree, info.Plan)

	_, err = svc.Authenticate(ctx, "ada@example.com", "nope")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.Create(ctx, "ada@example.com", "password123", "Ada", "")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	require.NoError(t, svc.IncrementTokenVersion(ctx, id))
	info, err = svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, info.TokenVersion)

	require.NoError(t, svc.UpdatePassword(ctx, id, "new-password"))
	_, err = svc.Authenticate(ctx, "ada@example.com", "new-password")
	assert.NoError(t, err)
}

func TestMyCoursesProgress(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	id := createUser(t, svc, "ada@example.com", "Ada", "")

	c, err := st.SaveCourse(ctx, store.Course{
		Title: "Go Basics",
		Modules: []store.Module{
			{Title: "Intro", Lessons: []store.Lesson{{Title: "Hello"}, {Title: "Types"}}},
		},
	})
	require.NoError(t, err)

	_, err = st.EnrollUser(ctx, id, c.ID)
	require.NoError(t, err)
	_, err = st.CompleteLesson(ctx, id, c.ID, c.Modules[0].Lessons[0].ID, time.Now())
	require.NoError(t, err)

	progress, err := svc.MyCourses(ctx, id)
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 2, progress[0].TotalLessons)
	assert.Equal(t, 1, progress[0].CompletedLessons)
	assert.Equal(t, 50, progress[0].Percent)
	assert.Empty(t, progress[0].CertificateID)

	_, err = st.CompleteLesson(ctx, id, c.ID, c.Modules[0].Lessons[1].ID, time.Now())
	require.NoError(t, err)
	_, err = st.IssueCertificate(ctx, id, c.ID)
	require.NoError(t, err)

	certs, err := svc.Certificates(ctx, id)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	assert.Equal(t, "Go Basics", certs[0].CourseTitle)

	achievements, err := svc.Achievements(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, achievements)
}

func TestTogglePause(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := createUser(t, svc, "ada@example.com", "Ada", "")

	sub, err := svc.TogglePause(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.SubscriptionPaused, sub.Status)
	require.NotNil(t, sub.PausedUntil)

	sub, err = svc.TogglePause(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.SubscriptionActive, sub.Status)
	assert.Nil(t, sub.PausedUntil)
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createUser(t, svc, "ada@example.com", "Ada Lovelace", store.RoleStudent)
	createUser(t, svc, "grace@example.com", "Grace Hopper", store.RoleInstructor)
	createUser(t, svc, "alan@example.com", "Alan Turing", store.RoleStudent)

	users, total, err := svc.ListUsers(ctx, ListUsersParams{Role: store.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = svc.ListUsers(ctx, ListUsersParams{Search: "HOPPER"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "grace@example.com", users[0].Email)

	users, total, err = svc.ListUsers(ctx, ListUsersParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 1)

	users, _, err = svc.ListUsers(ctx, ListUsersParams{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func withUser(id, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: id,
				Role:   role,
				Plan:   store.PlanFree,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func serve(t *testing.T, svc *Service, id, role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, withUser(id, role))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandlerMe(t *testing.T) {
	svc, _ := newTestService(t)
	id := createUser(t, svc, "ada@example.com", "Ada", "")

	rec := serve(t, svc, id, store.RoleStudent, http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = serve(t, svc, id, store.RoleStudent, http.MethodPut, "/users/me", map[string]string{"bio": "Hi", "title": "Student"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bio":"Hi"`)

	rec = serve(t, svc, id, store.RoleStudent, http.MethodPut, "/users/me", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, svc, id, store.RoleStudent, http.MethodPost, "/users/me/subscription/pause", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"paused"`)

	rec = serve(t, svc, id, store.RoleStudent, http.MethodDelete, "/users/me", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, svc, id, store.RoleStudent, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRosterRequiresInstructor(t *testing.T) {
	svc, _ := newTestService(t)
	student := createUser(t, svc, "ada@example.com", "Ada", store.RoleStudent)
	instructor := createUser(t, svc, "grace@example.com", "Grace", store.RoleInstructor)

	rec := serve(t, svc, student, store.RoleStudent, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, svc, instructor, store.RoleInstructor, http.MethodGet, "/users?role=student&page_size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Meta)
	assert.Equal(t, 1, body.Meta.Total)
	assert.Equal(t, 10, body.Meta.PageSize)
}
