// AngelaMos | 2026
// view_test.go

package view

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/middleware"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		want  Route
		known bool
	}{
		{in: "#landing", want: Route{State: Landing}, known: true},
		{in: "course-viewer/abc-123", want: Route{State: CourseViewer, Param: "abc-123"}, known: true},
		{in: "#Profile/", want: Route{State: Profile}, known: true},
		{in: "#course-viewer/a%20b", want: Route{State: CourseViewer, Param: "a b"}, known: true},
		{in: "#nowhere", want: Route{State: "nowhere"}, known: false},
		{in: "", want: Route{}, known: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, known := Parse(tt.in)
			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouteHashRoundTrip(t *testing.T) {
	r := Route{State: CourseViewer, Param: "a b"}
	assert.Equal(t, "#course-viewer/a%20b", r.Hash())

	back, ok := Parse(r.Hash())
	require.True(t, ok)
	assert.Equal(t, r, back)
}

func TestHome(t *testing.T) {
	assert.Equal(t, Landing, Home(""))
	assert.Equal(t, StudentDashboard, Home(RoleStudent))
	assert.Equal(t, InstructorDashboard, Home(RoleInstructor))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		hash       string
		role       string
		want       State
		redirected bool
		reason     string
	}{
		{name: "empty anonymous", hash: "", want: Landing},
		{name: "empty student", hash: "#", role: RoleStudent, want: StudentDashboard},
		{name: "public page", hash: "#about", want: About},
		{name: "unknown anonymous", hash: "#nope", want: Landing, redirected: true, reason: ReasonUnknown},
		{name: "unknown instructor", hash: "#nope", role: RoleInstructor, want: InstructorDashboard, redirected: true, reason: ReasonUnknown},
		{name: "protected anonymous", hash: "#profile", want: Login, redirected: true, reason: ReasonLoginRequired},
		{name: "student on creator", hash: "#course-creator", role: RoleStudent, want: StudentDashboard, redirected: true, reason: ReasonForbidden},
		{name: "instructor on student dash", hash: "#student-dashboard", role: RoleInstructor, want: InstructorDashboard, redirected: true, reason: ReasonForbidden},
		{name: "instructor on creator", hash: "#course-creator", role: RoleInstructor, want: CourseCreator},
		{name: "viewer without course", hash: "#course-viewer", role: RoleStudent, want: StudentDashboard, redirected: true, reason: ReasonMissingParam},
		{name: "viewer with course", hash: "#course-viewer/c1", role: RoleStudent, want: CourseViewer},
		{name: "login while signed in", hash: "#login", role: RoleStudent, want: StudentDashboard, redirected: true, reason: ReasonSignedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.hash, tt.role)
			assert.Equal(t, tt.want, d.Route.State)
			assert.Equal(t, tt.redirected, d.Redirected)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, d.Route.Hash(), d.Hash)
		})
	}
}

func TestResolveKeepsReturnTo(t *testing.T) {
	d := Resolve("#course-viewer/c9", "")
	assert.Equal(t, Login, d.Route.State)
	assert.Equal(t, "#course-viewer/c9", d.ReturnTo)

	d = Resolve("#about/ignored", "")
	assert.Equal(t, Route{State: About}, d.Route)
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	_, ok := h.Back()
	assert.False(t, ok)

	h.Push(Route{State: Landing})
	h.Push(Route{State: Login})
	h.Push(Route{State: Login})
	h.Push(Route{State: StudentDashboard})
	assert.Equal(t, 3, h.Len())

	r, ok := h.Back()
	require.True(t, ok)
	assert.Equal(t, Login, r.State)

	r, ok = h.Forward()
	require.True(t, ok)
	assert.Equal(t, StudentDashboard, r.State)
	_, ok = h.Forward()
	assert.False(t, ok)

	h.Back()
	h.Push(Route{State: Profile})
	_, ok = h.Forward()
	assert.False(t, ok, "push discards forward entries")

	h.Replace(Route{State: Help})
	cur, _ := h.Current()
	assert.Equal(t, Help, cur.State)

	h.Push(Route{State: About})
	assert.Equal(t, 3, h.Len())
	r, _ = h.Back()
	assert.Equal(t, Help, r.State)
	r, _ = h.Back()
	assert.Equal(t, Login, r.State)
	_, ok = h.Back()
	assert.False(t, ok, "oldest entry was evicted")
}

func TestHandlers(t *testing.T) {
	asInstructor := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Test-Role") != "" {
				r = r.WithContext(middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
					UserID: "u1",
					Role:   r.Header.Get("X-Test-Role"),
				}))
			}
			next.ServeHTTP(w, r)
		})
	}
	r := chi.NewRouter()
	NewHandler().RegisterRoutes(r, asInstructor)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/navigation/resolve?hash=%23course-creator", nil)
	req.Header.Set("X-Test-Role", RoleInstructor)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resolved struct {
		Data Decision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	assert.Equal(t, CourseCreator, resolved.Data.Route.State)
	assert.False(t, resolved.Data.Redirected)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/navigation/views", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var views struct {
		Data []viewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views.Data, len(definitions))

	allowed := map[State]bool{}
	for _, v := range views.Data {
		allowed[v.State] = v.Allowed
	}
	assert.True(t, allowed[Login])
	assert.False(t, allowed[Profile])
}

func TestHistoryHandlers(t *testing.T) {
	withRole := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role := r.Header.Get("X-Test-Role"); role != "" {
				r = r.WithContext(middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
					UserID: "u1",
					Role:   role,
				}))
			}
			next.ServeHTTP(w, r)
		})
	}
	r := chi.NewRouter()
	NewHandler().RegisterRoutes(r, withRole)

	call := func(path, role string) (int, Decision) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if role != "" {
			req.Header.Set("X-Test-Role", role)
		}
		r.ServeHTTP(rec, req)

		var body struct {
			Data Decision `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec.Code, body.Data
	}

	code, _ := call("/navigation/back", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, d := call("/navigation/visit?hash=%23about", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, About, d.Route.State)

	call("/navigation/visit?hash=%23course-creator", RoleInstructor)
	call("/navigation/visit?hash=%23profile", RoleInstructor)
	call("/navigation/visit?hash=%23help", RoleInstructor)

	code, d = call("/navigation/back", RoleInstructor)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, Profile, d.Route.State)

	code, d = call("/navigation/forward", RoleInstructor)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, Help, d.Route.State)

	code, _ = call("/navigation/forward", RoleInstructor)
	assert.Equal(t, http.StatusNotFound, code)

	call("/navigation/back", RoleInstructor)
	code, d = call("/navigation/back", RoleStudent)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, d.Redirected, "entries are re-checked against the current role")
	assert.Equal(t, StudentDashboard, d.Route.State)

	code, _ = call("/navigation/back", RoleStudent)
	assert.Equal(t, http.StatusNotFound, code)
}
