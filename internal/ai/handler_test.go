// AngelaMos | 2026
// handler_test.go

package ai

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/core"
)

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(gen Generator) http.Handler {
	r := chi.NewRouter()
	NewHandler(NewService(gen, "https://img.example.com", nil)).RegisterRoutes(r, passthrough, nil)
	return r
}

func post(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, core.Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))

	var resp core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestQuizHandler(t *testing.T) {
	gen := &fakeGenerator{reply: `[{"question":"q","options":["a","b"],"correctAnswer":0,"explanation":"e"}]`}

	rec, resp := post(t, newTestRouter(gen), "/ai/quiz", `{"content":"lesson text","count":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestQuizHandlerUpstreamFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("timeout")}

	rec, resp := post(t, newTestRouter(gen), "/ai/quiz", `{"content":"lesson text"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Failed to generate quiz. Please try again.", resp.Error.Message)
}

func TestHandlerNotConfigured(t *testing.T) {
	rec, _ := post(t, newTestRouter(nil), "/ai/summary", `{"content":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, resp := post(t, newTestRouter(nil), "/ai/image", `{"prompt":"a lighthouse"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestHandlerValidation(t *testing.T) {
	h := newTestRouter(&fakeGenerator{})

	tests := []struct {
		path string
		body string
	}{
		{path: "/ai/outline", body: `{"topic":""}`},
		{path: "/ai/outline", body: `{"topic":"Go","difficulty":"expert"}`},
		{path: "/ai/tutor", body: `{"message":"hi","history":[{"role":"system","text":"x"}]}`},
		{path: "/ai/quiz", body: `{"content":"x","count":50}`},
		{path: "/ai/flashcards", body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.body, func(t *testing.T) {
			rec, _ := post(t, h, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
