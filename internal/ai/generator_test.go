// AngelaMos | 2026
// generator_test.go

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/config"
)

func TestGeminiClientGenerate(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":"},{"text":"true}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewGeminiClient(config.AIConfig{BaseURL: srv.URL, APIKey: "key-123", Model: "gemini-test", Timeout: time.Second})
	text, err := c.Generate(context.Background(), Prompt{
		System: "be terse",
		Messages: []Message{
			{Role: RoleUser, Text: "hi"},
			{Role: RoleModel, Text: "hello"},
			{Role: "assistant", Text: "coerced to user"},
		},
		JSON: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "be terse", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, RoleModel, got.Contents[1].Role)
	assert.Equal(t, RoleUser, got.Contents[2].Role)
	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMimeType)
}

func TestGeminiClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "http error",
			status: http.StatusTooManyRequests,
			body:   `{"error":"quota"}`,
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
			},
		},
		{
			name:   "no candidates",
			status: http.StatusOK,
			body:   `{"candidates":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewGeminiClient(config.AIConfig{BaseURL: srv.URL, Model: "m"})
			_, err := c.Generate(context.Background(), Prompt{Messages: []Message{{Role: RoleUser, Text: "x"}}})
			tt.check(t, err)
		})
	}
}
