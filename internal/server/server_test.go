// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/config"
)

type recordingLifecycle struct {
	ready    bool
	shutdown bool
}

func (l *recordingLifecycle) SetReady(ready bool)       { l.ready = ready }
func (l *recordingLifecycle) SetShutdown(shutdown bool) { l.shutdown = shutdown }

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
}

func TestRecoversFromPanics(t *testing.T) {
	srv := New(Config{ServerConfig: testConfig()})
	srv.Router().Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestShutdownMarksLifecycle(t *testing.T) {
	lc := &recordingLifecycle{ready: true}
	srv := New(Config{ServerConfig: testConfig(), HealthHandler: lc})

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx, 0))

	assert.False(t, lc.ready)
	assert.True(t, lc.shutdown)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
