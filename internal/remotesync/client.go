// AngelaMos | 2026
// client.go

package remotesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/carterperez-dev/learnhub/internal/config"
	"github.com/carterperez-dev/learnhub/internal/store"
)

const maxErrorBody = 512

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("remote sync http %d: %s", e.StatusCode, e.Body)
}

type profile struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	Role              string   `json:"role"`
	Avatar            string   `json:"avatar,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Title             string   `json:"title,omitempty"`
	XP                int      `json:"xp"`
	Streak            int      `json:"streak"`
	EnrolledCourseIDs []string `json:"enrolledCourseIds"`
}

// Client mirrors profile changes to the auxiliary account backend through
// PUT and DELETE on /api/users/{id}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns nil when no base URL is configured. A nil *Client must not be
// handed to the store as a Syncer; callers check Enabled first.
func New(cfg config.SyncConfig) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil
}

func (c *Client) PushUser(ctx context.Context, u *store.User) error {
	body := profile{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Role:              u.Role,
		Avatar:            u.Avatar,
		Bio:               u.Bio,
		Title:             u.Title,
		XP:                u.XP,
		Streak:            u.Streak,
		EnrolledCourseIDs: u.EnrolledCourseIDs,
	}
	return c.do(ctx, http.MethodPut, u.ID, body)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, id, nil)
}

func (c *Client) do(ctx context.Context, method, id string, body any) error {
	ctx, span := otel.Tracer("learnhub/remotesync").Start(ctx, "remotesync."+strings.ToLower(method))
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
	}

	endpoint := c.baseURL + "/api/users/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("sync request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best-effort error body
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		span.RecordError(httpErr)
		span.SetStatus(codes.Error, "unexpected status")
		return httpErr
	}

	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
	return nil
}
