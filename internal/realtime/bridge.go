// AngelaMos | 2026
// bridge.go

package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/learnhub/internal/store"
)

const (
	CoursesChannel = "courses"
	publishTimeout = 2 * time.Second
)

func UserChannel(userID string) string {
	return "user:" + userID
}

// Bridge republishes store events on the bus.
type Bridge struct {
	bus    Bus
	logger *slog.Logger
}

func NewBridge(bus Bus, logger *slog.Logger) *Bridge {
	return &Bridge{bus: bus, logger: logger.With("component", "realtime_bridge")}
}

// Attach subscribes the bridge to s and returns the unsubscribe func.
func (b *Bridge) Attach(s *store.Store) func() {
	return s.Subscribe(b.handle)
}

func (b *Bridge) handle(ev store.Event) {
	for _, msg := range Route(ev) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := b.bus.Publish(ctx, msg); err != nil {
			b.logger.Warn("publish event failed", "event", ev.Type, "error", err)
		}
		cancel()
	}
}

// Route maps a store event to the channels that should see it. Session
// changes are local to the CLI and are not published.
func Route(ev store.Event) []Message {
	switch ev.Type {
	case store.EventSessionChanged:
		return nil
	case store.EventCourseSaved, store.EventCourseUpdated:
		return []Message{{Channel: CoursesChannel, Event: ev.Type, Data: ev}}
	}
	if ev.UserID == "" {
		return nil
	}
	return []Message{{Channel: UserChannel(ev.UserID), Event: ev.Type, Data: ev}}
}
