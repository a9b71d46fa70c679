// AngelaMos | 2026
// hub.go

package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const outboundBuffer = 16

type Message struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data,omitempty"`
}

type Client struct {
	ID       string
	UserID   string
	channels map[string]struct{}
	outbound chan Message
	done     chan struct{}
	once     sync.Once
}

// Hub fans messages out to SSE clients by channel. Slow clients drop
// messages rather than block publishers.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*Client]struct{}
	heartbeat     time.Duration
	logger        *slog.Logger
}

func NewHub(heartbeat time.Duration, logger *slog.Logger) *Hub {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &Hub{
		subscriptions: make(map[string]map[*Client]struct{}),
		heartbeat:     heartbeat,
		logger:        logger.With("component", "sse_hub"),
	}
}

func (h *Hub) NewClient(userID string) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		channels: make(map[string]struct{}),
		outbound: make(chan Message, outboundBuffer),
		done:     make(chan struct{}),
	}
}

func (h *Hub) Subscribe(c *Client, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c.channels[channel] = struct{}{}
	clients, ok := h.subscriptions[channel]
	if !ok {
		clients = make(map[*Client]struct{})
		h.subscriptions[channel] = clients
	}
	clients[c] = struct{}{}
}

func (h *Hub) Unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, channel)
}

func (h *Hub) unsubscribeLocked(c *Client, channel string) {
	delete(c.channels, channel)
	if clients, ok := h.subscriptions[channel]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.subscriptions, channel)
		}
	}
}

// Close detaches the client from every channel and ends its stream.
func (h *Hub) Close(c *Client) {
	h.mu.Lock()
	for ch := range c.channels {
		h.unsubscribeLocked(c, ch)
	}
	h.mu.Unlock()
	c.once.Do(func() { close(c.done) })
}

func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.subscriptions[msg.Channel] {
		select {
		case c.outbound <- msg:
		default:
			h.logger.Warn("dropping sse message, outbound buffer full",
				"client_id", c.ID,
				"channel", msg.Channel,
			)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Client]struct{})
	for _, clients := range h.subscriptions {
		for c := range clients {
			seen[c] = struct{}{}
		}
	}
	return len(seen)
}

// Serve streams messages for c until the request ends or the client is
// closed.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, c *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{}) //nolint:errcheck // unsupported writers keep the default

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: ready\ndata: {\"client_id\":%q}\n\n", c.ID)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-c.outbound:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Warn("marshal sse message failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, data)
			flusher.Flush()
		}
	}
}
