// AngelaMos | 2026
// handler.go

package realtime

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/learnhub/internal/middleware"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/events", h.Stream)
}

// Stream subscribes the caller to their own channel and the course feed.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	client := h.hub.NewClient(userID)
	h.hub.Subscribe(client, UserChannel(userID))
	h.hub.Subscribe(client, CoursesChannel)
	defer h.hub.Close(client)

	h.hub.Serve(w, r, client)
}
