// AngelaMos | 2026
// handler.go

package view

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/middleware"
)

// Handler serves navigation decisions and keeps a back/forward history per
// signed-in user.
type Handler struct {
	mu        sync.Mutex
	histories map[string]*History
	limit     int
}

func NewHandler() *Handler {
	return &Handler{
		histories: make(map[string]*History),
		limit:     DefaultHistoryLimit,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/navigation", func(r chi.Router) {
		r.Use(optionalAuth)

		r.Get("/resolve", h.Resolve)
		r.Get("/views", h.Views)
		r.Post("/visit", h.Visit)
		r.Post("/back", h.Back)
		r.Post("/forward", h.Forward)
	})
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	core.OK(w, Resolve(r.URL.Query().Get("hash"), role))
}

// Visit resolves hash and, for signed-in users, records the resulting view
// in their history.
func (h *Handler) Visit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := Resolve(r.URL.Query().Get("hash"), middleware.GetUserRole(ctx))

	if userID := middleware.GetUserID(ctx); userID != "" {
		h.mu.Lock()
		h.history(userID).Push(d.Route)
		h.mu.Unlock()
	}

	core.OK(w, d)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*History).Back)
}

func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*History).Forward)
}

// step moves the caller's history and re-resolves the entry against the
// current role, since access may have changed since it was recorded.
func (h *Handler) step(
	w http.ResponseWriter,
	r *http.Request,
	move func(*History) (Route, bool),
) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		core.Unauthorized(w, "sign in to use navigation history")
		return
	}

	h.mu.Lock()
	hist := h.history(userID)
	route, ok := move(hist)
	var d Decision
	if ok {
		d = Resolve(route.Hash(), middleware.GetUserRole(ctx))
		if d.Redirected {
			hist.Replace(d.Route)
		}
	}
	h.mu.Unlock()

	if !ok {
		core.NotFound(w, "history entry")
		return
	}
	core.OK(w, d)
}

// history returns the user's history, creating it on first use. Callers hold h.mu.
func (h *Handler) history(userID string) *History {
	hist, ok := h.histories[userID]
	if !ok {
		hist = NewHistory(h.limit)
		h.histories[userID] = hist
	}
	return hist
}

type viewResponse struct {
	Definition
	Hash    string `json:"hash"`
	Allowed bool   `json:"allowed"`
}

// Views lists every view annotated with whether the caller may open it.
func (h *Handler) Views(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())

	defs := Definitions()
	out := make([]viewResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, viewResponse{
			Definition: d,
			Hash:       Route{State: d.State}.Hash(),
			Allowed:    d.Allows(role) && !(d.GuestOnly && role != ""),
		})
	}
	core.OK(w, out)
}
