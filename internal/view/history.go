// AngelaMos | 2026
// history.go

package view

const DefaultHistoryLimit = 50

// History is a bounded back/forward stack of routes.
type History struct {
	entries []Route
	index   int
	limit   int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{index: -1, limit: limit}
}

// Push records r as the current entry and discards any forward entries.
// Pushing the current route again is a no-op.
func (h *History) Push(r Route) {
	if cur, ok := h.Current(); ok && cur == r {
		return
	}
	h.entries = append(h.entries[:h.index+1], r)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.index = len(h.entries) - 1
}

func (h *History) Replace(r Route) {
	if h.index < 0 {
		h.Push(r)
		return
	}
	h.entries[h.index] = r
}

func (h *History) Current() (Route, bool) {
	if h.index < 0 {
		return Route{}, false
	}
	return h.entries[h.index], true
}

func (h *History) Back() (Route, bool) {
	if h.index <= 0 {
		return Route{}, false
	}
	h.index--
	return h.entries[h.index], true
}

func (h *History) Forward() (Route, bool) {
	if h.index >= len(h.entries)-1 {
		return Route{}, false
	}
	h.index++
	return h.entries[h.index], true
}

func (h *History) Len() int {
	return len(h.entries)
}
