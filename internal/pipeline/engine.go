package pipeline

import "sync"

// Engine owns one View per user, created lazily on first access.
type Engine struct {
	deps Deps

	mu    sync.Mutex
	views map[string]*View
}

func NewEngine(deps Deps) *Engine {
	return &Engine{deps: deps, views: make(map[string]*View)}
}

func (e *Engine) ViewFor(userID string) *View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.views[userID]
	if !ok {
		v = newView(userID, e.deps)
		e.views[userID] = v
	}
	return v
}

// InvalidateUser refreshes one user's view, typically after a
// preference change.
func (e *Engine) InvalidateUser(userID string) {
	e.ViewFor(userID).Refresh()
}

// InvalidateAll refreshes every materialized view, typically after a
// feed sync rewrote the offer set.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	views := make([]*View, 0, len(e.views))
	for _, v := range e.views {
		views = append(views, v)
	}
	e.mu.Unlock()

	for _, v := range views {
		v.Refresh()
	}
}
