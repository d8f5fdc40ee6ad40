package visitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/clubs/internal/metrics"
	"github.com/jjenkins/clubs/internal/navigator"
)

// Registry maps session ids to live visitors
type Registry struct {
	deps Deps
	now  func() time.Time

	mu       sync.Mutex
	visitors map[string]*Visitor
}

// NewRegistry creates an empty registry
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{
		deps:     deps,
		now:      time.Now,
		visitors: make(map[string]*Visitor),
	}
}

// Get returns the visitor for id. A missing visitor is created from snapshot when
// one is given, otherwise at the directory and not yet mounted.
func (r *Registry) Get(id string, snapshot *navigator.Snapshot) (*Visitor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if v, ok := r.visitors[id]; ok {
		v.touch(now)
		return v, false
	}

	var nav *navigator.Navigator
	if snapshot != nil {
		nav = navigator.Restore(r.deps.Catalog, *snapshot)
	} else {
		nav = navigator.New(r.deps.Catalog)
	}

	v := newVisitor(id, nav, &r.deps, now)
	r.visitors[id] = v
	metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	return v, true
}

// Replace discards the visitor for id and starts a fresh, unmounted one
func (r *Registry) Replace(id string) *Visitor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.visitors[id]; ok {
		old.discard()
	}
	v := newVisitor(id, navigator.New(r.deps.Catalog), &r.deps, r.now())
	r.visitors[id] = v
	metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	return v
}

// Remove discards the visitor for id
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.visitors[id]; ok {
		v.discard()
		delete(r.visitors, id)
		metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	}
}

// Len returns the number of live visitors
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Sweep discards visitors idle for longer than maxIdle and returns how many were dropped
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	dropped := 0
	for id, v := range r.visitors {
		if v.idleSince().Before(cutoff) {
			v.discard()
			delete(r.visitors, id)
			dropped++
		}
	}
	metrics.ActiveVisitors.Set(float64(len(r.visitors)))
	return dropped
}

// Run sweeps idle visitors every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.deps.Logger.Debug("swept idle visitors", zap.Int("count", n))
			}
		}
	}
}
