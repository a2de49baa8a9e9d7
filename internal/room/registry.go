// Package room holds the process-wide room registry and the per-room
// timer state. Each Handle serializes all mutation of its room: client
// actions and timer callbacks both run under the handle lock.
package room

import (
	"sync"
	"time"

	"gilii/internal/domain"
)

// Handle pairs a room with its lock and timers. All access to Room goes
// through With.
type Handle struct {
	mu   sync.Mutex
	room *domain.Room

	// timersMu guards the timer fields; it is always acquired after mu,
	// never the other way around.
	timersMu   sync.Mutex
	turnTimer  *time.Timer
	idleTimers map[string]*time.Timer

	lastActivity time.Time
}

// With runs fn while holding the room lock.
func (h *Handle) With(fn func(r *domain.Room)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastActivity = time.Now()
	fn(h.room)
}

// SetTurnTimer arms the turn timer, superseding any pending one. The
// callback must re-validate the turn token under the room lock; a
// superseded timer that fires anyway sees a token mismatch and no-ops.
func (h *Handle) SetTurnTimer(d time.Duration, fn func()) {
	h.timersMu.Lock()
	defer h.timersMu.Unlock()
	if h.turnTimer != nil {
		h.turnTimer.Stop()
	}
	h.turnTimer = time.AfterFunc(d, fn)
}

// StopTurnTimer cancels any pending turn timer.
func (h *Handle) StopTurnTimer() {
	h.timersMu.Lock()
	defer h.timersMu.Unlock()
	if h.turnTimer != nil {
		h.turnTimer.Stop()
		h.turnTimer = nil
	}
}

// SetIdleTimer arms the per-player idle timer, superseding any pending one.
func (h *Handle) SetIdleTimer(playerID string, d time.Duration, fn func()) {
	h.timersMu.Lock()
	defer h.timersMu.Unlock()
	if t, ok := h.idleTimers[playerID]; ok {
		t.Stop()
	}
	h.idleTimers[playerID] = time.AfterFunc(d, fn)
}

// StopIdleTimer cancels the player's pending idle timer, if any.
func (h *Handle) StopIdleTimer(playerID string) {
	h.timersMu.Lock()
	defer h.timersMu.Unlock()
	if t, ok := h.idleTimers[playerID]; ok {
		t.Stop()
		delete(h.idleTimers, playerID)
	}
}

func (h *Handle) stopAllTimers() {
	h.timersMu.Lock()
	defer h.timersMu.Unlock()
	if h.turnTimer != nil {
		h.turnTimer.Stop()
		h.turnTimer = nil
	}
	for id, t := range h.idleTimers {
		t.Stop()
		delete(h.idleTimers, id)
	}
}

// Registry is the process-wide map of room id to handle. Rooms are
// created lazily on first reference and reaped by Sweep once idle.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Handle
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Handle)}
}

// GetOrCreate returns the handle for the room, creating it on first
// reference.
func (g *Registry) GetOrCreate(roomID string) *Handle {
	g.mu.RLock()
	h, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if ok {
		return h
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.rooms[roomID]; ok {
		return h
	}
	h = &Handle{
		room:         domain.NewRoom(roomID),
		idleTimers:   make(map[string]*time.Timer),
		lastActivity: time.Now(),
	}
	g.rooms[roomID] = h
	return h
}

// Get returns the handle for the room, or nil if it was never created.
func (g *Registry) Get(roomID string) *Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rooms[roomID]
}

// Sweep evicts rooms that have been idle longer than maxIdle and report
// no live interest via the occupied callback. Returns the evicted ids.
func (g *Registry) Sweep(maxIdle time.Duration, occupied func(roomID string) bool) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var evicted []string
	cutoff := time.Now().Add(-maxIdle)
	for id, h := range g.rooms {
		h.mu.Lock()
		idle := h.lastActivity.Before(cutoff) && h.room.Phase == domain.PhaseLobby
		if idle && !occupied(id) {
			h.stopAllTimers()
			delete(g.rooms, id)
			evicted = append(evicted, id)
		}
		h.mu.Unlock()
	}
	return evicted
}
