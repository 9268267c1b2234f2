package presenter

import (
	"context"
	"io"
	"log"
	"sync"

	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

const defaultEventCapacity = 256

// Hub keeps the latest mission snapshot and a bounded window of world
// events for readers on other goroutines.
type Hub struct {
	mu         sync.RWMutex
	logger     *log.Logger
	latest     mission.Snapshot
	hasLatest  bool
	terminated bool
	events     []world.Event
	capacity   int
}

func NewHub(logger *log.Logger, capacity int) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if capacity <= 0 {
		capacity = defaultEventCapacity
	}
	return &Hub{logger: logger, capacity: capacity}
}

func (h *Hub) OnTick(_ context.Context, snap mission.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = snap
	h.hasLatest = true
}

func (h *Hub) OnEvent(_ context.Context, evt world.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, evt)
	if over := len(h.events) - h.capacity; over > 0 {
		h.events = append(h.events[:0:0], h.events[over:]...)
	}
}

func (h *Hub) OnTerminate(_ context.Context, snap mission.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = snap
	h.hasLatest = true
	h.terminated = true
	h.logger.Printf("run %s terminated at tick %d, position %s, collected %d", snap.RunID, snap.Tick, snap.Position, snap.Progress.Collected)
}

func (h *Hub) Latest() (mission.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.hasLatest
}

func (h *Hub) Terminated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.terminated
}

// RecentWorldEvents returns up to limit events, newest first.
func (h *Hub) RecentWorldEvents(limit int) []world.Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if limit <= 0 || limit > len(h.events) {
		limit = len(h.events)
	}
	out := make([]world.Event, 0, limit)
	for i := len(h.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.events[i])
	}
	return out
}
