package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/ports"
)

// MemoryHub is a single-process hub: events fan out to in-process
// subscribers and the snapshot cache is a plain map. It backs local
// development and tests where redis is disabled.
type MemoryHub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[int]chan ports.Event
	next int

	cacheMu sync.RWMutex
	cache   map[uuid.UUID][]*entities.Widget
}

// NewMemoryHub creates an empty in-process hub.
func NewMemoryHub() *MemoryHub {
	return &MemoryHub{
		subs:  make(map[uuid.UUID]map[int]chan ports.Event),
		cache: make(map[uuid.UUID][]*entities.Widget),
	}
}

// Publish delivers the event to every live subscriber of its board.
// Slow subscribers drop events rather than block the publisher.
func (h *MemoryHub) Publish(_ context.Context, event ports.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[event.BoardID] {
		select {
		case ch <- event:
		default:
		}
	}

	return nil
}

// Subscribe registers a listener on the board's event stream.
func (h *MemoryHub) Subscribe(_ context.Context, boardID uuid.UUID) (<-chan ports.Event, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan ports.Event, 16)
	if h.subs[boardID] == nil {
		h.subs[boardID] = make(map[int]chan ports.Event)
	}
	id := h.next
	h.next++
	h.subs[boardID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[boardID], id)
			close(ch)
		})
	}

	return ch, cancel, nil
}

// GetWidgets returns the cached widget snapshot for a board, if present.
func (h *MemoryHub) GetWidgets(_ context.Context, boardID uuid.UUID) ([]*entities.Widget, bool) {
	h.cacheMu.RLock()
	defer h.cacheMu.RUnlock()

	widgets, ok := h.cache[boardID]
	if !ok {
		return nil, false
	}

	out := make([]*entities.Widget, len(widgets))
	copy(out, widgets)
	return out, true
}

// SetWidgets stores a board's widget snapshot.
func (h *MemoryHub) SetWidgets(_ context.Context, boardID uuid.UUID, widgets []*entities.Widget) {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()

	snapshot := make([]*entities.Widget, len(widgets))
	copy(snapshot, widgets)
	h.cache[boardID] = snapshot
}

// Invalidate drops a board's cached widget snapshot.
func (h *MemoryHub) Invalidate(_ context.Context, boardID uuid.UUID) {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()

	delete(h.cache, boardID)
}
