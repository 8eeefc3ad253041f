package connectplus

import (
	"slices"
	"sync"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// Event is a notification published by the engine to its observers.
// Renderers subscribe to events instead of reading engine state directly.
type Event interface {
	event()
}

// CellChanged is published whenever a board cell's token is written.
type CellChanged struct {
	At    core.Coord
	Token Token
}

func (CellChanged) event() {}

// StyleChanged is published whenever a cell's cosmetic flags change.
type StyleChanged struct {
	At    core.Coord
	Style Style
}

func (StyleChanged) event() {}

// TurnStarted is published before the active player is asked for a move.
type TurnStarted struct {
	Player    int
	Legal     []core.Coord
	CanRemove bool
	Powerups  int
}

func (TurnStarted) event() {}

// MoveApplied is published after a move has been fully resolved.
type MoveApplied struct {
	Outcome Outcome
}

func (MoveApplied) event() {}

// PowerupGranted is published when a placement earns power-up credit.
type PowerupGranted struct {
	Player int
	Count  int // credit granted by this move
	Total  int // credit held after the grant
	Cells  []core.Coord
}

func (PowerupGranted) event() {}

// MatchEnded is published once when the match reaches a terminal state.
type MatchEnded struct {
	Result Result
}

func (MatchEnded) event() {}

// Observer receives engine events. Observers are called synchronously from
// the goroutine that produced the event and must not block.
type Observer func(Event)

// eventBus fans events out to subscribed observers.
type eventBus struct {
	mu        sync.RWMutex
	nextID    int
	observers map[int]Observer
}

func newEventBus() *eventBus {
	return &eventBus{observers: make(map[int]Observer)}
}

// subscribe registers an observer and returns a function that removes it.
func (b *eventBus) subscribe(o Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.observers[id] = o

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

// publish delivers an event to every observer in subscription order.
func (b *eventBus) publish(e Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	if len(b.observers) == 0 {
		b.mu.RUnlock()
		return
	}
	ids := make([]int, 0, len(b.observers))
	for id := range b.observers {
		ids = append(ids, id)
	}
	observers := make([]Observer, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		observers = append(observers, b.observers[id])
	}
	b.mu.RUnlock()

	for _, o := range observers {
		o(e)
	}
}
