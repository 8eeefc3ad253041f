// Package registry provides a global catalog of opponents.
// Opponents register themselves in init() functions, allowing the CLI and
// the terminal UI to list and seat them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/connect-plus/internal/connectplus"
)

// Params tunes the strategy a factory builds. Zero values select the
// opponent's own defaults.
type Params struct {
	Depth int
	Delay time.Duration
	Seed  int64
}

// OpponentInfo contains metadata about a registered opponent.
type OpponentInfo struct {
	ID          string
	Title       string
	Description string
	Bot         bool
}

// Factory creates a new strategy for one seat.
type Factory func(p Params) connectplus.Strategy

type entry struct {
	info    OpponentInfo
	factory Factory
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds an opponent to the registry.
// Typically called from an init() function.
// Panics if an opponent with the same ID is already registered.
func Register(info OpponentInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[info.ID]; exists {
		panic(fmt.Sprintf("registry: opponent %q already registered", info.ID))
	}

	entries[info.ID] = entry{info: info, factory: f}
}

// List returns information about all registered opponents, sorted by ID.
func List() []OpponentInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]OpponentInfo, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a strategy by opponent ID.
// Returns an error if the ID is not registered.
func Create(id string, p Params) (connectplus.Strategy, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown opponent %q", id)
	}

	return e.factory(p), nil
}

// Info returns the metadata of a registered opponent.
func Info(id string) (OpponentInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	return e.info, ok
}

// Exists checks if an opponent with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}
