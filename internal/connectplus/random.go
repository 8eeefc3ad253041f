package connectplus

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// DefaultRandomDelay paces the random bot so its moves are visible.
const DefaultRandomDelay = 300 * time.Millisecond

// RandomBot drops tokens into uniformly random playable columns.
type RandomBot struct {
	Delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomBot creates a random bot. A zero seed uses the current time.
func NewRandomBot(delay time.Duration, seed int64) *RandomBot {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBot{
		Delay: delay,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Kind returns KindRandom.
func (r *RandomBot) Kind() Kind {
	return KindRandom
}

// ChooseMove waits for Delay, then picks a legal column at random.
func (r *RandomBot) ChooseMove(ctx context.Context, turn Turn) (Move, error) {
	if len(turn.Legal) == 0 {
		return Move{}, errors.New("connectplus: random bot asked to move on a full board")
	}

	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Move{}, ctx.Err()
		case <-timer.C:
		}
	}

	r.mu.Lock()
	i := r.rng.Intn(len(turn.Legal))
	r.mu.Unlock()

	return Placement(turn.Legal[i].X), nil
}
