package registry

import (
	"fmt"
	"time"

	"github.com/vovakirdan/connect-plus/internal/config"
	"github.com/vovakirdan/connect-plus/internal/connectplus"
)

// DeepDepth is the search depth of the minimax-deep opponent.
const DeepDepth = 5

func init() {
	Register(OpponentInfo{
		ID:          config.KindHuman,
		Title:       "Human",
		Description: "Moves are entered at the keyboard",
	}, func(Params) connectplus.Strategy {
		return connectplus.NewLocal()
	})

	Register(OpponentInfo{
		ID:          config.KindRandom,
		Title:       "Random Bot",
		Description: "Drops into a random playable column",
		Bot:         true,
	}, func(p Params) connectplus.Strategy {
		delay := p.Delay
		if delay == 0 {
			delay = connectplus.DefaultRandomDelay
		}
		return connectplus.NewRandomBot(delay, p.Seed)
	})

	Register(OpponentInfo{
		ID:          config.KindMinimax,
		Title:       "Minimax Bot",
		Description: fmt.Sprintf("Looks %d moves ahead", connectplus.DefaultDepth),
		Bot:         true,
	}, func(p Params) connectplus.Strategy {
		return connectplus.NewMinimaxBot(p.Depth)
	})

	Register(OpponentInfo{
		ID:          config.KindMinimaxDeep,
		Title:       "Deep Minimax Bot",
		Description: fmt.Sprintf("Looks %d moves ahead", DeepDepth),
		Bot:         true,
	}, func(p Params) connectplus.Strategy {
		depth := p.Depth
		if depth == 0 {
			depth = DeepDepth
		}
		return connectplus.NewMinimaxBot(depth)
	})
}

// FromConfig creates the strategy of every seat in a match configuration.
// Each bot gets its own seed derived from seed so seats do not mirror
// each other.
func FromConfig(cfg config.MatchConfig, seed int64) ([]connectplus.Strategy, error) {
	strategies := make([]connectplus.Strategy, 0, len(cfg.Players))
	for i, p := range cfg.Players {
		params := Params{
			Depth: p.Depth,
			Delay: time.Duration(p.DelayMS) * time.Millisecond,
		}
		if seed != 0 {
			params.Seed = seed + int64(i)
		}

		s, err := Create(p.Kind, params)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}
