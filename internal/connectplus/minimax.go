package connectplus

import (
	"context"
	"errors"
	"math"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// DefaultDepth is the number of plies the minimax bot looks ahead.
const DefaultDepth = 3

// Heuristic weights for a freshly placed token.
// Two-in-a-row is deliberately worth more than three-in-a-row.
const (
	weightTwo   = 500_000
	weightThree = 90_000

	// Positional bonus: a downward parabola over the normalized distance
	// from the center column.
	positionQuadratic = 118
	positionLinear    = -227
	positionConstant  = 200

	// defaultWinningLength is assumed when a turn does not carry one.
	defaultWinningLength = 4
)

// MinimaxBot searches a fixed number of plies with negamax and an
// incremental evaluation. It only ever places tokens.
type MinimaxBot struct {
	Depth int
}

// NewMinimaxBot creates a minimax bot. Depths below one use DefaultDepth.
func NewMinimaxBot(depth int) *MinimaxBot {
	if depth < 1 {
		depth = DefaultDepth
	}
	return &MinimaxBot{Depth: depth}
}

// Kind returns KindMinimax.
func (m *MinimaxBot) Kind() Kind {
	return KindMinimax
}

// ChooseMove runs the search synchronously and drops into the best column.
func (m *MinimaxBot) ChooseMove(ctx context.Context, turn Turn) (Move, error) {
	if err := ctx.Err(); err != nil {
		return Move{}, err
	}
	if len(turn.Legal) == 0 {
		return Move{}, errors.New("connectplus: minimax bot asked to move on a full board")
	}
	column := m.BestColumn(turn.Board, turn.Player, turn.Opponent, turn.WinningLength)
	return Placement(column), nil
}

// BestColumn returns the column the search prefers for player me.
// The board is not modified: the search runs on a private copy.
func (m *MinimaxBot) BestColumn(b *Board, me, opponent, winningLength int) int {
	if winningLength < 1 {
		winningLength = defaultWinningLength
	}
	depth := m.Depth
	if depth < 1 {
		depth = DefaultDepth
	}

	s := &searcher{
		board:         b.Clone(),
		me:            Token(me),
		opponent:      Token(opponent),
		winningLength: winningLength,
	}
	// The root stands for the opponent's last move, so the first ply is ours.
	best := s.expand(s.board.LegalMoves(), 0, false, depth, 0)
	return best.coord.X
}

// analysis is the result of searching one node.
type analysis struct {
	coord core.Coord
	eval  float64
	found bool
}

// searcher holds the state of a single search.
type searcher struct {
	board         *Board
	me            Token
	opponent      Token
	winningLength int
}

// negamax places the candidate token for the side to move at this ply,
// accumulates its signed evaluation and either stops or searches deeper.
// The placement is undone on every return path.
func (s *searcher) negamax(coord core.Coord, eval float64, maximizing bool, depth, ply int) analysis {
	owner, sign := s.opponent, -1.0
	if maximizing {
		owner, sign = s.me, 1.0
	}

	undo := s.board.Place(coord, owner)
	defer undo()

	eval += sign * evaluateMove(s.board, coord, s.winningLength)

	legal := s.board.LegalMoves()
	if depth == 0 || math.IsInf(eval, 0) || len(legal) == 0 {
		// Leaf values are seen from the side that would move next.
		if ply%2 == 1 {
			eval = -eval
		}
		return analysis{coord: coord, eval: eval, found: true}
	}

	best := s.expand(legal, eval, maximizing, depth, ply)
	best.coord = coord
	return best
}

// expand searches every legal reply and keeps the one with the greatest
// negated value. The first move wins ties, so center columns are preferred.
func (s *searcher) expand(legal []core.Coord, eval float64, maximizing bool, depth, ply int) analysis {
	var best analysis
	for _, move := range legal {
		child := s.negamax(move, eval, !maximizing, depth-1, ply+1)
		value := -child.eval
		if !best.found || value > best.eval {
			best = analysis{coord: move, eval: value, found: true}
		}
	}
	return best
}

// evaluateMove scores the token just placed at coord.
// Runs through it add fixed weights, a winning run short-circuits to +Inf,
// and central columns earn a positional bonus. Any run of three or more
// that does not win weighs as a three.
func evaluateMove(b *Board, coord core.Coord, winningLength int) float64 {
	value := 0.0
	for _, line := range b.LinesThrough(coord, 2) {
		switch n := line.Len(); {
		case n >= winningLength:
			return math.Inf(1)
		case n == 2:
			value += weightTwo
		default:
			value += weightThree
		}
	}

	width := float64(b.Width())
	distance := math.Abs(width/2-float64(coord.X)) / width * 2
	value += positionQuadratic*distance*distance + positionLinear*distance + positionConstant

	return value
}
