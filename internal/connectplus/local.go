package connectplus

import "context"

// Local is a strategy driven by an external input source, such as a
// terminal UI. Moves are handed over with Submit while ChooseMove waits.
type Local struct {
	inputs chan Move
}

// NewLocal creates a human-driven strategy.
func NewLocal() *Local {
	return &Local{inputs: make(chan Move)}
}

// Kind returns KindLocal.
func (l *Local) Kind() Kind {
	return KindLocal
}

// Submit offers a move to a pending ChooseMove call.
// It never blocks: input arriving while no move is awaited is dropped and
// Submit returns false.
func (l *Local) Submit(m Move) bool {
	select {
	case l.inputs <- m:
		return true
	default:
		return false
	}
}

// ChooseMove waits for submitted input until a valid move arrives.
// Invalid input (a full column, an empty cell, a removal that is not
// allowed this turn) is ignored without consuming the turn.
func (l *Local) ChooseMove(ctx context.Context, turn Turn) (Move, error) {
	for {
		select {
		case <-ctx.Done():
			return Move{}, ctx.Err()
		case m := <-l.inputs:
			if validInput(m, turn) {
				return m, nil
			}
		}
	}
}

// validInput checks a submitted move against the turn.
func validInput(m Move, turn Turn) bool {
	switch m.Kind {
	case MovePlacement:
		return turn.IsLegalColumn(m.Column)
	case MoveRemoval:
		return turn.CanRemove && turn.Board.InBounds(m.Target) && !turn.Board.IsEmpty(m.Target)
	default:
		return false
	}
}
