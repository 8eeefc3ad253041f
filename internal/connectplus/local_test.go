package connectplus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/connect-plus/internal/core"
)

func localTurn(t *testing.T, canRemove bool) Turn {
	t.Helper()
	b := mustParse(t, 2,
		"1..",
		"0..",
		"01.",
	)
	return Turn{
		Board:         b,
		Legal:         b.LegalMoves(),
		Player:        0,
		Opponent:      1,
		CanRemove:     canRemove,
		WinningLength: 3,
	}
}

// submitUntilAccepted retries until the strategy is waiting for input.
func submitUntilAccepted(t *testing.T, l *Local, m Move) {
	t.Helper()
	require.Eventually(t, func() bool { return l.Submit(m) }, time.Second, time.Millisecond)
}

func TestLocalSubmitWithoutPendingMove(t *testing.T) {
	l := NewLocal()
	assert.False(t, l.Submit(Placement(1)))
	assert.Equal(t, KindLocal, l.Kind())
}

func TestLocalIgnoresInvalidInput(t *testing.T) {
	l := NewLocal()
	turn := localTurn(t, false)

	result := make(chan Move, 1)
	go func() {
		m, err := l.ChooseMove(context.Background(), turn)
		if err == nil {
			result <- m
		}
	}()

	submitUntilAccepted(t, l, Placement(0))            // full column
	submitUntilAccepted(t, l, Placement(7))            // off the board
	submitUntilAccepted(t, l, Removal(core.C(0, 2)))   // removal not allowed
	submitUntilAccepted(t, l, Move{Kind: MoveKind(9)}) // unknown kind
	submitUntilAccepted(t, l, Placement(2))

	select {
	case m := <-result:
		assert.Equal(t, Placement(2), m)
	case <-time.After(time.Second):
		t.Fatal("valid input was not accepted")
	}
}

func TestLocalRemoval(t *testing.T) {
	l := NewLocal()
	turn := localTurn(t, true)

	result := make(chan Move, 1)
	go func() {
		m, err := l.ChooseMove(context.Background(), turn)
		if err == nil {
			result <- m
		}
	}()

	submitUntilAccepted(t, l, Removal(core.C(2, 2))) // empty cell
	submitUntilAccepted(t, l, Removal(core.C(1, 2)))

	select {
	case m := <-result:
		assert.Equal(t, Removal(core.C(1, 2)), m)
	case <-time.After(time.Second):
		t.Fatal("removal was not accepted")
	}
}

func TestLocalContextCancel(t *testing.T) {
	l := NewLocal()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := l.ChooseMove(ctx, localTurn(t, false))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRandomBotPicksLegalColumns(t *testing.T) {
	bot := NewRandomBot(0, 42)
	turn := localTurn(t, false)
	assert.Equal(t, KindRandom, bot.Kind())

	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		m, err := bot.ChooseMove(context.Background(), turn)
		require.NoError(t, err)
		assert.Equal(t, MovePlacement, m.Kind)
		assert.True(t, turn.IsLegalColumn(m.Column), "column %d", m.Column)
		seen[m.Column] = true
	}
	assert.Len(t, seen, 2, "both playable columns get picked")
}

func TestRandomBotSeedIsReproducible(t *testing.T) {
	turn := localTurn(t, false)
	a, b := NewRandomBot(0, 7), NewRandomBot(0, 7)

	for i := 0; i < 10; i++ {
		ma, err := a.ChooseMove(context.Background(), turn)
		require.NoError(t, err)
		mb, err := b.ChooseMove(context.Background(), turn)
		require.NoError(t, err)
		assert.Equal(t, ma, mb)
	}
}

func TestRandomBotDelayHonoursContext(t *testing.T) {
	bot := NewRandomBot(time.Hour, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bot.ChooseMove(ctx, localTurn(t, false))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = bot.ChooseMove(context.Background(), Turn{Board: NewBoard(1, 1, 2)})
	assert.Error(t, err, "no legal moves")
}
