package tui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/connect-plus/internal/connectplus"
	"github.com/vovakirdan/connect-plus/internal/core"
)

// fallingMsg moves an in-flight token one row. Done removes it.
type fallingMsg struct {
	id     int64
	at     core.Coord
	player int
	done   bool
}

// animator plays engine animations as a sequence of fallingMsg frames,
// one row per perRow. It blocks the engine until the token has landed.
type animator struct {
	send   func(tea.Msg)
	perRow time.Duration
	nextID atomic.Int64
}

func newAnimator(send func(tea.Msg), perRow time.Duration) *animator {
	return &animator{send: send, perRow: perRow}
}

// Animate implements connectplus.Animator.
func (a *animator) Animate(ctx context.Context, anim connectplus.Animation) {
	if a.perRow <= 0 || anim.Rows() == 0 {
		return
	}
	id := a.nextID.Add(1)
	defer a.send(fallingMsg{id: id, done: true})

	step := 1
	if anim.To.Y < anim.From.Y {
		step = -1
	}

	timer := time.NewTimer(a.perRow)
	defer timer.Stop()
	for y := anim.From.Y; y != anim.To.Y; y += step {
		if y >= 0 {
			a.send(fallingMsg{id: id, at: core.C(anim.To.X, y), player: anim.Player})
		}
		timer.Reset(a.perRow)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}
