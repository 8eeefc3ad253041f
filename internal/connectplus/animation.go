package connectplus

import (
	"context"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// AnimationKind distinguishes a token dropped into a column from a token
// sliding down during a collapse.
type AnimationKind int

const (
	AnimationDrop AnimationKind = iota
	AnimationCollapse
)

// String returns the animation kind name.
func (k AnimationKind) String() string {
	if k == AnimationCollapse {
		return "collapse"
	}
	return "drop"
}

// Animation asks the renderer to move a token from one cell to another.
// From may lie above the board (Y = -1) for drops.
type Animation struct {
	Kind   AnimationKind
	From   core.Coord
	To     core.Coord
	Player int
}

// Rows returns how many rows the token travels.
func (a Animation) Rows() int {
	return core.Abs(a.To.Y - a.From.Y)
}

// Animator is the rendering gate the engine waits on while a token moves.
// Animate returns once the animation has finished or ctx is done; the
// engine never depends on how long that takes.
type Animator interface {
	Animate(ctx context.Context, a Animation)
}

// AnimatorFunc adapts a function to the Animator interface.
type AnimatorFunc func(ctx context.Context, a Animation)

// Animate calls f.
func (f AnimatorFunc) Animate(ctx context.Context, a Animation) {
	f(ctx, a)
}

// NoAnimation resolves every animation immediately. Headless matches and
// tests use it.
var NoAnimation Animator = AnimatorFunc(func(context.Context, Animation) {})
