package connectplus

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vovakirdan/connect-plus/internal/core"
)

// Token is the content of a board cell: the owning player's index, or NoToken.
type Token int8

// NoToken marks an empty cell. It is never a valid player index.
const NoToken Token = -1

// Empty reports whether the token is the empty marker.
func (t Token) Empty() bool {
	return t == NoToken
}

// Style holds presentation flags for a cell. The engine sets them as a side
// effect of win and power-up detection; renderers consume them as-is.
type Style struct {
	Dark    bool // dimmed (everything except a winning line)
	Light   bool // highlighted (freshly earned power-up line)
	Visible bool // false while a collapse animation is in flight
}

// defaultStyle is the style of every cell on a fresh board.
var defaultStyle = Style{Visible: true}

// Board is a width×height grid of tokens with a parallel grid of cell styles.
// Row 0 is the top of the board; tokens fall toward higher Y.
// Dimensions are fixed at construction. All methods are safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	width   int
	height  int
	players int
	tokens  []Token // row-major: index = y*width + x
	styles  []Style
	bus     *eventBus
}

// NewBoard creates an empty board for the given number of players.
func NewBoard(width, height, players int) *Board {
	b := &Board{
		width:   width,
		height:  height,
		players: players,
		tokens:  make([]Token, width*height),
		styles:  make([]Style, width*height),
	}
	for i := range b.tokens {
		b.tokens[i] = NoToken
		b.styles[i] = defaultStyle
	}
	return b
}

// Width returns the number of columns.
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows.
func (b *Board) Height() int {
	return b.height
}

// Players returns the number of players whose tokens the board accepts.
func (b *Board) Players() int {
	return b.players
}

// index converts a coordinate to a flat array index.
func (b *Board) index(c core.Coord) int {
	return c.Y*b.width + c.X
}

// InBounds returns true if the coordinate lies on the board.
func (b *Board) InBounds(c core.Coord) bool {
	return c.X >= 0 && c.X < b.width && c.Y >= 0 && c.Y < b.height
}

// mustBeInBounds panics on coordinates outside the board.
// Callers are expected to check InBounds first.
func (b *Board) mustBeInBounds(c core.Coord) {
	if !b.InBounds(c) {
		panic(fmt.Sprintf("connectplus: coordinate %v outside %dx%d board", c, b.width, b.height))
	}
}

// Get returns the token at c. It panics if c is out of bounds.
func (b *Board) Get(c core.Coord) Token {
	b.mustBeInBounds(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tokens[b.index(c)]
}

// IsEmpty returns true if the in-bounds cell at c holds no token.
func (b *Board) IsEmpty(c core.Coord) bool {
	return b.Get(c).Empty()
}

// Set overwrites the cell at c and notifies observers.
// It panics if c is out of bounds or the token's owner is not a player on this board.
func (b *Board) Set(c core.Coord, t Token) {
	b.mustBeInBounds(c)
	if t != NoToken && (t < 0 || int(t) >= b.players) {
		panic(fmt.Sprintf("connectplus: token owner %d outside [0,%d)", t, b.players))
	}

	b.mu.Lock()
	b.tokens[b.index(c)] = t
	b.mu.Unlock()

	b.bus.publish(CellChanged{At: c, Token: t})
}

// Place puts a token on the board and returns a function that restores the
// previous content of the cell. The restore function is safe to defer.
func (b *Board) Place(c core.Coord, t Token) (undo func()) {
	previous := b.Get(c)
	b.Set(c, t)
	return func() {
		b.Set(c, previous)
	}
}

// Style returns the cosmetic flags of the cell at c.
func (b *Board) Style(c core.Coord) Style {
	b.mustBeInBounds(c)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.styles[b.index(c)]
}

// SetStyle overwrites the cosmetic flags of the cell at c.
func (b *Board) SetStyle(c core.Coord, s Style) {
	b.mustBeInBounds(c)

	b.mu.Lock()
	changed := b.styles[b.index(c)] != s
	b.styles[b.index(c)] = s
	b.mu.Unlock()

	if changed {
		b.bus.publish(StyleChanged{At: c, Style: s})
	}
}

// updateStyle applies fn to the style of the cell at c. The read and the
// write happen under one lock so concurrent updates to other flags survive.
func (b *Board) updateStyle(c core.Coord, fn func(*Style)) {
	b.mustBeInBounds(c)

	b.mu.Lock()
	i := b.index(c)
	s := b.styles[i]
	fn(&s)
	changed := b.styles[i] != s
	b.styles[i] = s
	b.mu.Unlock()

	if changed {
		b.bus.publish(StyleChanged{At: c, Style: s})
	}
}

// ResetStyles restores every cell to the default style.
func (b *Board) ResetStyles() {
	for _, c := range b.AllCoords() {
		b.SetStyle(c, defaultStyle)
	}
}

// AllCoords returns every coordinate on the board, ordered by row then column.
func (b *Board) AllCoords() []core.Coord {
	coords := make([]core.Coord, 0, b.width*b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			coords = append(coords, core.C(x, y))
		}
	}
	return coords
}

// LegalMoves returns the resting coordinate of every column that still has room.
//
// Columns are visited center-out: the center column first (the left one of
// the two middle columns on even widths), then alternately right and left of
// it. Width 7 yields columns 3,4,2,5,1,6,0 and width 6 yields 2,3,1,4,0,5.
// The search relies on this order for move ordering and tie-breaking.
func (b *Board) LegalMoves() []core.Coord {
	moves := make([]core.Coord, 0, b.width)
	center := (b.width - 1) / 2

	for i := 0; i < b.width; i++ {
		offset := (i + 1) / 2
		if i%2 == 0 {
			offset = -offset
		}
		x := center + offset
		if x < 0 || x >= b.width {
			continue
		}

		// Drop from just above the board; a full column never moves.
		move := core.C(x, -1).DropTo(b, core.Down)
		if move.Y != -1 {
			moves = append(moves, move)
		}
	}
	return moves
}

// RestingCoord returns where a token dropped into column would land,
// and false if the column is full or off the board.
func (b *Board) RestingCoord(column int) (core.Coord, bool) {
	if column < 0 || column >= b.width {
		return core.Coord{}, false
	}
	c := core.C(column, -1).DropTo(b, core.Down)
	return c, c.Y != -1
}

// Full returns true if no column has room left.
func (b *Board) Full() bool {
	return len(b.LegalMoves()) == 0
}

// Count returns the number of tokens owned by player.
func (b *Board) Count(player int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, t := range b.tokens {
		if int(t) == player {
			n++
		}
	}
	return n
}

// Tokens returns a copy of the grid as rows of tokens, top row first.
func (b *Board) Tokens() [][]Token {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rows := make([][]Token, b.height)
	for y := range rows {
		rows[y] = make([]Token, b.width)
		copy(rows[y], b.tokens[y*b.width:(y+1)*b.width])
	}
	return rows
}

// Clone returns a deep copy of the board's tokens and styles.
// The copy has no observers, so mutating it is invisible to renderers.
func (b *Board) Clone() *Board {
	b.mu.RLock()
	defer b.mu.RUnlock()

	clone := &Board{
		width:   b.width,
		height:  b.height,
		players: b.players,
		tokens:  make([]Token, len(b.tokens)),
		styles:  make([]Style, len(b.styles)),
	}
	copy(clone.tokens, b.tokens)
	copy(clone.styles, b.styles)
	return clone
}

// Equal returns true if two boards have the same dimensions and tokens.
// Styles are ignored.
func (b *Board) Equal(other *Board) bool {
	if b.width != other.width || b.height != other.height {
		return false
	}
	a, o := b.Tokens(), other.Tokens()
	for y := range a {
		for x := range a[y] {
			if a[y][x] != o[y][x] {
				return false
			}
		}
	}
	return true
}

// String renders the board as text: '.' for empty cells and the player
// index for tokens, one row per line, top row first.
func (b *Board) String() string {
	var sb strings.Builder
	for y, row := range b.Tokens() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, t := range row {
			if t.Empty() {
				sb.WriteRune('.')
			} else {
				sb.WriteString(fmt.Sprintf("%d", t))
			}
		}
	}
	return sb.String()
}

// ParseBoard builds a board from rows in the format produced by String.
// Rows are listed top first and must all have the same width.
func ParseBoard(players int, rows ...string) (*Board, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("connectplus: board needs at least one row")
	}
	width := len(rows[0])
	b := NewBoard(width, len(rows), players)

	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("connectplus: row %d has width %d, expected %d", y, len(row), width)
		}
		for x, r := range row {
			if r == '.' {
				continue
			}
			owner := int(r - '0')
			if owner < 0 || owner >= players {
				return nil, fmt.Errorf("connectplus: invalid cell %q at (%d,%d)", r, x, y)
			}
			b.tokens[b.index(core.C(x, y))] = Token(owner)
		}
	}
	return b, nil
}
