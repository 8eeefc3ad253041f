package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vovakirdan/connect-plus/internal/connectplus"
	"github.com/vovakirdan/connect-plus/internal/core"
)

// console reads moves for human seats from a line-oriented input.
// One reader goroutine serves every seat.
type console struct {
	out   io.Writer
	lines chan string
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{out: out, lines: make(chan string)}
	go func() {
		defer close(c.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			c.lines <- scanner.Text()
		}
	}()
	return c
}

// consolePlayer is a human seat of a headless match.
type consolePlayer struct {
	console *console
	name    string
}

// Kind returns KindLocal.
func (p *consolePlayer) Kind() connectplus.Kind {
	return connectplus.KindLocal
}

// ChooseMove prints the board and prompts until a usable move is typed.
func (p *consolePlayer) ChooseMove(ctx context.Context, turn connectplus.Turn) (connectplus.Move, error) {
	fmt.Fprintln(p.console.out)
	fmt.Fprintln(p.console.out, formatBoard(turn.Board))
	for {
		prompt := fmt.Sprintf("%s, column (1-%d)", p.name, turn.Board.Width())
		if turn.CanRemove {
			prompt += " or 'x <column> <row>' to remove"
		}
		fmt.Fprintf(p.console.out, "%s: ", prompt)

		var line string
		select {
		case <-ctx.Done():
			return connectplus.Move{}, ctx.Err()
		case l, ok := <-p.console.lines:
			if !ok {
				return connectplus.Move{}, io.EOF
			}
			line = l
		}

		move, err := parseMove(line, turn.Board.Height())
		if err != nil {
			fmt.Fprintln(p.console.out, err)
			continue
		}
		if move.Kind == connectplus.MovePlacement && !turn.IsLegalColumn(move.Column) {
			fmt.Fprintf(p.console.out, "column %d is not playable\n", move.Column+1)
			continue
		}
		if move.Kind == connectplus.MoveRemoval && !turn.CanRemove {
			fmt.Fprintln(p.console.out, "no power-up available")
			continue
		}
		return move, nil
	}
}

// parseMove reads "3" as a drop into the third column and "x 3 2" as the
// removal of the token in the third column, second row from the bottom.
func parseMove(line string, height int) (connectplus.Move, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 1:
		column, err := strconv.Atoi(fields[0])
		if err != nil || column < 1 {
			return connectplus.Move{}, fmt.Errorf("not a column: %q", fields[0])
		}
		return connectplus.Placement(column - 1), nil
	case len(fields) == 3 && strings.EqualFold(fields[0], "x"):
		column, errC := strconv.Atoi(fields[1])
		row, errR := strconv.Atoi(fields[2])
		if errC != nil || errR != nil || column < 1 || row < 1 || row > height {
			return connectplus.Move{}, fmt.Errorf("not a cell: %q", line)
		}
		return connectplus.Removal(core.C(column-1, height-row)), nil
	default:
		return connectplus.Move{}, fmt.Errorf("cannot read move %q", line)
	}
}

// formatBoard prints the board with column numbers underneath.
func formatBoard(b *connectplus.Board) string {
	var sb strings.Builder
	sb.WriteString(b.String())
	sb.WriteRune('\n')
	for x := range b.Width() {
		sb.WriteString(strconv.Itoa((x + 1) % 10))
	}
	return sb.String()
}
