package domain

import (
	"errors"
	"fmt"
	"strings"
)

// YEN is the JSON position notation exchanged with clients and bots.
// Layout lists rows from the top corner down, separated by '/'; row r holds
// r+1 cells and '.' marks an empty cell.
type YEN struct {
	Size    int      `json:"size"`
	Turn    int      `json:"turn"`
	Players []string `json:"players"`
	Layout  string   `json:"layout"`
}

var ErrInvalidYEN = errors.New("invalid YEN")

var defaultPlayers = []string{Blue.String(), Red.String()}

// rowCoords maps a layout position to board coordinates.
func rowCoords(size, row, col int) Coordinates {
	return Coordinates{X: size - 1 - row, Y: col, Z: row - col}
}

// YEN encodes g. Turn is 0 when Blue is to move and 1 for Red.
func (g *Game) YEN() YEN {
	var b strings.Builder
	for row := 0; row < g.size; row++ {
		if row > 0 {
			b.WriteByte('/')
		}
		for col := 0; col <= row; col++ {
			b.WriteString(g.At(rowCoords(g.size, row, col)).String())
		}
	}
	turn := 0
	if g.Turn == Red {
		turn = 1
	}
	return YEN{
		Size:    g.size,
		Turn:    turn,
		Players: append([]string(nil), defaultPlayers...),
		Layout:  b.String(),
	}
}

// FromYEN rebuilds a game from notation, declaring a winner when one side
// already connects all three sides.
func FromYEN(y YEN) (*Game, error) {
	players := y.Players
	if len(players) == 0 {
		players = defaultPlayers
	}
	if len(players) != 2 || len(players[0]) != 1 || len(players[1]) != 1 || players[0] == players[1] || players[0] == "." || players[1] == "." {
		return nil, fmt.Errorf("%w: players %v", ErrInvalidYEN, y.Players)
	}
	if y.Turn != 0 && y.Turn != 1 {
		return nil, fmt.Errorf("%w: turn %d", ErrInvalidYEN, y.Turn)
	}
	if y.Size < MinSize {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYEN, ErrInvalidSize)
	}
	// the layout shape bounds the size before anything is allocated
	rows := strings.Split(y.Layout, "/")
	if len(rows) != y.Size {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidYEN, y.Size, len(rows))
	}
	for row, line := range rows {
		if len(line) != row+1 {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrInvalidYEN, row, len(line))
		}
	}
	g, err := New(y.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidYEN, err)
	}
	for row, line := range rows {
		for col := 0; col <= row; col++ {
			var cell Cell
			switch sym := line[col : col+1]; sym {
			case ".":
				continue
			case players[0]:
				cell = Blue
			case players[1]:
				cell = Red
			default:
				return nil, fmt.Errorf("%w: unknown symbol %q", ErrInvalidYEN, sym)
			}
			g.Board[rowCoords(y.Size, row, col).Index(y.Size)] = cell
			g.Moves++
		}
	}

	g.Turn = Blue
	if y.Turn == 1 {
		g.Turn = Red
	}
	switch {
	case g.winnerOf(Blue):
		g.Winner, g.Over = Blue, true
	case g.winnerOf(Red):
		g.Winner, g.Over = Red, true
	case g.Moves == g.ValidCells():
		g.Over = true
	}
	return g, nil
}
