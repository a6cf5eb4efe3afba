package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	Blue
	Red
)

func (c Cell) String() string {
	switch c {
	case Blue:
		return "B"
	case Red:
		return "R"
	default:
		return "."
	}
}

// Other returns the opposing player. Empty maps to Empty.
func (c Cell) Other() Cell {
	switch c {
	case Blue:
		return Red
	case Red:
		return Blue
	}
	return Empty
}

// Side bits used for connectivity checks.
const (
	sideA uint8 = 1 << iota
	sideB
	sideC

	allSides = sideA | sideB | sideC
)

const MinSize = 1

// Game holds the current state of a Game of Y match. Board is stored in the
// square-packed index space of Coordinates.Index; padding cells stay Empty.
type Game struct {
	Board  []Cell
	Turn   Cell
	Winner Cell
	Over   bool
	Moves  int

	size int
}

// Errors returned by domain operations.
var (
	ErrInvalidSize = errors.New("invalid board size")
	ErrOutOfBounds = errors.New("out of bounds")
	ErrOccupied    = errors.New("cell occupied")
	ErrGameOver    = errors.New("game over")
)

// New returns an empty game of the given size with Blue to move.
func New(size int) (*Game, error) {
	if size < MinSize {
		return nil, ErrInvalidSize
	}
	return &Game{
		Board: make([]Cell, size*size),
		Turn:  Blue,
		size:  size,
	}, nil
}

// Clone returns a deep copy that shares nothing with g.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Board = append([]Cell(nil), g.Board...)
	return &cp
}

// Play places a stone for the current turn at c.
func (g *Game) Play(c Coordinates) error {
	if g.Over {
		return ErrGameOver
	}
	if !c.Valid(g.size) {
		return ErrOutOfBounds
	}
	idx := c.Index(g.size)
	if g.Board[idx] != Empty {
		return ErrOccupied
	}

	g.Board[idx] = g.Turn
	g.Moves++

	if g.connectsAllSides(idx) {
		g.Winner = g.Turn
		g.Over = true
		return nil
	}
	if g.Moves == g.ValidCells() {
		g.Winner = Empty
		g.Over = true
		return nil
	}
	g.Turn = g.Turn.Other()
	return nil
}

// connectsAllSides floods from start over stones of the same owner.
func (g *Game) connectsAllSides(start int) bool {
	owner := g.Board[start]
	seen := map[int]bool{start: true}
	queue := []int{start}
	var mask uint8
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		mask |= g.sides(cur)
		if mask == allSides {
			return true
		}
		for _, n := range g.NeighborsOf(cur) {
			if !seen[n] && g.Board[n] == owner {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

// winnerOf scans the whole board; used when a game is rebuilt from notation.
func (g *Game) winnerOf(player Cell) bool {
	for idx, c := range g.Board {
		if c == player && g.IsValid(idx) && g.sides(idx) != 0 && g.connectsAllSides(idx) {
			return true
		}
	}
	return false
}

func (g *Game) sides(idx int) uint8 {
	var m uint8
	if g.OnSideA(idx) {
		m |= sideA
	}
	if g.OnSideB(idx) {
		m |= sideB
	}
	if g.OnSideC(idx) {
		m |= sideC
	}
	return m
}

// Size is the number of cells along one side of the board.
func (g *Game) Size() int { return g.size }

// IndexSpace is the length of the packed index space, padding included.
func (g *Game) IndexSpace() int { return g.size * g.size }

// ValidCells is the number of on-board cells.
func (g *Game) ValidCells() int { return g.size * (g.size + 1) / 2 }

func (g *Game) IsValid(idx int) bool { return ValidIndex(idx, g.size) }

func (g *Game) CoordsOf(idx int) Coordinates { return FromIndex(idx, g.size) }

func (g *Game) IndexOf(c Coordinates) int { return c.Index(g.size) }

// NeighborsOf returns the indices of the on-board neighbors of idx.
func (g *Game) NeighborsOf(idx int) []int {
	ns := FromIndex(idx, g.size).Neighbors(g.size)
	out := make([]int, len(ns))
	for i, n := range ns {
		out[i] = n.Index(g.size)
	}
	return out
}

func (g *Game) OnSideA(idx int) bool { return FromIndex(idx, g.size).TouchesSideA() }
func (g *Game) OnSideB(idx int) bool { return FromIndex(idx, g.size).TouchesSideB() }
func (g *Game) OnSideC(idx int) bool { return FromIndex(idx, g.size).TouchesSideC() }

// At returns the occupant of c, or Empty when c is off the board.
func (g *Game) At(c Coordinates) Cell {
	if !c.Valid(g.size) {
		return Empty
	}
	return g.Board[c.Index(g.size)]
}

// Occupied maps every stone on the board to its owner.
func (g *Game) Occupied() map[Coordinates]Cell {
	out := make(map[Coordinates]Cell, g.Moves)
	for idx, c := range g.Board {
		if c != Empty && g.IsValid(idx) {
			out[FromIndex(idx, g.size)] = c
		}
	}
	return out
}

// AvailableCells lists the empty on-board indices in ascending order.
func (g *Game) AvailableCells() []int {
	if g.Over {
		return nil
	}
	out := make([]int, 0, g.ValidCells()-g.Moves)
	for idx, c := range g.Board {
		if c == Empty && g.IsValid(idx) {
			out = append(out, idx)
		}
	}
	return out
}

// NextPlayer returns the player to move, or false once the game is over.
func (g *Game) NextPlayer() (Cell, bool) {
	if g.Over {
		return Empty, false
	}
	return g.Turn, true
}
