package engine

import (
	"fmt"
	"math/bits"

	"github.com/jaminalder/gamey/internal/domain"
)

// Token is a cell occupant as seen by the searching player.
type Token uint8

// Token values. The searching player is always Self.
const (
	Empty Token = iota
	Self
	Opponent
)

// Edge bits, one per board side.
const (
	edgeA uint8 = 1 << iota
	edgeB
	edgeC

	allEdges = edgeA | edgeB | edgeC
)

// centerBase is the contribution of a stone on the exact centre; every unit
// of spread between the coordinate components costs one point.
const centerBase = 300

// BoardState is the search-local copy of a live board. It is mutated in
// place with MakeMove/UndoMove pairs and must not be shared.
type BoardState struct {
	cells     []Token
	available []uint64
	valid     []int
	neighbors [][]int
	edges     []uint8
	center    []int

	// scratch for the win detector
	visited  []bool
	stack    []int
	lastFill int
}

// NewBoardState mirrors snap with perspective as token Self.
func NewBoardState(snap Snapshot, perspective domain.Cell) *BoardState {
	n := snap.IndexSpace()
	s := &BoardState{
		cells:     make([]Token, n),
		available: make([]uint64, (n+63)/64),
		neighbors: make([][]int, n),
		edges:     make([]uint8, n),
		center:    make([]int, n),
		visited:   make([]bool, n),
		stack:     make([]int, 0, n),
	}
	for idx := 0; idx < n; idx++ {
		if !snap.IsValid(idx) {
			continue
		}
		s.valid = append(s.valid, idx)
		for _, nb := range snap.NeighborsOf(idx) {
			if snap.IsValid(nb) {
				s.neighbors[idx] = append(s.neighbors[idx], nb)
			}
		}
		if snap.OnSideA(idx) {
			s.edges[idx] |= edgeA
		}
		if snap.OnSideB(idx) {
			s.edges[idx] |= edgeB
		}
		if snap.OnSideC(idx) {
			s.edges[idx] |= edgeC
		}
		c := snap.CoordsOf(idx)
		s.center[idx] = centerBase - (abs(c.X-c.Y) + abs(c.Y-c.Z) + abs(c.Z-c.X))
	}
	for c, owner := range snap.Occupied() {
		t := Opponent
		if owner == perspective {
			t = Self
		}
		s.cells[snap.IndexOf(c)] = t
	}
	for _, idx := range snap.AvailableCells() {
		s.available[idx>>6] |= 1 << (idx & 63)
	}
	return s
}

func (s *BoardState) isAvailable(cell int) bool {
	return s.available[cell>>6]&(1<<(cell&63)) != 0
}

// At returns the occupant of cell.
func (s *BoardState) At(cell int) Token { return s.cells[cell] }

// MakeMove places t on cell. The cell must be available.
func (s *BoardState) MakeMove(cell int, t Token) {
	if cell < 0 || cell >= len(s.cells) || !s.isAvailable(cell) {
		panic(fmt.Sprintf("engine: move on unavailable cell %d", cell))
	}
	s.cells[cell] = t
	s.available[cell>>6] &^= 1 << (cell & 63)
}

// UndoMove reverts the MakeMove on cell. Calls must nest in LIFO order.
func (s *BoardState) UndoMove(cell int) {
	s.cells[cell] = Empty
	s.available[cell>>6] |= 1 << (cell & 63)
}

// withMove runs fn with t placed on cell and always takes the stone back,
// whatever way fn returns.
func (s *BoardState) withMove(cell int, t Token, fn func() int) int {
	s.MakeMove(cell, t)
	defer s.UndoMove(cell)
	return fn()
}

// AppendAvailable appends the available cells in ascending index order.
func (s *BoardState) AppendAvailable(dst []int) []int {
	for w, word := range s.available {
		for word != 0 {
			dst = append(dst, w<<6+bits.TrailingZeros64(word))
			word &= word - 1
		}
	}
	return dst
}

// AvailableMoves returns a fresh slice of the available cells.
func (s *BoardState) AvailableMoves() []int {
	return s.AppendAvailable(nil)
}

// OccupiedCells lists the valid non-empty cells in index order.
func (s *BoardState) OccupiedCells() []int {
	var out []int
	for _, idx := range s.valid {
		if s.cells[idx] != Empty {
			out = append(out, idx)
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
