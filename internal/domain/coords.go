package domain

import "fmt"

// Coordinates locate a cell on a triangular board of a given size.
// A valid triple satisfies X+Y+Z == size-1 with every component >= 0.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Valid reports whether c lies on a board of the given size.
func (c Coordinates) Valid(size int) bool {
	if c.X < 0 || c.Y < 0 || c.Z < 0 {
		return false
	}
	return c.X+c.Y+c.Z == size-1
}

// Index packs c into the size*size index space.
func (c Coordinates) Index(size int) int {
	return c.X*size + c.Y
}

// FromIndex is the inverse of Index. The result is only meaningful when
// ValidIndex(idx, size) holds.
func FromIndex(idx, size int) Coordinates {
	x := idx / size
	y := idx % size
	return Coordinates{X: x, Y: y, Z: size - 1 - x - y}
}

// ValidIndex reports whether idx maps to an on-board cell.
func ValidIndex(idx, size int) bool {
	if idx < 0 || idx >= size*size {
		return false
	}
	return idx/size+idx%size <= size-1
}

// neighborDeltas are the six moves on the triangular grid; each keeps the
// component sum constant.
var neighborDeltas = [6][3]int{
	{-1, 1, 0}, {-1, 0, 1},
	{1, -1, 0}, {0, -1, 1},
	{1, 0, -1}, {0, 1, -1},
}

// Neighbors returns the on-board neighbors of c.
func (c Coordinates) Neighbors(size int) []Coordinates {
	out := make([]Coordinates, 0, len(neighborDeltas))
	for _, d := range neighborDeltas {
		n := Coordinates{X: c.X + d[0], Y: c.Y + d[1], Z: c.Z + d[2]}
		if n.Valid(size) {
			out = append(out, n)
		}
	}
	return out
}

// Side membership. A cell on a corner touches two sides.
func (c Coordinates) TouchesSideA() bool { return c.X == 0 }
func (c Coordinates) TouchesSideB() bool { return c.Y == 0 }
func (c Coordinates) TouchesSideC() bool { return c.Z == 0 }
