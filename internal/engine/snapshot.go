package engine

import "github.com/jaminalder/gamey/internal/domain"

// Snapshot is the read-only view of a live game that the engine searches
// from. *domain.Game satisfies it.
type Snapshot interface {
	Size() int
	IndexSpace() int
	IsValid(idx int) bool
	CoordsOf(idx int) domain.Coordinates
	IndexOf(c domain.Coordinates) int
	NeighborsOf(idx int) []int
	OnSideA(idx int) bool
	OnSideB(idx int) bool
	OnSideC(idx int) bool
	Occupied() map[domain.Coordinates]domain.Cell
	AvailableCells() []int
	NextPlayer() (domain.Cell, bool)
}

var _ Snapshot = (*domain.Game)(nil)
