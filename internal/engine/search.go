package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const inf = 1 << 30

// SearchConfig bounds the iterative deepening loop.
type SearchConfig struct {
	MinDepth int
	MaxDepth int
	// WinMargin is how close to WinScore a root score must be to count as a
	// forced win and end deepening.
	WinMargin int
}

// DefaultSearchConfig deepens from 5 to 100 plies and stops within 100
// points of a forced win.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{MinDepth: 5, MaxDepth: 100, WinMargin: 100}
}

// Result describes the outcome of one Search call. Depth is the last fully
// completed iteration, 0 when none finished.
type Result struct {
	Cell    int
	Score   int
	Depth   int
	Nodes   uint64
	Elapsed time.Duration
}

// Searcher runs alpha-beta over a BoardState it owns for the duration of a
// single decision.
type Searcher struct {
	state   *BoardState
	cfg     SearchConfig
	nodes   uint64
	root    []int
	buffers [][]int
}

// NewSearcher returns a searcher that makes and undoes moves on state.
func NewSearcher(state *BoardState, cfg SearchConfig) *Searcher {
	return &Searcher{state: state, cfg: cfg}
}

// Search deepens from MinDepth until the budget is spent, the context is
// cancelled, a forced win is found or the tree is exhausted. The clock is
// only read between iterations, so an iteration that has started always
// completes.
func (s *Searcher) Search(ctx context.Context, budget time.Duration) Result {
	moves := s.state.AvailableMoves()
	if len(moves) == 0 {
		panic("engine: search started with no available moves")
	}
	start := time.Now()
	res := Result{Cell: moves[0]}
	pv := -1

	for depth := s.cfg.MinDepth; depth <= s.cfg.MaxDepth; depth++ {
		if time.Since(start) >= budget || ctx.Err() != nil {
			break
		}
		cell, score := s.searchRoot(moves, depth, pv)
		res.Cell, res.Score, res.Depth = cell, score, depth
		pv = cell

		log.Debug().
			Int("depth", depth).
			Int("cell", cell).
			Int("score", score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", time.Since(start)).
			Msg("search-iteration")

		if score >= WinScore-s.cfg.WinMargin {
			break
		}
		if depth >= len(moves) {
			// every line already runs to a full board
			break
		}
	}
	res.Nodes = s.nodes
	res.Elapsed = time.Since(start)
	return res
}

// searchRoot runs one full-window iteration with pv, when set, tried first.
func (s *Searcher) searchRoot(moves []int, depth, pv int) (int, int) {
	s.root = s.root[:0]
	if pv >= 0 {
		s.root = append(s.root, pv)
	}
	for _, cell := range moves {
		if cell != pv {
			s.root = append(s.root, cell)
		}
	}

	best, bestScore := s.root[0], -inf
	alpha, beta := -inf, inf
	for _, cell := range s.root {
		score := s.state.withMove(cell, Self, func() int {
			return s.minimax(depth-1, alpha, beta, false, 1)
		})
		if score > bestScore {
			best, bestScore = cell, score
		}
		alpha = max(alpha, score)
	}
	return best, bestScore
}

func (s *Searcher) minimax(depth, alpha, beta int, maximizing bool, ply int) int {
	s.nodes++
	if depth == 0 {
		return Evaluate(s.state)
	}
	moves := s.movesAt(ply)
	if len(moves) == 0 {
		return Evaluate(s.state)
	}

	if maximizing {
		best := -inf
		for _, cell := range moves {
			score := s.state.withMove(cell, Self, func() int {
				return s.minimax(depth-1, alpha, beta, false, ply+1)
			})
			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	worst := inf
	for _, cell := range moves {
		score := s.state.withMove(cell, Opponent, func() int {
			return s.minimax(depth-1, alpha, beta, true, ply+1)
		})
		worst = min(worst, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return worst
}

// movesAt fills the per-ply move buffer so recursion does not allocate once
// the buffers have grown.
func (s *Searcher) movesAt(ply int) []int {
	for len(s.buffers) <= ply {
		s.buffers = append(s.buffers, nil)
	}
	s.buffers[ply] = s.state.AppendAvailable(s.buffers[ply][:0])
	return s.buffers[ply]
}
