package engine

import (
	"context"
	"time"

	"github.com/jaminalder/gamey/internal/domain"
	"github.com/rs/zerolog/log"
)

const MinimaxBotName = "minimax_bot"

// MinimaxBot picks moves with a time-boxed iterative deepening search.
type MinimaxBot struct {
	budget time.Duration
	cfg    SearchConfig
}

// NewMinimaxBot returns a bot that spends roughly budget per move. The
// last iteration may overrun the budget since the clock is only checked
// between depths.
func NewMinimaxBot(budget time.Duration, cfg SearchConfig) *MinimaxBot {
	return &MinimaxBot{budget: budget, cfg: cfg}
}

// Name identifies the bot in the registry and the HTTP API.
func (b *MinimaxBot) Name() string { return MinimaxBotName }

// Analyze searches snap for the player to move. It returns false when the
// game is already over.
func (b *MinimaxBot) Analyze(ctx context.Context, snap Snapshot) (Result, bool) {
	player, ok := snap.NextPlayer()
	if !ok || len(snap.AvailableCells()) == 0 {
		return Result{}, false
	}
	state := NewBoardState(snap, player)
	res := NewSearcher(state, b.cfg).Search(ctx, b.budget)
	log.Debug().
		Str("bot", b.Name()).
		Int("size", snap.Size()).
		Stringer("player", player).
		Int("depth", res.Depth).
		Int("score", res.Score).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Msg("move-chosen")
	return res, true
}

// ChooseMove returns the coordinates of the chosen cell, or false when the
// game is already over.
func (b *MinimaxBot) ChooseMove(ctx context.Context, snap Snapshot) (domain.Coordinates, bool) {
	res, ok := b.Analyze(ctx, snap)
	if !ok {
		return domain.Coordinates{}, false
	}
	return snap.CoordsOf(res.Cell), true
}
