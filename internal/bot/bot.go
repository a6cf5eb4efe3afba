package bot

import (
	"context"
	"errors"
	"sort"

	"github.com/jaminalder/gamey/internal/domain"
	"github.com/jaminalder/gamey/internal/engine"
	"lukechampine.com/frand"
)

// Bot chooses a move for whichever player is to move in snap. It returns
// false when the game is already over.
type Bot interface {
	Name() string
	ChooseMove(ctx context.Context, snap engine.Snapshot) (domain.Coordinates, bool)
}

var _ Bot = (*engine.MinimaxBot)(nil)

const RandomBotName = "random_bot"

// RandomBot plays a uniformly random legal cell.
type RandomBot struct{}

func (RandomBot) Name() string { return RandomBotName }

func (RandomBot) ChooseMove(_ context.Context, snap engine.Snapshot) (domain.Coordinates, bool) {
	if _, ok := snap.NextPlayer(); !ok {
		return domain.Coordinates{}, false
	}
	cells := snap.AvailableCells()
	if len(cells) == 0 {
		return domain.Coordinates{}, false
	}
	return snap.CoordsOf(cells[frand.Intn(len(cells))]), true
}

var ErrDuplicateBot = errors.New("duplicate bot name")

// Registry resolves bots by name. The first registered bot is the default.
type Registry struct {
	bots  map[string]Bot
	order []string
}

func NewRegistry(bots ...Bot) (*Registry, error) {
	r := &Registry{bots: make(map[string]Bot, len(bots))}
	for _, b := range bots {
		if _, dup := r.bots[b.Name()]; dup {
			return nil, ErrDuplicateBot
		}
		r.bots[b.Name()] = b
		r.order = append(r.order, b.Name())
	}
	return r, nil
}

// Find returns the bot registered under name.
func (r *Registry) Find(name string) (Bot, bool) {
	b, ok := r.bots[name]
	return b, ok
}

// Default returns the first registered bot, or nil for an empty registry.
func (r *Registry) Default() Bot {
	if len(r.order) == 0 {
		return nil
	}
	return r.bots[r.order[0]]
}

// Names lists the registered bot names in sorted order.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}
