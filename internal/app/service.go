package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/gamey/internal/bot"
	"github.com/jaminalder/gamey/internal/domain"
	"github.com/rs/zerolog/log"
)

// Errors exposed by the service layer.
var (
	ErrNotFound     = errors.New("game not found")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrNotAPlayer   = errors.New("not a player")
	ErrUnknownBot   = errors.New("unknown bot")
	ErrGameFinished = errors.New("game finished")
	ErrInvalidSide  = errors.New("invalid side")
)

// GameState is the in-memory state tracked per game. Copies handed out by
// the service own their Game.
type GameState struct {
	ID        string
	Game      *domain.Game
	Human     string
	HumanSide domain.Cell
	BotID     string
	Created   time.Time
	Updated   time.Time
}

func (gs *GameState) clone() GameState {
	cp := *gs
	cp.Game = gs.Game.Clone()
	return cp
}

// Options configure a new game. Zero values pick the service defaults.
type Options struct {
	Size      int
	BotID     string
	HumanSide domain.Cell
}

// Limits bound the board sizes a client may request.
type Limits struct {
	DefaultSize int
	MaxSize     int
}

const subscriberBuffer = 8

type subscriber struct {
	ch        chan GameState
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games played against bots and their subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	bots   *bot.Registry
	limits Limits
}

func NewService(bots *bot.Registry, limits Limits) *Service {
	return &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		bots:   bots,
		limits: limits,
	}
}

// Bots lists the registered bot names.
func (s *Service) Bots() []string { return s.bots.Names() }

func (s *Service) Limits() Limits { return s.limits }

// CreateGame registers a new game. When the human plays Red the bot opens.
func (s *Service) CreateGame(ctx context.Context, opts Options) (*GameState, error) {
	if opts.Size == 0 {
		opts.Size = s.limits.DefaultSize
	}
	if opts.Size > s.limits.MaxSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", domain.ErrInvalidSize, opts.Size, s.limits.MaxSize)
	}
	if opts.HumanSide == domain.Empty {
		opts.HumanSide = domain.Blue
	}
	if opts.HumanSide != domain.Blue && opts.HumanSide != domain.Red {
		return nil, ErrInvalidSide
	}
	b, err := s.resolveBot(opts.BotID)
	if err != nil {
		return nil, err
	}
	g, err := domain.New(opts.Size)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	gs := &GameState{
		ID:        uuid.NewString(),
		Game:      g,
		HumanSide: opts.HumanSide,
		BotID:     b.Name(),
		Created:   now,
		Updated:   now,
	}
	if gs.HumanSide == domain.Red {
		c, ok := b.ChooseMove(ctx, g.Clone())
		if ok {
			if err := g.Play(c); err != nil {
				return nil, fmt.Errorf("opening move %v: %w", c, err)
			}
		}
	}

	s.mu.Lock()
	s.games[gs.ID] = gs
	cp := gs.clone()
	s.mu.Unlock()

	log.Info().Str("game", gs.ID).Int("size", opts.Size).Str("bot", gs.BotID).
		Stringer("human", gs.HumanSide).Msg("game-created")
	return &cp, nil
}

func (s *Service) resolveBot(id string) (bot.Bot, error) {
	if id == "" {
		if b := s.bots.Default(); b != nil {
			return b, nil
		}
		return nil, ErrUnknownBot
	}
	b, ok := s.bots.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBot, id)
	}
	return b, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := gs.clone()
	return &cp, true
}

// Join claims the human seat if it is free; returns Empty for spectators.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	side := domain.Empty
	if gs.Human == "" || gs.Human == playerID {
		gs.Human = playerID
		side = gs.HumanSide
		gs.Updated = time.Now()
	}
	cp := gs.clone()
	return side, &cp, nil
}

// Play applies the human move and then the bot reply. The bot searches a
// cloned game outside the lock; its reply is dropped if the game moved on.
func (s *Service) Play(ctx context.Context, id, playerID string, c domain.Coordinates) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Human != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	if gs.Game.Over {
		s.mu.Unlock()
		return nil, domain.ErrGameOver
	}
	if gs.HumanSide != gs.Game.Turn {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	if err := gs.Game.Play(c); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	gs.Updated = time.Now()
	cp := gs.clone()
	s.broadcastLocked(id, cp)
	b, _ := s.bots.Find(gs.BotID)
	s.mu.Unlock()

	if cp.Game.Over || b == nil {
		return &cp, nil
	}

	start := time.Now()
	reply, ok := b.ChooseMove(ctx, cp.Game.Clone())
	if !ok {
		return &cp, nil
	}

	s.mu.Lock()
	if gs.Game.Moves != cp.Game.Moves {
		s.mu.Unlock()
		log.Warn().Str("game", id).Msg("bot reply discarded, game changed")
		return &cp, nil
	}
	if err := gs.Game.Play(reply); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("bot %s move %v: %w", gs.BotID, reply, err)
	}
	gs.Updated = time.Now()
	cp = gs.clone()
	s.broadcastLocked(id, cp)
	s.mu.Unlock()

	log.Debug().Str("game", id).Str("bot", cp.BotID).Stringer("move", reply).
		Dur("elapsed", time.Since(start)).Msg("bot-replied")
	return &cp, nil
}

// Choose asks a bot for a move in the position y without storing a game.
func (s *Service) Choose(ctx context.Context, botID string, y domain.YEN) (domain.Coordinates, error) {
	b, ok := s.bots.Find(botID)
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("%w: %s", ErrUnknownBot, botID)
	}
	if y.Size > s.limits.MaxSize {
		return domain.Coordinates{}, fmt.Errorf("%w: size %d exceeds %d", domain.ErrInvalidYEN, y.Size, s.limits.MaxSize)
	}
	g, err := domain.FromYEN(y)
	if err != nil {
		return domain.Coordinates{}, err
	}
	c, ok := b.ChooseMove(ctx, g)
	if !ok {
		return domain.Coordinates{}, ErrGameFinished
	}
	return c, nil
}

// broadcastLocked fans out without blocking; slow subscribers are closed
// and dropped.
func (s *Service) broadcastLocked(id string, gs GameState) {
	for sub := range s.subs[id] {
		select {
		case sub.ch <- gs:
		default:
			sub.close()
			delete(s.subs[id], sub)
		}
	}
}

// Subscribe registers a subscriber for a game. The channel is closed when
// ctx ends, when unsubscribe is called, or when the subscriber falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, subscriberBuffer)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			delete(s.subs[id], sub)
			sub.close()
			s.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
