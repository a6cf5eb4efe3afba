package app

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jaminalder/gamey/internal/bot"
	"github.com/jaminalder/gamey/internal/domain"
	"github.com/jaminalder/gamey/internal/engine"
)

// firstCellBot always answers with the lowest free cell.
type firstCellBot struct{}

func (firstCellBot) Name() string { return "first" }

func (firstCellBot) ChooseMove(_ context.Context, snap engine.Snapshot) (domain.Coordinates, bool) {
	cells := snap.AvailableCells()
	if len(cells) == 0 {
		return domain.Coordinates{}, false
	}
	return snap.CoordsOf(cells[0]), true
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	reg, err := bot.NewRegistry(firstCellBot{}, bot.RandomBot{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewService(reg, Limits{DefaultSize: 4, MaxSize: 9})
}

func TestCreateAndGet(t *testing.T) {
	s := newTestService(t)
	gs, err := s.CreateGame(context.Background(), Options{})
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if gs.ID == "" {
		t.Fatalf("expected non-empty game ID")
	}
	if gs.Game.Size() != 4 || gs.BotID != "first" || gs.HumanSide != domain.Blue {
		t.Fatalf("defaults not applied: size=%d bot=%q side=%v", gs.Game.Size(), gs.BotID, gs.HumanSide)
	}
	if gs.Game.Turn != domain.Blue || gs.Game.Moves != 0 {
		t.Fatalf("expected an empty board with Blue to move")
	}
	if gs.Created.IsZero() || gs.Updated.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	got, ok := s.Get(gs.ID)
	if !ok || got.ID != gs.ID {
		t.Fatalf("Get should find created game")
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("Get should miss unknown ids")
	}
}

func TestCreateRejectsBadOptions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.CreateGame(ctx, Options{Size: 10}); !errors.Is(err, domain.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := s.CreateGame(ctx, Options{Size: -1}); !errors.Is(err, domain.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize for negative size, got %v", err)
	}
	if _, err := s.CreateGame(ctx, Options{BotID: "nope"}); !errors.Is(err, ErrUnknownBot) {
		t.Fatalf("expected ErrUnknownBot, got %v", err)
	}
	if _, err := s.CreateGame(ctx, Options{HumanSide: domain.Cell(7)}); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide, got %v", err)
	}
}

func TestBotOpensWhenHumanIsRed(t *testing.T) {
	s := newTestService(t)
	gs, err := s.CreateGame(context.Background(), Options{HumanSide: domain.Red})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if gs.Game.Moves != 1 || gs.Game.Turn != domain.Red {
		t.Fatalf("bot should have opened: moves=%d turn=%v", gs.Game.Moves, gs.Game.Turn)
	}
	if gs.Game.At(domain.Coordinates{X: 0, Y: 0, Z: 3}) != domain.Blue {
		t.Fatalf("opening stone not at the first free cell")
	}
}

func TestJoinSeatsAndRejoin(t *testing.T) {
	s := newTestService(t)
	gs, _ := s.CreateGame(context.Background(), Options{})

	side, _, err := s.Join(gs.ID, "p1")
	if err != nil || side != domain.Blue {
		t.Fatalf("p1 should claim Blue, got %v, err=%v", side, err)
	}
	side, _, err = s.Join(gs.ID, "p1")
	if err != nil || side != domain.Blue {
		t.Fatalf("p1 rejoin should keep Blue, got %v, err=%v", side, err)
	}
	side, _, err = s.Join(gs.ID, "p2")
	if err != nil || side != domain.Empty {
		t.Fatalf("p2 should spectate (Empty), got %v, err=%v", side, err)
	}
	if _, _, err := s.Join("missing", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayAppliesHumanMoveAndBotReply(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	gs, _ := s.CreateGame(ctx, Options{})
	s.Join(gs.ID, "p1")
	s.Join(gs.ID, "p2")

	if _, err := s.Play(ctx, gs.ID, "p2", domain.Coordinates{X: 3, Y: 0, Z: 0}); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("expected ErrNotAPlayer, got %v", err)
	}
	move := domain.Coordinates{X: 1, Y: 1, Z: 1}
	st, err := s.Play(ctx, gs.ID, "p1", move)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if st.Game.Moves != 2 || st.Game.Turn != domain.Blue {
		t.Fatalf("expected human move and bot reply: moves=%d turn=%v", st.Game.Moves, st.Game.Turn)
	}
	if st.Game.At(move) != domain.Blue || st.Game.At(domain.Coordinates{X: 0, Y: 0, Z: 3}) != domain.Red {
		t.Fatalf("unexpected stones after exchange")
	}
	if _, err := s.Play(ctx, gs.ID, "p1", move); !errors.Is(err, domain.ErrOccupied) {
		t.Fatalf("expected ErrOccupied, got %v", err)
	}
	if _, err := s.Play(ctx, gs.ID, "p1", domain.Coordinates{X: 9, Y: 0, Z: 0}); !errors.Is(err, domain.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := s.Play(ctx, "missing", "p1", move); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayRejectsWhenBotToMove(t *testing.T) {
	s := newTestService(t)
	gs, _ := s.CreateGame(context.Background(), Options{HumanSide: domain.Red})
	s.Join(gs.ID, "p1")
	s.mu.Lock()
	s.games[gs.ID].Game.Turn = domain.Blue
	s.mu.Unlock()
	if _, err := s.Play(context.Background(), gs.ID, "p1", domain.Coordinates{X: 3, Y: 0, Z: 0}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
}

func TestPlayUntilFinished(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	gs, _ := s.CreateGame(ctx, Options{Size: 3})
	s.Join(gs.ID, "p1")
	for {
		cur, _ := s.Get(gs.ID)
		if cur.Game.Over {
			break
		}
		cells := cur.Game.AvailableCells()
		if _, err := s.Play(ctx, gs.ID, "p1", cur.Game.CoordsOf(cells[len(cells)-1])); err != nil {
			t.Fatalf("play: %v", err)
		}
	}
	if _, err := s.Play(ctx, gs.ID, "p1", domain.Coordinates{}); !errors.Is(err, domain.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := newTestService(t)
	gs, _ := s.CreateGame(context.Background(), Options{})
	if err := gs.Game.Play(domain.Coordinates{X: 3, Y: 0, Z: 0}); err != nil {
		t.Fatalf("play on copy: %v", err)
	}
	latest, _ := s.Get(gs.ID)
	if latest.Game.Moves != 0 {
		t.Fatalf("mutating a copy leaked into the service")
	}
}

func TestChoose(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c, err := s.Choose(ctx, "first", domain.YEN{Size: 2, Turn: 1, Players: []string{"B", "R"}, Layout: "B/.."})
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if c != (domain.Coordinates{X: 0, Y: 0, Z: 1}) {
		t.Fatalf("unexpected move %v", c)
	}
	if _, err := s.Choose(ctx, "nope", domain.YEN{Size: 1, Players: []string{"B", "R"}, Layout: "."}); !errors.Is(err, ErrUnknownBot) {
		t.Fatalf("expected ErrUnknownBot, got %v", err)
	}
	if _, err := s.Choose(ctx, "first", domain.YEN{Size: 2, Players: []string{"B", "R"}, Layout: "B"}); !errors.Is(err, domain.ErrInvalidYEN) {
		t.Fatalf("expected ErrInvalidYEN, got %v", err)
	}
	if _, err := s.Choose(ctx, "first", domain.YEN{Size: 2, Turn: 1, Players: []string{"B", "R"}, Layout: "B/BR"}); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
}

func emptyLayout(size int) string {
	rows := make([]string, size)
	for i := range rows {
		rows[i] = strings.Repeat(".", i+1)
	}
	return strings.Join(rows, "/")
}

func TestChooseRejectsBoardsOverTheLimit(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, err := s.Choose(ctx, "first", domain.YEN{Size: 9, Layout: emptyLayout(9)}); err != nil {
		t.Fatalf("largest allowed board rejected: %v", err)
	}
	for _, y := range []domain.YEN{
		{Size: 10, Layout: emptyLayout(10)},
		{Size: math.MaxInt, Layout: ""},
	} {
		if _, err := s.Choose(ctx, "first", y); !errors.Is(err, domain.ErrInvalidYEN) {
			t.Fatalf("size %d: expected ErrInvalidYEN, got %v", y.Size, err)
		}
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s := newTestService(t)
	gs, _ := s.CreateGame(context.Background(), Options{})
	s.Join(gs.ID, "p1")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	ch, unsub, err := s.Subscribe(ctx, gs.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsub()

	if _, err := s.Play(ctx, gs.ID, "p1", domain.Coordinates{X: 1, Y: 1, Z: 1}); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	for want := 1; want <= 2; want++ {
		select {
		case st, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed unexpectedly")
			}
			if st.Game.Moves != want {
				t.Fatalf("update %d carried moves=%d", want, st.Game.Moves)
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for broadcast %d", want)
		}
	}
}

func TestSubscribeUnknownGame(t *testing.T) {
	s := newTestService(t)
	if _, _, err := s.Subscribe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	gs, _ := s.CreateGame(ctx, Options{Size: 7})
	s.Join(gs.ID, "p1")

	// never read
	slowCh, _, _ := s.Subscribe(ctx, gs.ID)

	// each play publishes the human move and the bot reply
	for i := 0; i <= subscriberBuffer/2; i++ {
		cur, _ := s.Get(gs.ID)
		cells := cur.Game.AvailableCells()
		if _, err := s.Play(ctx, gs.ID, "p1", cur.Game.CoordsOf(cells[len(cells)-1])); err != nil {
			t.Fatalf("play %d: %v", i, err)
		}
	}

	drained := 0
	for range slowCh {
		drained++
	}
	if drained != subscriberBuffer {
		t.Fatalf("slow subscriber kept %d updates, want %d before being dropped", drained, subscriberBuffer)
	}
	s.mu.Lock()
	left := len(s.subs[gs.ID])
	s.mu.Unlock()
	if left != 0 {
		t.Fatalf("slow subscriber still registered")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := newTestService(t)
	gs, _ := s.CreateGame(context.Background(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	ch, _, _ := s.Subscribe(ctx, gs.ID)
	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}
