package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/gamey/internal/app"
	"github.com/jaminalder/gamey/internal/domain"
)

type handlers struct {
	svc *app.Service
	tpl *templates
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, newBoardView(gs, errMsg))
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	limits := h.svc.Limits()
	data := struct {
		Bots                 []string
		DefaultSize, MaxSize int
	}{h.svc.Bots(), limits.DefaultSize, limits.MaxSize}
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.index, data))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	opts := app.Options{BotID: r.Form.Get("bot")}
	if v := r.Form.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < domain.MinSize {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		opts.Size = n
	}
	switch r.Form.Get("side") {
	case "", "B":
		opts.HumanSide = domain.Blue
	case "R":
		opts.HumanSide = domain.Red
	default:
		http.Error(w, "invalid side", http.StatusBadRequest)
		return
	}
	gs, err := h.svc.CreateGame(r.Context(), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(id, pid)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ID    string
		Board boardView
	}{ID: gs.ID, Board: newBoardView(*gs, "")}
	writeHTML(w, http.StatusOK, renderTemplate(h.tpl.game, data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(id, pid)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, ""))
}

func formCoords(r *http.Request) (domain.Coordinates, error) {
	var c domain.Coordinates
	for _, f := range []struct {
		key string
		dst *int
	}{{"x", &c.X}, {"y", &c.Y}, {"z", &c.Z}} {
		n, err := strconv.Atoi(r.Form.Get(f.key))
		if err != nil {
			return c, fmt.Errorf("%w: %s", domain.ErrOutOfBounds, f.key)
		}
		*f.dst = n
	}
	return c, nil
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_ = r.ParseForm()

	var gs *app.GameState
	c, err := formCoords(r)
	if err == nil {
		gs, err = h.svc.Play(r.Context(), id, pid, c)
	}
	var errMsg string
	if err != nil {
		if g, ok := h.svc.Get(id); ok {
			gs = g
		}
		switch {
		case errors.Is(err, app.ErrNotYourTurn):
			errMsg = "Not your turn"
		case errors.Is(err, app.ErrNotAPlayer):
			errMsg = "You are a spectator"
		case errors.Is(err, domain.ErrOccupied):
			errMsg = "Cell is occupied"
		case errors.Is(err, domain.ErrOutOfBounds):
			errMsg = "Out of bounds"
		case errors.Is(err, domain.ErrGameOver):
			errMsg = "Game is over"
		default:
			errMsg = "Invalid move"
		}
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusOK, h.renderBoard(*gs, errMsg))
}

var heartbeatInterval = 15 * time.Second

// writeSSE emits one event; every payload line gets its own data field.
func writeSSE(w io.Writer, event string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(strings.TrimSpace(string(payload)), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// non-EventSource requests only get the headers
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case gs, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, "board", h.renderBoard(gs, ""))
			flusher.Flush()
		}
	}
}
