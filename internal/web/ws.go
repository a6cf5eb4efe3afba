package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/gamey/internal/app"
	"github.com/rs/zerolog/log"
)

var wsIdlePingInterval = 30 * time.Second

// upgrader keeps gorilla's same-origin check.
var upgrader = websocket.Upgrader{}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func boardFrame(gs app.GameState) []byte {
	return mustMarshal(wsMessage{Type: "board", Payload: mustMarshal(gs.Game.YEN())})
}

// ws streams board updates for one game as YEN frames. Incoming frames are
// only read to notice the client going away.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	updates, unsub, err := h.svc.Subscribe(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	gs, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Str("game", id).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	go func() {
		defer unsub()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, boardFrame(*gs)); err != nil {
		return
	}
	if err := writeWSWithHeartbeat(conn, updates); err != nil {
		log.Debug().Err(err).Str("game", id).Msg("ws closed")
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, updates <-chan app.GameState) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case gs, ok := <-updates:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, boardFrame(gs)); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
