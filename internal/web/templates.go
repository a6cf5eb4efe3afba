package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaminalder/gamey/internal/app"
	"github.com/jaminalder/gamey/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Game of Y</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.row{display:flex;justify-content:center}
.row form{margin:1px}
.cell{width:2em;height:2em;border-radius:50%}
.cell.B{background:#3b6fd8}
.cell.R{background:#d83b3b}
</style>
</head><body>{{template "content" .}}</body></html>`))
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div id="board" hx-sse="swap:board">{{template "board" .Board}}</div>
</div>`))
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.Bytes()
}

const indexTemplate = `<h1>Game of Y</h1>
<form action="/game" method="post">
  <label>Size <input type="number" name="size" min="1" max="{{.MaxSize}}" value="{{.DefaultSize}}"></label>
  <label>Bot <select name="bot">{{range .Bots}}<option value="{{.}}">{{.}}</option>{{end}}</select></label>
  <label>Play as <select name="side"><option value="B">Blue (first)</option><option value="R">Red</option></select></label>
  <button>Create</button>
</form>`

const boardTemplate = `
<div id="board">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="status">{{.Status}}</div>
  {{range .Rows}}
  <div class="row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="x" value="{{.X}}">
        <input type="hidden" name="y" value="{{.Y}}">
        <input type="hidden" name="z" value="{{.Z}}">
        <button type="submit" class="cell {{.Symbol}}"{{if not .Open}} disabled{{end}}></button>
      </form>
    {{end}}
  </div>
  {{end}}
</div>
`

type cellView struct {
	X, Y, Z int
	Symbol  string
	Open    bool
}

type boardView struct {
	ID     string
	Rows   [][]cellView
	Status string
	Error  string
}

// newBoardView lays the triangle out from the top corner down; row r holds
// r+1 cells.
func newBoardView(gs app.GameState, errMsg string) boardView {
	g := gs.Game
	size := g.Size()
	v := boardView{ID: gs.ID, Status: statusText(gs), Error: errMsg, Rows: make([][]cellView, size)}
	for row := 0; row < size; row++ {
		cells := make([]cellView, row+1)
		for col := 0; col <= row; col++ {
			c := domain.Coordinates{X: size - 1 - row, Y: col, Z: row - col}
			occ := g.At(c)
			cells[col] = cellView{X: c.X, Y: c.Y, Z: c.Z, Symbol: occ.String(), Open: occ == domain.Empty && !g.Over}
		}
		v.Rows[row] = cells
	}
	return v
}

func statusText(gs app.GameState) string {
	g := gs.Game
	switch {
	case g.Over && g.Winner == domain.Empty:
		return "Draw"
	case g.Over && g.Winner == gs.HumanSide:
		return "You win"
	case g.Over:
		return gs.BotID + " wins"
	case g.Turn == gs.HumanSide:
		return "Your move"
	}
	return gs.BotID + " to move"
}

func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}
