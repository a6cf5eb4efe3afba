package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/gamey/internal/app"
	"github.com/jaminalder/gamey/internal/domain"
)

const apiVersion = "v1"

// maxChooseBody bounds the YEN request body.
const maxChooseBody = 64 << 10

type chooseResponse struct {
	APIVersion string             `json:"api_version"`
	BotID      string             `json:"bot_id"`
	Coords     domain.Coordinates `json:"coords"`
}

type errorResponse struct {
	APIVersion string `json:"api_version"`
	BotID      string `json:"bot_id,omitempty"`
	Message    string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "api_version": apiVersion})
}

func (h *handlers) listBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"api_version": apiVersion, "bots": h.svc.Bots()})
}

func (h *handlers) choose(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")
	var y domain.YEN
	r.Body = http.MaxBytesReader(w, r.Body, maxChooseBody)
	if err := json.NewDecoder(r.Body).Decode(&y); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse{APIVersion: apiVersion, BotID: botID, Message: "invalid payload"})
		return
	}
	c, err := h.svc.Choose(r.Context(), botID, y)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrInvalidYEN):
			status = http.StatusBadRequest
		case errors.Is(err, app.ErrUnknownBot):
			status = http.StatusNotFound
		case errors.Is(err, app.ErrGameFinished):
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{APIVersion: apiVersion, BotID: botID, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chooseResponse{APIVersion: apiVersion, BotID: botID, Coords: c})
}
