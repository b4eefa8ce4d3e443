package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtlprog/pricebot/internal/bot"
)

const maxRequestBody = 1 << 20

// BotHandler serves bot definitions and command execution.
type BotHandler struct {
	bots map[string]*bot.Bot
}

// NewBotHandler indexes bots by name.
func NewBotHandler(bots []*bot.Bot) *BotHandler {
	h := &BotHandler{bots: make(map[string]*bot.Bot, len(bots))}
	for _, b := range bots {
		h.bots[b.Name()] = b
	}
	return h
}

func (h *BotHandler) lookup(w http.ResponseWriter, r *http.Request) (*bot.Bot, bool) {
	name := chi.URLParam(r, "bot")
	b, ok := h.bots[name]
	if !ok {
		writeError(w, http.StatusNotFound, "bot not found")
	}
	return b, ok
}

// GetDefinition handles GET /{bot}/bot_definition.
func (h *BotHandler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	b, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.Definition())
}

// ExecuteCommand handles POST /{bot}/execute_command.
func (h *BotHandler) ExecuteCommand(w http.ResponseWriter, r *http.Request) {
	b, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req bot.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := bot.ParseRole(string(req.InitiatorRole)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := b.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bot.ErrUnknownCommand):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, bot.ErrNotPermitted), errors.Is(err, bot.ErrDirectMessages):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, bot.ErrInvalidArgs):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("failed to execute command", "bot", b.Name(), "command", req.Command, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
