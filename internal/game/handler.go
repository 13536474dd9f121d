package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dartmania/game-api/internal/board"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GET /api/state
func (h *Handler) LatestState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.svc.LatestInProgressGameID(ctx)
	if err != nil {
		http.Error(w, "failed to load state: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if id == "" {
		writeJSON(w, http.StatusOK, GameStateView{})
		return
	}

	state, err := h.svc.GetGameState(ctx, id)
	if err != nil {
		http.Error(w, "failed to load state: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// GET /api/game/{gameID}
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(r, "gameID")
	if id == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	state, err := h.svc.GetGameState(ctx, id)
	if err != nil {
		http.Error(w, "failed to load game: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// POST /api/game
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	state, err := h.svc.CreateGame(ctx, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNoPlayers) || errors.Is(err, ErrInvalidMode) {
			status = http.StatusBadRequest
		}
		http.Error(w, "failed to create game: "+err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// POST /api/throw
func (h *Handler) PostThrow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req ThrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.GameID == "" || req.Segment == "" {
		http.Error(w, "gameId and segment required", http.StatusBadRequest)
		return
	}

	state, err := h.svc.ApplyThrow(ctx, req.GameID, req.Segment)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, board.ErrInvalidSegment) {
			status = http.StatusBadRequest
		}
		http.Error(w, "failed to register throw: "+err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// POST /api/undo
func (h *Handler) PostUndo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req GameRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.GameID == "" {
		http.Error(w, "gameId required", http.StatusBadRequest)
		return
	}

	state, err := h.svc.UndoThrow(ctx, req.GameID)
	if err != nil {
		http.Error(w, "failed to undo throw: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// POST /api/end
func (h *Handler) PostEnd(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req GameRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.GameID == "" {
		http.Error(w, "gameId required", http.StatusBadRequest)
		return
	}

	state, err := h.svc.EndGame(ctx, req.GameID)
	if err != nil {
		http.Error(w, "failed to end game: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// GET /api/history
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := h.svc.ListHistory(ctx)
	if err != nil {
		http.Error(w, "failed to load history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// DELETE /api/history/{gameID}
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id := chi.URLParam(r, "gameID")
	if id == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteGame(ctx, id); err != nil {
		http.Error(w, "failed to delete game: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Helper to write JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
