package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"rps-backend/internal/engine"
	"rps-backend/internal/models"
)

type Handler struct {
	registry *engine.Registry
}

func New(registry *engine.Registry) *Handler {
	return &Handler{registry: registry}
}

// Router assembles the API surface. Referee-only commands live under the same
// prefix; gating them is the deployment's concern, not the engine's.
func (h *Handler) Router(corsOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(corsOrigin))

	r.Post("/api/players", h.RegisterPlayer)
	r.Post("/api/moves", h.SubmitMove)

	r.Get("/api/tournaments", h.ListTournaments)
	r.Get("/api/tournaments/current", h.GetCurrentTournament)
	r.Get("/api/tournaments/{id}", h.GetTournament)
	r.Get("/api/tournaments/{id}/leaderboard", h.GetLeaderboard)
	r.Get("/api/tournaments/{id}/rounds/{round}/results", h.GetRoundResults)

	r.Get("/api/players/{id}/match", h.GetCurrentMatch)

	// Referee commands
	r.Post("/api/tournaments/{id}/rounds/start", h.StartRound)
	r.Post("/api/tournaments/{id}/rounds/release", h.ReleaseRoundResults)
	r.Post("/api/matches/{id}/rounds/start", h.StartMatchRound)
	r.Post("/api/matches/{id}/rounds/release", h.ReleaseMatchResults)

	return r
}

type RegisterPlayerRequest struct {
	Name string `json:"name"`
}

func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req RegisterPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.registry.RegisterPlayer(r.Context(), req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type SubmitMoveRequest struct {
	PlayerID int `json:"playerId"`
	Move     int `json:"move"`
}

type SubmitMoveResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Match   *models.Match `json:"match,omitempty"`
}

func (h *Handler) SubmitMove(w http.ResponseWriter, r *http.Request) {
	var req SubmitMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.registry.SubmitMove(r.Context(), req.PlayerID, models.Move(req.Move))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SubmitMoveResponse{
		Success: true,
		Message: result.Message,
		Match:   result.Match,
	})
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.TournamentStates())
}

func (h *Handler) GetCurrentTournament(w http.ResponseWriter, r *http.Request) {
	// Snapshot or null, never 404: "no tournament yet" is a normal state
	writeJSON(w, http.StatusOK, h.registry.CurrentTournamentState())
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	snapshot, err := h.registry.TournamentState(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	entries, err := h.registry.Leaderboard(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) GetRoundResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	round, ok := pathInt(w, r, "round")
	if !ok {
		return
	}
	entries, err := h.registry.RoundResults(id, round)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) GetCurrentMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	completed := r.URL.Query().Get("completed") == "true"

	match, err := h.registry.CurrentMatchForPlayer(id, completed)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	// Null when the player is between matches
	writeJSON(w, http.StatusOK, match)
}

func (h *Handler) StartRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.registry.StartRound(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	snapshot, err := h.registry.TournamentState(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) ReleaseRoundResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.registry.ReleaseRoundResults(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	snapshot, err := h.registry.TournamentState(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) StartMatchRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.registry.StartMatchRound(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReleaseMatchResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.registry.ReleaseMatchResults(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

// writeEngineError maps the engine's typed errors onto HTTP statuses. The
// error text carries the current state, so clients can show a precise reason.
func writeEngineError(w http.ResponseWriter, err error) {
	var stateErr *engine.InvalidStateError
	switch {
	case errors.Is(err, engine.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrDuplicateSubmission),
		errors.Is(err, engine.ErrIncompleteSubmission),
		errors.Is(err, engine.ErrIncompleteRound),
		errors.As(err, &stateErr):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("unexpected engine error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
