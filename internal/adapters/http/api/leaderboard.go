package api

import (
	"context"
	"net/http"

	"github.com/okian/scoreboard/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context) ([]model.PlayerRecord, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /api/leaderboard requests. The body is
// always a JSON array, empty when there are no players.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	entries, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		setError(r, WrapKind(op, ErrInternal, err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, r, http.StatusOK, entries)
}
