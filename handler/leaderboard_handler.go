package handler

import (
	"net/http"
	"strconv"

	"opengalaxy/apperr"
	"opengalaxy/leaderboard"
	"opengalaxy/model"
	"opengalaxy/service"

	"github.com/go-chi/chi/v5"
)

const defaultLeaderboardLimit = 3

type LeaderboardHandler struct {
	board *service.LeaderboardService
}

func NewLeaderboardHandler(board *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leaderboard", h.GetLeaderboard)
}

// GetLeaderboard returns one period when ?period is given, otherwise the
// top entries of every period keyed by name.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondWithError(w, apperr.Invalid("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	if period := r.URL.Query().Get("period"); period != "" {
		entries, err := h.board.Get(r.Context(), period, limit)
		if err != nil {
			RespondWithError(w, err)
			return
		}
		RespondWithJSON(w, http.StatusOK, entries)
		return
	}

	all := make(map[string][]model.LeaderboardEntry, len(leaderboard.Periods))
	for _, period := range leaderboard.Periods {
		entries, err := h.board.Get(r.Context(), period, limit)
		if err != nil {
			RespondWithError(w, err)
			return
		}
		all[period] = entries
	}
	RespondWithJSON(w, http.StatusOK, all)
}
