package handler

import (
	"net/http"

	"opengalaxy/model"
	"opengalaxy/service"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	users     *service.UserService
	problems  *service.ProblemService
	solutions *service.SolutionService
}

func NewUserHandler(users *service.UserService, problems *service.ProblemService, solutions *service.SolutionService) *UserHandler {
	return &UserHandler{users: users, problems: problems, solutions: solutions}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(Authenticator)
		r.Get("/me", h.Me)
		r.Put("/me", h.UpdateProfile)
		r.Get("/me/problems", h.MyProblems)
		r.Get("/me/saved", h.SavedProblems)
		r.Get("/me/solutions", h.MySolutions)
		r.Get("/me/stats", h.Stats)
	})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context(), userID(r))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.UserUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, err)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), userID(r), req)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) MyProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problems.ListMine(r.Context(), userID(r))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, problems)
}

func (h *UserHandler) SavedProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problems.ListSaved(r.Context(), userID(r))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, problems)
}

func (h *UserHandler) MySolutions(w http.ResponseWriter, r *http.Request) {
	solutions, err := h.solutions.ListMine(r.Context(), userID(r))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, solutions)
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.solutions.AchievementStats(r.Context(), userID(r))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, stats)
}
