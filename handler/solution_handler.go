package handler

import (
	"net/http"

	"opengalaxy/model"
	"opengalaxy/service"

	"github.com/go-chi/chi/v5"
)

type SolutionHandler struct {
	solutions *service.SolutionService
}

func NewSolutionHandler(solutions *service.SolutionService) *SolutionHandler {
	return &SolutionHandler{solutions: solutions}
}

func (h *SolutionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/problem/{problemId}", h.ListByProblem)

	r.Group(func(r chi.Router) {
		r.Use(Authenticator)
		// id is the problem id here.
		r.Post("/{id}", h.CreateSolution)
		r.Put("/{id}", h.UpdateSolution)
		r.Delete("/{id}", h.DeleteSolution)
	})
	toggle(r, "/{id}/upvote", h.ToggleUpvote)
	toggle(r, "/{id}/accept", h.AcceptSolution)
}

func (h *SolutionHandler) ListByProblem(w http.ResponseWriter, r *http.Request) {
	solutions, err := h.solutions.ListByProblem(r.Context(), chi.URLParam(r, "problemId"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, solutions)
}

func (h *SolutionHandler) CreateSolution(w http.ResponseWriter, r *http.Request) {
	var req model.SolutionRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, err)
		return
	}
	solution, err := h.solutions.CreateSolution(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, solution)
}

func (h *SolutionHandler) UpdateSolution(w http.ResponseWriter, r *http.Request) {
	var req model.SolutionRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, err)
		return
	}
	solution, err := h.solutions.UpdateSolution(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, solution)
}

func (h *SolutionHandler) DeleteSolution(w http.ResponseWriter, r *http.Request) {
	if err := h.solutions.DeleteSolution(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Solution deleted successfully"})
}

func (h *SolutionHandler) ToggleUpvote(w http.ResponseWriter, r *http.Request) {
	solution, err := h.solutions.ToggleUpvote(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, solution)
}

func (h *SolutionHandler) AcceptSolution(w http.ResponseWriter, r *http.Request) {
	solution, err := h.solutions.AcceptSolution(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, solution)
}
