package handler

import (
	"net/http"

	"opengalaxy/model"
	"opengalaxy/service"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problems  *service.ProblemService
	solutions *service.SolutionService
}

func NewProblemHandler(problems *service.ProblemService, solutions *service.SolutionService) *ProblemHandler {
	return &ProblemHandler{problems: problems, solutions: solutions}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListProblems)
	r.Get("/{id}", h.GetProblem)
	r.Get("/{id}/solutions", h.ListSolutions)

	r.Group(func(r chi.Router) {
		r.Use(Authenticator)
		r.Post("/", h.CreateProblem)
		r.Put("/{id}", h.UpdateProblem)
		r.Delete("/{id}", h.DeleteProblem)
		r.Post("/{id}/solutions", h.CreateSolution)
	})
	toggle(r, "/{id}/like", h.ToggleLike)
	toggle(r, "/{id}/save", h.ToggleSave)
}

func (h *ProblemHandler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var req model.ProblemRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, err)
		return
	}
	problem, err := h.problems.CreateProblem(r.Context(), userID(r), req)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.problems.ListProblems(r.Context())
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) GetProblem(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problems.GetProblem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) ListSolutions(w http.ResponseWriter, r *http.Request) {
	solutions, err := h.solutions.ListByProblem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, solutions)
}

func (h *ProblemHandler) UpdateProblem(w http.ResponseWriter, r *http.Request) {
	var req model.ProblemRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithError(w, err)
		return
	}
	problem, err := h.problems.UpdateProblem(r.Context(), userID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) DeleteProblem(w http.ResponseWriter, r *http.Request) {
	if err := h.problems.DeleteProblem(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Problem deleted successfully"})
}

func (h *ProblemHandler) CreateSolution(w http.ResponseWriter, r *http.Request) {
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

func (h *ProblemHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problems.ToggleLike(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	problem, err := h.problems.ToggleSave(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, problem)
}
