package service

import (
	"context"
	"strings"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/badge"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/notify"
	"opengalaxy/repository"
	"opengalaxy/utils"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

type SolutionService struct {
	repos        repository.Repositories
	certificates *CertificateService
	leaderboard  *LeaderboardService
	dispatcher   notify.Dispatcher
	logger       *logger.Logger
}

func NewSolutionService(repos repository.Repositories, certs *CertificateService, board *LeaderboardService, dispatcher notify.Dispatcher, log *logger.Logger) *SolutionService {
	return &SolutionService{
		repos:        repos,
		certificates: certs,
		leaderboard:  board,
		dispatcher:   dispatcher,
		logger:       log,
	}
}

type resolvedSolutions struct {
	list  []model.SolutionView
	users map[string]model.UserSummary
}

func solutionViews(ctx context.Context, users repository.UserRepository, solutions []model.Solution, extraUserIDs ...string) (resolvedSolutions, error) {
	ids := append([]string{}, extraUserIDs...)
	for _, sol := range solutions {
		ids = append(ids, sol.SubmittedBy)
	}
	summaries, err := userSummaries(ctx, users, ids)
	if err != nil {
		return resolvedSolutions{}, err
	}
	list := make([]model.SolutionView, 0, len(solutions))
	for _, sol := range solutions {
		list = append(list, model.SolutionView{
			ID:          sol.ID.Hex(),
			ProblemID:   sol.ProblemID,
			SubmittedBy: sol.SubmittedBy,
			User:        summaries[sol.SubmittedBy],
			Content:     sol.Content,
			CodeSnippet: sol.CodeSnippet,
			RepoLink:    sol.RepoLink,
			Language:    sol.Language,
			IsAccepted:  sol.IsAccepted,
			UpvoteCount: sol.UpvoteCount,
			Upvotes:     emptyIfNil(sol.Upvotes),
			CreatedAt:   sol.CreatedAt,
			UpdatedAt:   sol.UpdatedAt,
		})
	}
	return resolvedSolutions{list: list, users: summaries}, nil
}

func validateSolution(req model.SolutionRequest) error {
	if strings.TrimSpace(req.Content) == "" && strings.TrimSpace(req.CodeSnippet) == "" && strings.TrimSpace(req.RepoLink) == "" {
		return apperr.Invalid("solution needs content, a code snippet or a repository link")
	}
	return nil
}

// CreateSolution submits a solution to a problem and notifies the poster.
func (s *SolutionService) CreateSolution(ctx context.Context, userID, problemID string, req model.SolutionRequest) (*model.Solution, error) {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting CreateSolution", map[string]any{
		"method":    "CreateSolution",
		"problemId": problemID,
		"userId":    userID,
	}, "SERVICE", nil)

	if err := validateSolution(req); err != nil {
		return nil, logFailure(s.logger, traceID, "CreateSolution", "Empty solution", nil, err)
	}
	problem, err := s.repos.Problems.FindByID(ctx, problemID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "CreateSolution", "Failed to retrieve problem from DB", map[string]any{"problemId": problemID}, err)
	}
	if _, err := s.repos.Users.FindByID(ctx, userID); err != nil {
		return nil, logFailure(s.logger, traceID, "CreateSolution", "Failed to load submitter", map[string]any{"userId": userID}, err)
	}

	now := time.Now()
	solution := &model.Solution{
		ProblemID:   problemID,
		SubmittedBy: userID,
		Content:     req.Content,
		CodeSnippet: req.CodeSnippet,
		RepoLink:    strings.TrimSpace(req.RepoLink),
		Language:    utils.NormalizeLanguage(req.Language),
		IsAccepted:  false,
		Upvotes:     []string{},
		UpvoteCount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Solutions.Create(ctx, solution); err != nil {
		return nil, logFailure(s.logger, traceID, "CreateSolution", "Failed to create solution in DB", nil, err)
	}

	problem.SolutionIDs = append(emptyIfNil(problem.SolutionIDs), solution.ID.Hex())
	problem.UpdatedAt = now
	if err := s.repos.Problems.Save(ctx, problem); err != nil {
		return nil, logFailure(s.logger, traceID, "CreateSolution", "Failed to link solution to problem", map[string]any{"problemId": problemID}, err)
	}

	dispatch(ctx, s.dispatcher, notify.SolutionSubmitted(traceID, solution, problem))
	s.leaderboard.Invalidate(ctx)

	s.logger.Log(zapcore.InfoLevel, traceID, "Solution created successfully", map[string]any{
		"method":     "CreateSolution",
		"solutionId": solution.ID.Hex(),
	}, "SERVICE", nil)
	return solution, nil
}

func (s *SolutionService) ListByProblem(ctx context.Context, problemID string) ([]model.SolutionView, error) {
	traceID := uuid.New().String()
	if _, err := s.repos.Problems.FindByID(ctx, problemID); err != nil {
		return nil, logFailure(s.logger, traceID, "ListSolutionsByProblem", "Failed to retrieve problem from DB", map[string]any{"problemId": problemID}, err)
	}
	solutions, err := s.repos.Solutions.FindByProblemID(ctx, problemID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "ListSolutionsByProblem", "Failed to list solutions", map[string]any{"problemId": problemID}, err)
	}
	views, err := solutionViews(ctx, s.repos.Users, solutions)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "ListSolutionsByProblem", "Failed to resolve users", map[string]any{"problemId": problemID}, err)
	}
	return views.list, nil
}

func (s *SolutionService) ListMine(ctx context.Context, userID string) ([]model.Solution, error) {
	solutions, err := s.repos.Solutions.FindBySubmittedBy(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "ListMySolutions", "Failed to list solutions", map[string]any{"userId": userID}, err)
	}
	return solutions, nil
}

func (s *SolutionService) ownedSolution(ctx context.Context, traceID, method, userID, solutionID string) (*model.Solution, error) {
	solution, err := s.repos.Solutions.FindByID(ctx, solutionID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, method, "Failed to retrieve solution from DB", map[string]any{"solutionId": solutionID}, err)
	}
	if solution.SubmittedBy != userID {
		return nil, logFailure(s.logger, traceID, method, "Actor is not the submitter", map[string]any{
			"solutionId": solutionID,
			"userId":     userID,
		}, apperr.Forbidden("only the submitter can modify this solution"))
	}
	return solution, nil
}

func (s *SolutionService) UpdateSolution(ctx context.Context, userID, solutionID string, req model.SolutionRequest) (*model.Solution, error) {
	traceID := uuid.New().String()
	if err := validateSolution(req); err != nil {
		return nil, logFailure(s.logger, traceID, "UpdateSolution", "Empty solution", nil, err)
	}
	solution, err := s.ownedSolution(ctx, traceID, "UpdateSolution", userID, solutionID)
	if err != nil {
		return nil, err
	}

	solution.Content = req.Content
	solution.CodeSnippet = req.CodeSnippet
	solution.RepoLink = strings.TrimSpace(req.RepoLink)
	solution.Language = utils.NormalizeLanguage(req.Language)
	solution.UpdatedAt = time.Now()
	if err := s.repos.Solutions.Save(ctx, solution); err != nil {
		return nil, logFailure(s.logger, traceID, "UpdateSolution", "Failed to update solution in DB", map[string]any{"solutionId": solutionID}, err)
	}

	s.logger.Log(zapcore.InfoLevel, traceID, "Solution updated successfully", map[string]any{
		"method":     "UpdateSolution",
		"solutionId": solutionID,
	}, "SERVICE", nil)
	return solution, nil
}

// DeleteSolution removes the solution and unlinks it from its problem. Deleting
// the accepted solution reopens the problem.
func (s *SolutionService) DeleteSolution(ctx context.Context, userID, solutionID string) error {
	traceID := uuid.New().String()
	solution, err := s.ownedSolution(ctx, traceID, "DeleteSolution", userID, solutionID)
	if err != nil {
		return err
	}

	problem, err := s.repos.Problems.FindByID(ctx, solution.ProblemID)
	switch {
	case err == nil:
		problem.SolutionIDs = utils.Remove(problem.SolutionIDs, solutionID)
		if solution.IsAccepted {
			problem.Status = model.ProblemStatusOpen
		}
		problem.UpdatedAt = time.Now()
		if err := s.repos.Problems.Save(ctx, problem); err != nil {
			return logFailure(s.logger, traceID, "DeleteSolution", "Failed to unlink solution from problem", map[string]any{"problemId": solution.ProblemID}, err)
		}
	case apperr.KindOf(err) != apperr.KindNotFound:
		return logFailure(s.logger, traceID, "DeleteSolution", "Failed to retrieve problem from DB", map[string]any{"problemId": solution.ProblemID}, err)
	}

	if err := s.repos.Solutions.Delete(ctx, solutionID); err != nil {
		return logFailure(s.logger, traceID, "DeleteSolution", "Failed to delete solution from DB", map[string]any{"solutionId": solutionID}, err)
	}
	s.leaderboard.Invalidate(ctx)

	s.logger.Log(zapcore.InfoLevel, traceID, "Solution deleted successfully", map[string]any{
		"method":     "DeleteSolution",
		"solutionId": solutionID,
	}, "SERVICE", nil)
	return nil
}

// ToggleUpvote adds or removes userID from the upvote set and keeps the count
// equal to the set size.
func (s *SolutionService) ToggleUpvote(ctx context.Context, userID, solutionID string) (*model.Solution, error) {
	traceID := uuid.New().String()
	solution, err := s.repos.Solutions.FindByID(ctx, solutionID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "ToggleUpvote", "Failed to retrieve solution from DB", map[string]any{"solutionId": solutionID}, err)
	}

	upvotes, added := utils.ToggleMember(solution.Upvotes, userID)
	solution.Upvotes = upvotes
	solution.UpvoteCount = len(upvotes)
	solution.UpdatedAt = time.Now()
	if err := s.repos.Solutions.Save(ctx, solution); err != nil {
		return nil, logFailure(s.logger, traceID, "ToggleUpvote", "Failed to save solution", map[string]any{"solutionId": solutionID}, err)
	}

	s.logger.Log(zapcore.InfoLevel, traceID, "Toggled upvote", map[string]any{
		"method":     "ToggleUpvote",
		"solutionId": solutionID,
		"added":      added,
	}, "SERVICE", nil)
	return solution, nil
}

// AcceptSolution toggles acceptance. Only the problem poster may call it.
// Accepting marks the problem SOLVED, clears any previously accepted solution
// and awards the submitter one point. Un-accepting reopens the problem and
// keeps the points.
func (s *SolutionService) AcceptSolution(ctx context.Context, userID, solutionID string) (*model.Solution, error) {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting AcceptSolution", map[string]any{
		"method":     "AcceptSolution",
		"solutionId": solutionID,
		"userId":     userID,
	}, "SERVICE", nil)

	solution, err := s.repos.Solutions.FindByID(ctx, solutionID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to retrieve solution from DB", map[string]any{"solutionId": solutionID}, err)
	}
	problem, err := s.repos.Problems.FindByID(ctx, solution.ProblemID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to retrieve problem from DB", map[string]any{"problemId": solution.ProblemID}, err)
	}
	actor, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to load actor", map[string]any{"userId": userID}, err)
	}
	if problem.PostedBy != actor.ID.Hex() {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Actor is not the problem poster", map[string]any{
			"problemId": problem.ID.Hex(),
			"userId":    userID,
		}, apperr.Forbidden("only the problem poster can accept a solution"))
	}

	if solution.IsAccepted {
		return s.unaccept(ctx, traceID, solution)
	}

	submitter, err := s.repos.Users.FindByID(ctx, solution.SubmittedBy)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to load submitter", map[string]any{"submittedBy": solution.SubmittedBy}, err)
	}

	if _, err := s.repos.Solutions.UnacceptOthers(ctx, solution.ProblemID, solutionID); err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to clear previous acceptance", map[string]any{"problemId": solution.ProblemID}, err)
	}
	solution.IsAccepted = true
	solution.UpdatedAt = time.Now()
	if err := s.repos.Solutions.Save(ctx, solution); err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to save solution", map[string]any{"solutionId": solutionID}, err)
	}
	if err := s.repos.Problems.UpdateStatus(ctx, solution.ProblemID, model.ProblemStatusSolved); err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to mark problem solved", map[string]any{"problemId": solution.ProblemID}, err)
	}

	points, badges, granted := badge.AwardPoint(submitter.Points, submitter.Badges)
	submitter.Points = points
	submitter.Badges = badges
	submitter.UpdatedAt = time.Now()
	if err := s.repos.Users.Save(ctx, submitter); err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to award point", map[string]any{"submittedBy": submitter.ID.Hex()}, err)
	}

	if granted && s.certificates != nil {
		if _, _, err := s.certificates.Issue(ctx, submitter.GithubID); err != nil {
			s.logger.Log(zapcore.WarnLevel, traceID, "Certificate issuance after badge grant failed", map[string]any{
				"method":      "AcceptSolution",
				"submittedBy": submitter.ID.Hex(),
				"errorType":   errorType(err),
			}, "SERVICE", err)
		}
	}

	dispatch(ctx, s.dispatcher, notify.SolutionAccepted(traceID, solution, problem))
	s.leaderboard.Invalidate(ctx)

	s.logger.Log(zapcore.InfoLevel, traceID, "Solution accepted", map[string]any{
		"method":      "AcceptSolution",
		"solutionId":  solutionID,
		"points":      points,
		"badgeGained": granted,
	}, "SERVICE", nil)
	return solution, nil
}

func (s *SolutionService) unaccept(ctx context.Context, traceID string, solution *model.Solution) (*model.Solution, error) {
	solutionID := solution.ID.Hex()
	solution.IsAccepted = false
	solution.UpdatedAt = time.Now()
	if err := s.repos.Solutions.Save(ctx, solution); err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to save solution", map[string]any{"solutionId": solutionID}, err)
	}
	if err := s.repos.Problems.UpdateStatus(ctx, solution.ProblemID, model.ProblemStatusOpen); err != nil {
		return nil, logFailure(s.logger, traceID, "AcceptSolution", "Failed to reopen problem", map[string]any{"problemId": solution.ProblemID}, err)
	}
	s.leaderboard.Invalidate(ctx)

	s.logger.Log(zapcore.InfoLevel, traceID, "Solution acceptance withdrawn", map[string]any{
		"method":     "AcceptSolution",
		"solutionId": solutionID,
	}, "SERVICE", nil)
	return solution, nil
}

func (s *SolutionService) AchievementStats(ctx context.Context, userID string) (*model.AchievementStats, error) {
	traceID := uuid.New().String()
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "AchievementStats", "Failed to load user", map[string]any{"userId": userID}, err)
	}
	solutions, err := s.repos.Solutions.FindBySubmittedBy(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "AchievementStats", "Failed to list solutions", map[string]any{"userId": userID}, err)
	}

	accepted := 0
	for _, sol := range solutions {
		if sol.IsAccepted {
			accepted++
		}
	}
	stats := &model.AchievementStats{
		TotalSolutions:    len(solutions),
		AcceptedSolutions: accepted,
		Points:            user.Points,
		Badges:            emptyIfNil(user.Badges),
		BadgeCount:        len(user.Badges),
	}
	if name, missing, ok := badge.Next(user.Points); ok {
		stats.NextBadge = &name
		stats.PointsToNextBadge = missing
	}
	return stats, nil
}
