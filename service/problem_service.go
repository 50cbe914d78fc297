package service

import (
	"context"
	"strings"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/notify"
	"opengalaxy/repository"
	"opengalaxy/utils"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap/zapcore"
)

type ProblemService struct {
	repos       repository.Repositories
	leaderboard *LeaderboardService
	dispatcher  notify.Dispatcher
	logger      *logger.Logger
}

func NewProblemService(repos repository.Repositories, board *LeaderboardService, dispatcher notify.Dispatcher, log *logger.Logger) *ProblemService {
	return &ProblemService{repos: repos, leaderboard: board, dispatcher: dispatcher, logger: log}
}

func validateProblem(req model.ProblemRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperr.Invalid("title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return apperr.Invalid("description is required")
	}
	return nil
}

// CreateProblem stores a new OPEN problem posted by userID and notifies the
// poster.
func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req model.ProblemRequest) (*model.Problem, error) {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting CreateProblem", map[string]any{
		"method":       "CreateProblem",
		"userId":       userID,
		"problemTitle": req.Title,
	}, "SERVICE", nil)

	if err := validateProblem(req); err != nil {
		return nil, logFailure(s.logger, traceID, "CreateProblem", "Missing required fields", nil, err)
	}
	if _, err := s.repos.Users.FindByID(ctx, userID); err != nil {
		return nil, logFailure(s.logger, traceID, "CreateProblem", "Failed to load poster", map[string]any{"userId": userID}, err)
	}

	now := time.Now()
	title := strings.TrimSpace(req.Title)
	problem := &model.Problem{
		Slug:        slug.Make(title),
		Title:       title,
		Description: req.Description,
		CodeSnippet: req.CodeSnippet,
		RepoLink:    strings.TrimSpace(req.RepoLink),
		Environment: req.Environment,
		Language:    utils.NormalizeLanguage(req.Language),
		Tags:        utils.NormalizeTags(req.Tags),
		Status:      model.ProblemStatusOpen,
		PostedBy:    userID,
		Likes:       []string{},
		SavedBy:     []string{},
		SolutionIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Problems.Create(ctx, problem); err != nil {
		return nil, logFailure(s.logger, traceID, "CreateProblem", "Failed to create problem in DB", nil, err)
	}

	dispatch(ctx, s.dispatcher, notify.ProblemPosted(traceID, problem))

	s.logger.Log(zapcore.InfoLevel, traceID, "Problem created successfully", map[string]any{
		"method":    "CreateProblem",
		"problemId": problem.ID.Hex(),
	}, "SERVICE", nil)
	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context) ([]model.Problem, error) {
	problems, err := s.repos.Problems.FindAll(ctx)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "ListProblems", "Failed to list problems", nil, err)
	}
	return problems, nil
}

// GetProblem returns the problem with its poster and solutions.
func (s *ProblemService) GetProblem(ctx context.Context, problemID string) (*model.ProblemWithSolutions, error) {
	traceID := uuid.New().String()
	problem, err := s.repos.Problems.FindByID(ctx, problemID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "GetProblem", "Failed to retrieve problem from DB", map[string]any{"problemId": problemID}, err)
	}
	solutions, err := s.repos.Solutions.FindByProblemID(ctx, problemID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "GetProblem", "Failed to retrieve solutions", map[string]any{"problemId": problemID}, err)
	}
	views, err := solutionViews(ctx, s.repos.Users, solutions, problem.PostedBy)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "GetProblem", "Failed to resolve users", map[string]any{"problemId": problemID}, err)
	}
	return &model.ProblemWithSolutions{
		Problem:   *problem,
		PostedBy:  views.users[problem.PostedBy],
		Solutions: views.list,
	}, nil
}

func (s *ProblemService) ListMine(ctx context.Context, userID string) ([]model.Problem, error) {
	problems, err := s.repos.Problems.FindByPostedBy(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "ListMyProblems", "Failed to list problems", map[string]any{"userId": userID}, err)
	}
	return problems, nil
}

func (s *ProblemService) ListSaved(ctx context.Context, userID string) ([]model.Problem, error) {
	traceID := uuid.New().String()
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "ListSavedProblems", "Failed to load user", map[string]any{"userId": userID}, err)
	}
	if len(user.SavedProblems) == 0 {
		return []model.Problem{}, nil
	}
	problems, err := s.repos.Problems.FindByIDs(ctx, user.SavedProblems)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "ListSavedProblems", "Failed to load saved problems", map[string]any{"userId": userID}, err)
	}
	return problems, nil
}

func (s *ProblemService) ownedProblem(ctx context.Context, traceID, method, userID, problemID string) (*model.Problem, error) {
	problem, err := s.repos.Problems.FindByID(ctx, problemID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, method, "Failed to retrieve problem from DB", map[string]any{"problemId": problemID}, err)
	}
	if problem.PostedBy != userID {
		return nil, logFailure(s.logger, traceID, method, "Actor is not the problem poster", map[string]any{
			"problemId": problemID,
			"userId":    userID,
		}, apperr.Forbidden("only the problem poster can modify this problem"))
	}
	return problem, nil
}

// UpdateProblem replaces the editable fields. Status is derived from
// acceptance and cannot be set here.
func (s *ProblemService) UpdateProblem(ctx context.Context, userID, problemID string, req model.ProblemRequest) (*model.Problem, error) {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting UpdateProblem", map[string]any{
		"method":    "UpdateProblem",
		"problemId": problemID,
	}, "SERVICE", nil)

	if err := validateProblem(req); err != nil {
		return nil, logFailure(s.logger, traceID, "UpdateProblem", "Missing required fields", nil, err)
	}
	problem, err := s.ownedProblem(ctx, traceID, "UpdateProblem", userID, problemID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title != problem.Title {
		problem.Slug = slug.Make(title)
	}
	problem.Title = title
	problem.Description = req.Description
	problem.CodeSnippet = req.CodeSnippet
	problem.RepoLink = strings.TrimSpace(req.RepoLink)
	problem.Environment = req.Environment
	problem.Language = utils.NormalizeLanguage(req.Language)
	problem.Tags = utils.NormalizeTags(req.Tags)
	problem.UpdatedAt = time.Now()

	if err := s.repos.Problems.Save(ctx, problem); err != nil {
		return nil, logFailure(s.logger, traceID, "UpdateProblem", "Failed to update problem in DB", map[string]any{"problemId": problemID}, err)
	}
	s.logger.Log(zapcore.InfoLevel, traceID, "Problem updated successfully", map[string]any{
		"method":    "UpdateProblem",
		"problemId": problemID,
	}, "SERVICE", nil)
	return problem, nil
}

// DeleteProblem removes the problem and every solution posted to it.
func (s *ProblemService) DeleteProblem(ctx context.Context, userID, problemID string) error {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting DeleteProblem", map[string]any{
		"method":    "DeleteProblem",
		"problemId": problemID,
	}, "SERVICE", nil)

	if _, err := s.ownedProblem(ctx, traceID, "DeleteProblem", userID, problemID); err != nil {
		return err
	}
	if err := s.repos.Solutions.DeleteByProblemID(ctx, problemID); err != nil {
		return logFailure(s.logger, traceID, "DeleteProblem", "Failed to delete solutions", map[string]any{"problemId": problemID}, err)
	}
	if err := s.repos.Problems.Delete(ctx, problemID); err != nil {
		return logFailure(s.logger, traceID, "DeleteProblem", "Failed to delete problem from DB", map[string]any{"problemId": problemID}, err)
	}
	s.leaderboard.Invalidate(ctx)

	s.logger.Log(zapcore.InfoLevel, traceID, "Problem deleted successfully", map[string]any{
		"method":    "DeleteProblem",
		"problemId": problemID,
	}, "SERVICE", nil)
	return nil
}

// ToggleLike flips the like on both the problem and the user's list.
func (s *ProblemService) ToggleLike(ctx context.Context, userID, problemID string) (*model.Problem, error) {
	return s.toggle(ctx, "ToggleLike", userID, problemID,
		func(p *model.Problem) *[]string { return &p.Likes },
		func(u *model.User) *[]string { return &u.LikedProblems },
	)
}

// ToggleSave flips the bookmark on both the problem and the user's list.
func (s *ProblemService) ToggleSave(ctx context.Context, userID, problemID string) (*model.Problem, error) {
	return s.toggle(ctx, "ToggleSave", userID, problemID,
		func(p *model.Problem) *[]string { return &p.SavedBy },
		func(u *model.User) *[]string { return &u.SavedProblems },
	)
}

func (s *ProblemService) toggle(ctx context.Context, method, userID, problemID string, problemSet func(*model.Problem) *[]string, userList func(*model.User) *[]string) (*model.Problem, error) {
	traceID := uuid.New().String()
	problem, err := s.repos.Problems.FindByID(ctx, problemID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, method, "Failed to retrieve problem from DB", map[string]any{"problemId": problemID}, err)
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, method, "Failed to load user", map[string]any{"userId": userID}, err)
	}

	set, added := utils.ToggleMember(*problemSet(problem), userID)
	*problemSet(problem) = set
	list := userList(user)
	if added {
		if !utils.Contains(*list, problemID) {
			*list = append(emptyIfNil(*list), problemID)
		}
	} else {
		*list = utils.Remove(*list, problemID)
	}

	if err := s.repos.Problems.Save(ctx, problem); err != nil {
		return nil, logFailure(s.logger, traceID, method, "Failed to save problem", map[string]any{"problemId": problemID}, err)
	}
	if err := s.repos.Users.Save(ctx, user); err != nil {
		return nil, logFailure(s.logger, traceID, method, "Failed to save user", map[string]any{"userId": userID}, err)
	}

	s.logger.Log(zapcore.InfoLevel, traceID, "Toggled problem membership", map[string]any{
		"method":    method,
		"problemId": problemID,
		"added":     added,
	}, "SERVICE", nil)
	return problem, nil
}
