package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/repository"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

type UserService struct {
	users       repository.UserRepository
	leaderboard *LeaderboardService
	logger      *logger.Logger
}

func NewUserService(users repository.UserRepository, board *LeaderboardService, log *logger.Logger) *UserService {
	return &UserService{users: users, leaderboard: board, logger: log}
}

// rankingsChanged drops cached rankings after a user is added or renamed;
// every user appears on each board.
func (s *UserService) rankingsChanged(ctx context.Context) {
	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}
}

// LoginFromGitHub creates the user on first login and refreshes the profile
// fields from GitHub afterwards. Points and badges are never touched.
func (s *UserService) LoginFromGitHub(ctx context.Context, principal model.GithubPrincipal) (*model.User, error) {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting LoginFromGitHub", map[string]any{
		"method":   "LoginFromGitHub",
		"githubId": principal.ID,
	}, "SERVICE", nil)

	login := strings.TrimSpace(principal.Login)
	if strings.TrimSpace(principal.ID) == "" || login == "" {
		return nil, logFailure(s.logger, traceID, "LoginFromGitHub", "GitHub principal is incomplete", nil,
			apperr.Invalid("GitHub id and login are required"))
	}
	name := strings.TrimSpace(principal.Name)
	if name == "" {
		name = login
	}
	email := strings.TrimSpace(principal.Email)
	if email == "" {
		email = login + "@github.com"
	}

	now := time.Now()
	user, err := s.users.FindByGithubID(ctx, principal.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		user = &model.User{
			GithubID:       principal.ID,
			Username:       login,
			FullName:       name,
			Email:          email,
			ProfilePicture: principal.AvatarURL,
			Points:         0,
			Badges:         []string{},
			LikedProblems:  []string{},
			SavedProblems:  []string{},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, logFailure(s.logger, traceID, "LoginFromGitHub", "Failed to create user", map[string]any{"githubId": principal.ID}, err)
		}
		s.rankingsChanged(ctx)
		s.logger.Log(zapcore.InfoLevel, traceID, "User created from GitHub login", map[string]any{
			"method": "LoginFromGitHub",
			"userId": user.ID.Hex(),
		}, "SERVICE", nil)
		return user, nil
	case err != nil:
		return nil, logFailure(s.logger, traceID, "LoginFromGitHub", "Failed to load user", map[string]any{"githubId": principal.ID}, err)
	}

	user.Username = login
	user.FullName = name
	user.Email = email
	if principal.AvatarURL != "" {
		user.ProfilePicture = principal.AvatarURL
	}
	user.UpdatedAt = now
	if err := s.users.Save(ctx, user); err != nil {
		return nil, logFailure(s.logger, traceID, "LoginFromGitHub", "Failed to refresh user", map[string]any{"userId": user.ID.Hex()}, err)
	}
	s.rankingsChanged(ctx)

	s.logger.Log(zapcore.InfoLevel, traceID, "User refreshed from GitHub login", map[string]any{
		"method": "LoginFromGitHub",
		"userId": user.ID.Hex(),
	}, "SERVICE", nil)
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, uuid.New().String(), "GetByID", "Failed to load user", map[string]any{"userId": userID}, err)
	}
	return user, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.GetByID(ctx, userID)
}

// UpdateProfile applies only the fields present in the request.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UserUpdateRequest) (*model.User, error) {
	traceID := uuid.New().String()
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting UpdateProfile", map[string]any{
		"method": "UpdateProfile",
		"userId": userID,
	}, "SERVICE", nil)

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, logFailure(s.logger, traceID, "UpdateProfile", "Failed to load user", map[string]any{"userId": userID}, err)
	}

	if req.Username != nil {
		v := strings.TrimSpace(*req.Username)
		if v == "" {
			return nil, logFailure(s.logger, traceID, "UpdateProfile", "Empty username", nil, apperr.Invalid("username cannot be empty"))
		}
		user.Username = v
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		v := strings.TrimSpace(*req.Email)
		if v != "" && !strings.Contains(v, "@") {
			return nil, logFailure(s.logger, traceID, "UpdateProfile", "Invalid email", nil, apperr.Invalid("invalid email: %s", v))
		}
		user.Email = v
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Save(ctx, user); err != nil {
		return nil, logFailure(s.logger, traceID, "UpdateProfile", "Failed to save user", map[string]any{"userId": userID}, err)
	}
	s.rankingsChanged(ctx)
	s.logger.Log(zapcore.InfoLevel, traceID, "Profile updated", map[string]any{
		"method": "UpdateProfile",
		"userId": userID,
	}, "SERVICE", nil)
	return user, nil
}
