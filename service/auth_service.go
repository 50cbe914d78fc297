package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"opengalaxy/apperr"
	"opengalaxy/logger"
	"opengalaxy/model"
	"opengalaxy/notify"
	"opengalaxy/security"

	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

// NewGithubOAuthConfig builds the OAuth2 client configuration for GitHub
// login.
func NewGithubOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
	}
}

type AuthService struct {
	oauth      *oauth2.Config
	users      *UserService
	tokens     *security.TokenIssuer
	dispatcher notify.Dispatcher
	logger     *logger.Logger

	userURL   string
	emailsURL string
}

func NewAuthService(cfg *oauth2.Config, users *UserService, tokens *security.TokenIssuer, dispatcher notify.Dispatcher, log *logger.Logger) *AuthService {
	return &AuthService{
		oauth:      cfg,
		users:      users,
		tokens:     tokens,
		dispatcher: dispatcher,
		logger:     log,
		userURL:    githubUserURL,
		emailsURL:  githubEmailsURL,
	}
}

// NewState returns a random value for the OAuth state cookie.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (s *AuthService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// HandleCallback exchanges the authorization code, loads the GitHub profile
// and completes the login.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (string, *model.User, error) {
	traceID := uuid.New().String()
	if code == "" {
		return "", nil, logFailure(s.logger, traceID, "HandleCallback", "Missing authorization code", nil, apperr.Invalid("authorization code is required"))
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", nil, logFailure(s.logger, traceID, "HandleCallback", "OAuth code exchange failed", nil,
			apperr.Wrap(apperr.KindUnauthorized, err, "GitHub authorization failed"))
	}
	client := s.oauth.Client(ctx, tok)

	principal, err := s.fetchPrincipal(ctx, client)
	if err != nil {
		return "", nil, logFailure(s.logger, traceID, "HandleCallback", "Failed to load GitHub profile", nil,
			apperr.Wrap(apperr.KindUnauthorized, err, "failed to load GitHub profile"))
	}
	return s.CompleteLogin(ctx, *principal)
}

func (s *AuthService) fetchPrincipal(ctx context.Context, client *http.Client) (*model.GithubPrincipal, error) {
	var gu githubUser
	if err := getJSON(ctx, client, s.userURL, &gu); err != nil {
		return nil, err
	}
	principal := &model.GithubPrincipal{
		ID:        strconv.FormatInt(gu.ID, 10),
		Login:     gu.Login,
		Email:     gu.Email,
		Name:      gu.Name,
		AvatarURL: gu.AvatarURL,
	}
	if principal.Email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, s.emailsURL, &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					principal.Email = e.Email
					break
				}
			}
		}
	}
	return principal, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CompleteLogin upserts the user, announces the login and issues a session
// token.
func (s *AuthService) CompleteLogin(ctx context.Context, principal model.GithubPrincipal) (string, *model.User, error) {
	traceID := uuid.New().String()
	user, err := s.users.LoginFromGitHub(ctx, principal)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.GithubID)
	if err != nil {
		return "", nil, logFailure(s.logger, traceID, "CompleteLogin", "Failed to sign token", map[string]any{"userId": user.ID.Hex()},
			apperr.Internal(err, "failed to issue token"))
	}

	dispatch(ctx, s.dispatcher, notify.LoginSucceeded(traceID, user))

	s.logger.Log(zapcore.InfoLevel, traceID, "Login completed", map[string]any{
		"method": "CompleteLogin",
		"userId": user.ID.Hex(),
	}, "SERVICE", nil)
	return token, user, nil
}
