package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	Auth *jwtauth.JWTAuth
	exp  time.Duration
	now  func() time.Time
}

func NewTokenIssuer(secret []byte, exp time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Auth: jwtauth.New("HS256", secret, nil),
		exp:  exp,
		now:  time.Now,
	}
}

func (t *TokenIssuer) GenerateToken(userID, githubID string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"user_id":   userID,
		"github_id": githubID,
		"exp":       now.Add(t.exp).Unix(),
		"iat":       now.Unix(),
	}
	_, tokenString, err := t.Auth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetGithubIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["github_id"].(string)
	if !ok || id == "" {
		return "", errors.New("github_id claim is missing or not a string")
	}
	return id, nil
}
