package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", NotFound("problem %s not found", "p1"), http.StatusNotFound},
		{"forbidden", Forbidden("only the problem poster can accept a solution"), http.StatusForbidden},
		{"invalid", Invalid("invalid period: daily"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), http.StatusUnauthorized},
		{"wrapped", fmt.Errorf("accept: %w", NotFound("solution missing")), http.StatusNotFound},
		{"plain", errors.New("socket closed"), http.StatusInternalServerError},
		{"internal", Internal(errors.New("mongo down"), "failed to load user"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("user abc not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	err := Internal(errors.New("dial tcp 10.0.0.3:27017: refused"), "failed to save solution")
	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Equal(t, "invalid period: daily", PublicMessage(Invalid("invalid period: %s", "daily")))
	assert.ErrorContains(t, errors.Unwrap(err), "refused")
}
