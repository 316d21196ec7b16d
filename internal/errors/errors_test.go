package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing token", ErrMissingToken, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"email not confirmed", ErrEmailNotConfirmed, http.StatusUnauthorized, "EMAIL_NOT_CONFIRMED"},
		{"wrapped not found", fmt.Errorf("delete comment 7: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped lockout", fmt.Errorf("%w: account locked", ErrInvalidCredentials), http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"moderation never leaks", ErrModerationUnavailable, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.wantCode, httpErr.ToErrorResponse().Code)
		})
	}
}
