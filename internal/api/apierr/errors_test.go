package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/services/identity"
	"github.com/mcoot/leaderboard-go/internal/services/leaderboard"
	"github.com/mcoot/leaderboard-go/internal/services/score"
	"github.com/mcoot/leaderboard-go/internal/services/session"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrNegativeScore, http.StatusBadRequest, CodeInvalidRequest},
		{model.ErrInvalidGameID, http.StatusBadRequest, CodeInvalidRequest},
		{model.ErrUsernameTaken, http.StatusBadRequest, CodeUsernameExists},
		{identity.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
		{session.ErrNotLoggedIn, http.StatusUnauthorized, CodeNotLoggedIn},
		{score.ErrUnauthenticated, http.StatusUnauthorized, CodeNotLoggedIn},
		{call.ErrServiceUnavailable, http.StatusServiceUnavailable, CodeServiceUnavailable},
		{errors.Join(leaderboard.ErrQueryFailed, errors.New("io")), http.StatusInternalServerError, CodeInternalError},
		{fmt.Errorf("wrapped: %w", errors.New("boom")), http.StatusInternalServerError, CodeInternalError},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
	}

	for _, tt := range tests {
		he := toHTTPError(tt.err)
		assert.Equal(t, tt.status, he.status, "err %v", tt.err)
		assert.Equal(t, tt.code, he.apiError.Code, "err %v", tt.err)
	}
}

func TestWriteErrorDoesNotLeakInternals(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("dial tcp 10.0.0.1:6379: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, CodeInternalError, body.Error.Code)
	assert.NotContains(t, rr.Body.String(), "6379")
}
