package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/leaderboard-go/internal/model"
)

type stubSessions map[string]*model.Session

func (s stubSessions) Current(_ context.Context, token string) *model.Session {
	return s[token]
}

func TestExtractTokenPrefersBearer(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", ExtractToken(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", ExtractToken(r))
}

func TestRequireSession(t *testing.T) {
	sessions := stubSessions{"good": {Token: "good", IdentityID: "id-1", Authenticated: true}}

	var seen *model.Session
	handler := RequireSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = MustGetSession(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/score", nil)
	r.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.IdentityID("id-1"), seen.IdentityID)

	r = httptest.NewRequest(http.MethodPost, "/score", nil)
	r.Header.Set("Authorization", "Bearer stale")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_LOGGED_IN")
}

func TestOptionalSessionPassesAnonymous(t *testing.T) {
	called := false
	handler := OptionalSession(stubSessions{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, GetSession(r.Context()))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.True(t, called)
}
