package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/leaderboard-go/internal/api/apierr"
	"github.com/mcoot/leaderboard-go/internal/model"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "session"

// SessionLookup resolves a token to a live session, or nil
type SessionLookup interface {
	Current(ctx context.Context, token string) *model.Session
}

// RequireSession rejects requests without a live session
func RequireSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessions.Current(r.Context(), ExtractToken(r))
			if session == nil {
				apierr.WriteError(w, apierr.NewNotLoggedInError())
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession attaches the session if there is one but never rejects
func OptionalSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				if session := sessions.Current(r.Context(), token); session != nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionContextKey, session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken extracts the session token from the request
func ExtractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	// Fall back to cookie
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) *model.Session {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - session middleware not applied?")
	}
	return session
}
