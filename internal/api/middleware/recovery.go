package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/leaderboard-go/internal/api/apierr"
	"github.com/mcoot/leaderboard-go/internal/middleware"
)

// Recovery turns panics into a JSON 500
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging logs each request
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
