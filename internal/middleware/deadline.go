package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds each request's context by d. Handlers that run out of time
// still own the connection and can answer with an error, which they could not
// once the server's write timeout had fired.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
