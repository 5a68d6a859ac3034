package middleware

import (
	"context"
	"net/http"
	"time"
)

// writeSlack leaves room to encode the error envelope after the context
// deadline fires.
const writeSlack = 5 * time.Second

// Deadline bounds the request context by d and pushes the connection's write
// deadline past it, so routes slower than the server-wide WriteTimeout can
// still answer. d <= 0 leaves the route unchanged.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d + writeSlack))
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

//Personal.AI order the ending
