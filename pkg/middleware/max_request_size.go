package middleware

import (
	"net/http"
)

// MaxRequestSize caps request bodies. Reads past the limit fail inside
// the handler's decoder, which surfaces as a validation error instead of
// an unbounded allocation.
func MaxRequestSize(maxBytes int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))
			}
			next.ServeHTTP(w, r)
		})
	}
}
