package request

import (
	"net/http"
)

// BodyLimit caps request body size with http.MaxBytesReader, which answers
// 413 on overflow and closes the connection. Mount it ahead of any JSON
// decoding; the cap comes from config (server.max_body_bytes).
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
