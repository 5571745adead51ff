// Package requesttime provides middleware for request-scoped time.
// All operations within a single HTTP request use the same "now" timestamp,
// ensuring a consistent clock across status derivation, revocation stamping,
// and audit events. Accessors live in pkg/requestcontext so services never
// import HTTP code.
package requesttime

import (
	"net/http"
	"time"

	"pactum/pkg/requestcontext"
)

// Middleware captures the current UTC time at the start of the request
// and stores it in the context for consistent time references throughout the request.
// Ledger timestamps are always UTC; capturing UTC here keeps every downstream
// timestamp in the same zone without per-call conversions.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
