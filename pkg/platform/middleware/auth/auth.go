package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "pactum/pkg/domain"
	"pactum/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker defines the interface for checking if tokens are revoked
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	GrantorID string
	JTI       string // JWT ID for revocation tracking
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// revocationResult represents the outcome of a token revocation check.
type revocationResult int

const (
	revocationOK         revocationResult = iota // Token is valid, not revoked
	revocationMissingJTI                         // Token missing required JTI claim
	revocationRevoked                            // Token has been revoked
	revocationError                              // Error checking revocation status
)

// checkRevocation verifies that a token has not been revoked.
// Returns revocationOK if the token is valid, or an appropriate error state.
func checkRevocation(ctx context.Context, checker TokenRevocationChecker, jti string, logger *slog.Logger) revocationResult {
	if checker == nil {
		return revocationOK
	}

	if jti == "" {
		requestID := requestcontext.RequestID(ctx)
		logger.WarnContext(ctx, "unauthorized access - missing token jti",
			"request_id", requestID,
		)
		return revocationMissingJTI
	}

	revoked, err := checker.IsTokenRevoked(ctx, jti)
	if err != nil {
		requestID := requestcontext.RequestID(ctx)
		logger.ErrorContext(ctx, "failed to check token revocation",
			"error", err,
			"request_id", requestID,
		)
		return revocationError
	}

	if revoked {
		requestID := requestcontext.RequestID(ctx)
		logger.WarnContext(ctx, "unauthorized access - token revoked",
			"jti", jti,
			"request_id", requestID,
		)
		return revocationRevoked
	}

	return revocationOK
}

// parseGrantor converts the string grantor ID from JWT claims to a typed ID.
// A token without a concrete grantor identity is unusable for ledger writes,
// so the nil UUID is rejected here rather than downstream.
func parseGrantor(claims *JWTClaims) (id.GrantorID, error) {
	grantorID, err := id.ParseGrantorID(claims.GrantorID)
	if err != nil {
		return id.GrantorID{}, fmt.Errorf("invalid grantor_id: %w", err)
	}
	if grantorID.IsNil() {
		return id.GrantorID{}, fmt.Errorf("grantor_id is nil")
	}
	return grantorID, nil
}

// GetGrantorID returns the authenticated grantor ID stored by RequireAuth.
// Returns the zero GrantorID if the context never passed through the middleware.
func GetGrantorID(ctx context.Context) id.GrantorID {
	return requestcontext.GrantorID(ctx)
}

// RequireAuth returns middleware that validates JWT tokens and populates context
// with the authenticated grantor's typed ID. It validates the token, checks
// revocation status, parses the grantor claim, and stores the ID in context.
func RequireAuth(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			switch checkRevocation(ctx, revocationChecker, claims.JTI, logger) {
			case revocationMissingJTI, revocationRevoked:
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has been revoked")
				return
			case revocationError:
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token")
				return
			}

			grantorID, err := parseGrantor(claims)
			if err != nil {
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithGrantorID(ctx, grantorID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
