package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/requestcontext"
)

// Issuer and audience are fixed: pactum is a single-issuer deployment and
// tokens minted elsewhere must not validate here.
const (
	TokenIssuer   = "pactum"
	TokenAudience = "pactum-api"
)

// GrantorClaims are the JWT claims of a grantor access token.
type GrantorClaims struct {
	GrantorID string `json:"grantor_id"`
	jwt.RegisteredClaims
}

// JWTService mints and validates grantor access tokens (HS256).
type JWTService struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewJWTService creates a token service with the shared signing key.
func NewJWTService(signingKey string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// GenerateGrantorToken mints a signed access token for the grantor. Returns
// the compact token and its JTI, which callers may record for revocation.
func (s *JWTService) GenerateGrantorToken(ctx context.Context, grantorID id.GrantorID) (string, string, error) {
	if grantorID.IsNil() {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "grantor ID is required")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	jti := hex.EncodeToString(b)
	now := requestcontext.Now(ctx)

	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, GrantorClaims{
		GrantorID: grantorID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grantorID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Audience:  []string{TokenAudience},
			ID:        jti,
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signedToken, jti, nil
}

// ValidateToken checks signature, algorithm, expiry, issuer and audience,
// and returns the claims of a valid token.
func (s *JWTService) ValidateToken(tokenString string) (*GrantorClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &GrantorClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*GrantorClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
