package jwttoken

import (
	"pactum/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims maps token claims to the auth middleware's view.
func ToMiddlewareClaims(claims *GrantorClaims) *auth.JWTClaims {
	return &auth.JWTClaims{
		GrantorID: claims.GrantorID,
		JTI:       claims.ID, // JWT ID for revocation tracking
	}
}

// JWTServiceAdapter adapts JWTService to the middleware's validator
// interface.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
