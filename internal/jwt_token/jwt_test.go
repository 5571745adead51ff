package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "pactum/pkg/domain"
	dErrors "pactum/pkg/domain-errors"
	"pactum/pkg/requestcontext"
)

var grantorID = id.GrantorID(uuid.New())

var jwtService = NewJWTService("test-signing-key", time.Minute)

func Test_GenerateGrantorToken(t *testing.T) {
	ctx := context.Background()
	token, jti, err := jwtService.GenerateGrantorToken(ctx, grantorID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Len(t, jti, 32, "jti is 16 random bytes hex-encoded")

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, grantorID.String(), claims.GrantorID)
	assert.Equal(t, grantorID.String(), claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateGrantorToken_NilGrantor(t *testing.T) {
	_, _, err := jwtService.GenerateGrantorToken(context.Background(), id.GrantorID{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	// Mint in the past via the request clock instead of sleeping.
	past := requestcontext.WithTime(context.Background(), time.Now().Add(-time.Hour))
	token, _, err := jwtService.GenerateGrantorToken(past, grantorID)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorContains(t, err, "token expired")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("other-signing-key", time.Minute)
	token, _, err := other.GenerateGrantorToken(context.Background(), grantorID)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_RejectsAlgorithmConfusion(t *testing.T) {
	claims := GrantorClaims{
		GrantorID: grantorID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   grantorID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    TokenIssuer,
			Audience:  []string{TokenAudience},
			ID:        uuid.NewString(),
		},
	}

	cases := []struct {
		name       string
		signMethod jwt.SigningMethod
		signKey    any
	}{
		{
			name:       "hs512 header rejected",
			signMethod: jwt.SigningMethodHS512,
			signKey:    []byte("test-signing-key"),
		},
		{
			name:       "alg none rejected",
			signMethod: jwt.SigningMethodNone,
			signKey:    jwt.UnsafeAllowNoneSignatureType,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			token := jwt.NewWithClaims(tt.signMethod, claims)
			tokenString, err := token.SignedString(tt.signKey)
			require.NoError(t, err)

			_, err = jwtService.ValidateToken(tokenString)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})
	}
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, GrantorClaims{
		GrantorID: grantorID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "someone-else",
			Audience:  []string{TokenAudience},
		},
	})
	token, err := foreign.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, GrantorClaims{
		GrantorID: grantorID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    TokenIssuer,
			Audience:  []string{"some-other-api"},
		},
	})
	token, err := foreign.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorContains(t, err, "invalid token")
}

func Test_Adapter(t *testing.T) {
	ctx := context.Background()
	token, jti, err := jwtService.GenerateGrantorToken(ctx, grantorID)
	require.NoError(t, err)

	adapter := NewJWTServiceAdapter(jwtService)
	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, grantorID.String(), claims.GrantorID)
	assert.Equal(t, jti, claims.JTI)

	_, err = adapter.ValidateToken("garbage")
	require.Error(t, err)
}
