package service_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/slugshare/internal/app/service"
)

const testSecret = "test-secret"

func TestBuildJWTString(t *testing.T) {
	auth := service.NewAuth(testSecret)

	tokenStr, err := auth.BuildJWTString("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	// Decode token to verify claims
	token, err := jwt.ParseWithClaims(tokenStr, &service.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*service.Claims)
	require.True(t, ok)
	require.Equal(t, "user-1", claims.Owner())
	require.WithinDuration(t, time.Now().Add(service.TokenExp), claims.ExpiresAt.Time, time.Minute)

	_, err = auth.BuildJWTString("")
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestParseClaims(t *testing.T) {
	auth := service.NewAuth(testSecret)

	t.Run("valid token", func(t *testing.T) {
		signed, err := auth.BuildJWTString("test-user-id")
		require.NoError(t, err)

		claims, err := auth.ParseClaims(&http.Cookie{Name: "token", Value: signed})
		require.NoError(t, err)
		require.Equal(t, "test-user-id", claims.Owner())
	})

	t.Run("sub only", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "from-sub",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		claims, err := auth.ParseRawJWT(signed)
		require.NoError(t, err)
		require.Equal(t, "from-sub", claims.Owner())
	})

	t.Run("invalid token", func(t *testing.T) {
		claims, err := auth.ParseClaims(&http.Cookie{Name: "token", Value: "invalid.token.here"})
		require.ErrorIs(t, err, service.ErrInvalidToken)
		require.Nil(t, claims)
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed, err := service.NewAuth("other").BuildJWTString("u")
		require.NoError(t, err)

		_, err = auth.ParseRawJWT(signed)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
			UserID:           "u",
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = auth.ParseRawJWT(signed)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("no subject", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = auth.ParseRawJWT(signed)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("nil cookie", func(t *testing.T) {
		_, err := auth.ParseClaims(nil)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
