package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AuthIface verifies identity tokens issued by the identity provider.
type AuthIface interface {
	BuildJWTString(userID string) (string, error)
	ParseClaims(c *http.Cookie) (*Claims, error)
	ParseRawJWT(tokenString string) (*Claims, error)
}

// Claims carries the caller identity. Tokens that only set the registered
// "sub" claim are accepted too.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// Owner returns the user id the token was issued for.
func (c *Claims) Owner() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// TokenExp is the lifetime of tokens minted by BuildJWTString.
const TokenExp = time.Hour * 24

var ErrInvalidToken = errors.New("invalid token")

// Auth checks HS256 tokens signed with a shared secret.
type Auth struct {
	secret []byte
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// BuildJWTString mints a token for userID. The service only verifies tokens;
// minting is for tests and local tooling.
func (a *Auth) BuildJWTString(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidToken)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
		},
		UserID: userID,
	})

	return token.SignedString(a.secret)
}

func (a *Auth) ParseClaims(c *http.Cookie) (*Claims, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: no cookie", ErrInvalidToken)
	}
	return a.ParseRawJWT(c.Value)
}

func (a *Auth) ParseRawJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Owner() == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
