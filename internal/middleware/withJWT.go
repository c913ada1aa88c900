// Package middleware provides the HTTP middleware of the slug service:
// caller identity, request logging, gzip, metrics and the trusted subnet
// guard.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/models"
)

// ContextKey is a custom type used for keys in the context.
type ContextKey string

// UserIDKey is the key used to store and retrieve the user ID from the context.
const UserIDKey ContextKey = "userID"

// InjectUserID adds the user ID to the request context.
func InjectUserID(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	return req.WithContext(ctx)
}

// UserID returns the caller set by WithJWT, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// WithJWT rejects requests without a valid identity token with 401. The
// token is read from the Authorization header first, then from the "token"
// cookie.
func WithJWT(auth service.AuthIface, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				claims *service.Claims
				err    error
			)

			if raw := BearerToken(r.Header.Get("Authorization")); raw != "" {
				claims, err = auth.ParseRawJWT(raw)
			} else if cookie, cErr := r.Cookie("token"); cErr == nil {
				claims, err = auth.ParseClaims(cookie)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
				return
			}

			if err != nil {
				logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, InjectUserID(r, claims.Owner()))
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Code: code, Error: msg})
}
