package middleware

import (
	"net"
	"net/http"

	"go.uber.org/zap"
)

// WithSubnet lets a request through only when its X-Real-IP lies inside the
// trusted CIDR. An empty or unparsable subnet closes the route entirely.
func WithSubnet(subnet string, logger *zap.Logger) func(next http.Handler) http.Handler {
	var trusted *net.IPNet
	if subnet != "" {
		_, ipNet, err := net.ParseCIDR(subnet)
		if err != nil {
			logger.Error("invalid trusted subnet, internal routes are closed", zap.String("subnet", subnet), zap.Error(err))
		} else {
			trusted = ipNet
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := net.ParseIP(r.Header.Get("X-Real-IP"))
			if trusted == nil || ip == nil || !trusted.Contains(ip) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
