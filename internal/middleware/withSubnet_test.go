package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithSubnet(t *testing.T) {
	tests := []struct {
		name   string
		subnet string
		ip     string
		want   int
	}{
		{"inside", "192.168.1.0/24", "192.168.1.42", http.StatusOK},
		{"outside", "192.168.1.0/24", "192.168.2.1", http.StatusForbidden},
		{"prefix string is not a match", "10.0.0.0/8", "110.0.0.1", http.StatusForbidden},
		{"missing header", "192.168.1.0/24", "", http.StatusForbidden},
		{"garbage header", "192.168.1.0/24", "not-an-ip", http.StatusForbidden},
		{"no subnet configured", "", "192.168.1.1", http.StatusForbidden},
		{"bad subnet configured", "192.168.1.1", "192.168.1.1", http.StatusForbidden},
		{"ipv6", "fd00::/8", "fd00::1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			if tt.ip != "" {
				req.Header.Set("X-Real-IP", tt.ip)
			}
			rec := httptest.NewRecorder()

			WithSubnet(tt.subnet, zap.NewNop())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want == http.StatusOK, called)
		})
	}
}
