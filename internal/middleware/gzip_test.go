package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithGZIPGet(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		expectGzip     bool
	}{
		{"gzip accepted", "gzip", true},
		{"gzip among others", "br, gzip;q=0.8", true},
		{"no gzip accepted", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Length", "11")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("hello world"))
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Encoding", tt.acceptEncoding)

			rec := httptest.NewRecorder()
			WithGZIPGet(handler).ServeHTTP(rec, req)
			resp := rec.Result()
			defer resp.Body.Close()

			if !tt.expectGzip {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "hello world", string(body))
				assert.Empty(t, resp.Header.Get("Content-Encoding"))
				return
			}

			assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
			assert.Empty(t, resp.Header.Get("Content-Length"))

			gr, err := gzip.NewReader(resp.Body)
			require.NoError(t, err)
			defer gr.Close()
			unzipped, err := io.ReadAll(gr)
			require.NoError(t, err)
			assert.Equal(t, "hello world", string(unzipped))
		})
	}
}

func TestWithGZIPPost(t *testing.T) {
	t.Run("valid gzip request", func(t *testing.T) {
		var bodyBuf bytes.Buffer
		gzw := gzip.NewWriter(&bodyBuf)
		_, _ = gzw.Write([]byte(`{"slug":"report"}`))
		gzw.Close()

		req := httptest.NewRequest(http.MethodPost, "/", &bodyBuf)
		req.Header.Set("Content-Encoding", "gzip")

		rec := httptest.NewRecorder()
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, `{"slug":"report"}`, string(b))
			w.WriteHeader(http.StatusOK)
		})

		WithGZIPPost(handler).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid gzip request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip data"))
		req.Header.Set("Content-Encoding", "gzip")

		rec := httptest.NewRecorder()
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called on invalid gzip")
		})

		WithGZIPPost(handler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to decompress")
	})
}
