package slugcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/slugshare/internal/models"
)

// HTTPSource queries GET /api/check-slug of a slugshare server.
type HTTPSource struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPSource(baseURL, token string) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *HTTPSource) Check(ctx context.Context, slug, exclude string) (bool, error) {
	q := url.Values{"slug": {slug}}
	if exclude != "" {
		q.Set("exclude", exclude)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/api/check-slug?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return false, fmt.Errorf("check-slug: %s %s", resp.Status, e.Error)
	}

	var out models.CheckSlugResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("check-slug: decode: %w", err)
	}

	return out.Available, nil
}
