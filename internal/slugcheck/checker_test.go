package slugcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/models"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   []string
	taken   map[string]bool
	err     error
	blockOn string
}

func (f *fakeSource) Check(ctx context.Context, slug, exclude string) (bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slug)
	block := slug == f.blockOn
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	if f.err != nil {
		return false, f.err
	}
	return !f.taken[slug], nil
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestChecker_DebounceFiresOnce(t *testing.T) {
	src := &fakeSource{taken: map[string]bool{"report": true}}
	c := NewChecker(src, Options{Debounce: 30 * time.Millisecond}, zap.NewNop())
	defer c.Close()

	for _, typed := range []string{"r", "re", "rep", "repo", "repor", "report"} {
		c.Set(typed, "")
	}
	assert.Equal(t, StatusChecking, c.State().Status())

	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseResolved
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"report"}, src.Calls())
	assert.Equal(t, StatusTaken, c.State().Status())
}

func TestChecker_SupersededQueryIsCancelled(t *testing.T) {
	src := &fakeSource{blockOn: "slow"}
	c := NewChecker(src, Options{Debounce: 10 * time.Millisecond}, zap.NewNop())
	defer c.Close()

	c.Set("slow", "")
	require.Eventually(t, func() bool {
		return len(src.Calls()) == 1
	}, time.Second, 5*time.Millisecond)

	c.Set("fast", "")
	require.Eventually(t, func() bool {
		return c.State().Phase == PhaseResolved
	}, time.Second, 5*time.Millisecond)

	st := c.State()
	assert.Equal(t, "fast", st.Candidate)
	assert.Equal(t, StatusAvailable, st.Status())
}

func TestChecker_IneligibleMakesNoQuery(t *testing.T) {
	src := &fakeSource{}
	c := NewChecker(src, Options{Debounce: 10 * time.Millisecond}, zap.NewNop())
	defer c.Close()

	c.Set("mine", "mine")
	c.Set("a", "")
	c.Set("bad slug", "")

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, src.Calls())
	assert.Equal(t, StatusInvalid, c.State().Status())
}

func TestChecker_FailureResolvesToUnknown(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	c := NewChecker(src, Options{Debounce: 10 * time.Millisecond}, zap.NewNop())
	defer c.Close()

	c.Set("report", "")
	require.Eventually(t, func() bool {
		return len(src.Calls()) == 1 && c.State().Phase == PhaseIdle
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, c.State().Available)
}

func TestChecker_OnChange(t *testing.T) {
	var (
		mu       sync.Mutex
		statuses []Status
	)
	src := &fakeSource{}
	c := NewChecker(src, Options{
		Debounce: 10 * time.Millisecond,
		OnChange: func(s State) {
			mu.Lock()
			statuses = append(statuses, s.Status())
			mu.Unlock()
		},
	}, zap.NewNop())
	defer c.Close()

	c.Set("report", "")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(statuses) > 0 && statuses[len(statuses)-1] == StatusAvailable
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, StatusChecking, statuses[0])
	mu.Unlock()
}

func TestChecker_OnChangeBlockingKeepsSetFastAndOrdered(t *testing.T) {
	var (
		mu      sync.Mutex
		seen    []string
		release = make(chan struct{})
	)
	c := NewChecker(&fakeSource{}, Options{
		Debounce: time.Hour,
		OnChange: func(s State) {
			<-release
			mu.Lock()
			seen = append(seen, s.Candidate)
			mu.Unlock()
		},
	}, zap.NewNop())
	defer c.Close()

	typed := []string{"a", "ab", "abc", "abcd"}
	setDone := make(chan struct{})
	go func() {
		for _, v := range typed {
			c.Set(v, "")
		}
		close(setDone)
	}()

	select {
	case <-setDone:
	case <-time.After(time.Second):
		t.Fatal("Set waited for OnChange")
	}

	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == len(typed)
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, typed, seen)
}

func TestChecker_CloseStopsPendingTimer(t *testing.T) {
	src := &fakeSource{}
	c := NewChecker(src, Options{Debounce: 20 * time.Millisecond}, zap.NewNop())

	c.Set("report", "")
	c.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, src.Calls())
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{Code: "UNAUTHORIZED", Error: "Unauthorized"})
			return
		}
		assert.Equal(t, "/api/check-slug", r.URL.Path)
		slug := r.URL.Query().Get("slug")
		_ = json.NewEncoder(w).Encode(models.CheckSlugResponse{
			Available: slug != r.URL.Query().Get("exclude") && slug == "free",
			Slug:      slug,
		})
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", "tok")

	ok, err := src.Check(context.Background(), "free", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.Check(context.Background(), "taken", "old")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewHTTPSource(srv.URL, "").Check(context.Background(), "free", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
