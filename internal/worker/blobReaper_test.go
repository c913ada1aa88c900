package worker_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atinyakov/slugshare/internal/worker"
)

type MockRepo struct {
	mu     sync.Mutex
	inUse  map[string]bool
	failOn string
}

func (m *MockRepo) FileInUse(_ context.Context, url string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if url == m.failOn {
		return false, errors.New("forced failure")
	}
	return m.inUse[url], nil
}

type MockBlobs struct {
	mu      sync.Mutex
	deleted []string
	calls   int
}

func (m *MockBlobs) Owns(url string) bool {
	return strings.HasPrefix(url, "local/")
}

func (m *MockBlobs) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *MockBlobs) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func testLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	return logger
}

func start(t *testing.T, r *worker.BlobReaper) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.FlushBlobs(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestFlushBlobs_BatchTrigger(t *testing.T) {
	repo := &MockRepo{}
	blobs := &MockBlobs{}

	reaper := worker.NewBlobReaper(testLogger(), repo, blobs, time.Hour)
	in := reaper.GetInChannel()
	start(t, reaper)

	// More than a batch flushes without waiting for the ticker
	for i := 0; i < 26; i++ {
		in <- "local/" + string(rune('a'+i))
	}

	require.Eventually(t, func() bool {
		return len(blobs.Deleted()) == 26
	}, time.Second, 10*time.Millisecond)
}

func TestFlushBlobs_TimerTrigger(t *testing.T) {
	repo := &MockRepo{}
	blobs := &MockBlobs{}

	reaper := worker.NewBlobReaper(testLogger(), repo, blobs, 20*time.Millisecond)
	in := reaper.GetInChannel()
	start(t, reaper)

	in <- "local/abc"
	in <- "local/def"
	in <- "local/abc"

	require.Eventually(t, func() bool {
		return len(blobs.Deleted()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"local/abc", "local/def"}, blobs.Deleted())
}

func TestFlushBlobs_SkipsUsedForeignAndFailing(t *testing.T) {
	repo := &MockRepo{
		inUse:  map[string]bool{"local/shared": true},
		failOn: "local/broken",
	}
	blobs := &MockBlobs{}

	reaper := worker.NewBlobReaper(testLogger(), repo, blobs, 20*time.Millisecond)
	in := reaper.GetInChannel()
	start(t, reaper)

	in <- "local/shared"
	in <- "https://cdn.example.com/x.pdf"
	in <- "local/broken"
	in <- "local/orphan"

	require.Eventually(t, func() bool {
		return len(blobs.Deleted()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"local/orphan"}, blobs.Deleted())
}

func TestFlushBlobs_DrainsOnShutdown(t *testing.T) {
	blobs := &MockBlobs{}
	reaper := worker.NewBlobReaper(testLogger(), &MockRepo{}, blobs, time.Hour)
	in := reaper.GetInChannel()

	in <- "local/late"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reaper.FlushBlobs(ctx)

	assert.Equal(t, []string{"local/late"}, blobs.Deleted())
}
