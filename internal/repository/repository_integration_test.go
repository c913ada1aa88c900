//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/storage"
)

func setupPostgres(t *testing.T) *SlugRepository {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("slugshare_test"),
		postgres.WithUsername("slugshare"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := InitDB(ctx, dsn, zap.NewNop())
	require.NoError(t, err)

	// Second run is a no-op.
	require.NoError(t, Migrate(db, zap.NewNop()))

	repo := CreateSlugRepository(db, zap.NewNop())
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPostgres_ConcurrentCreateSameSlug(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	const writers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Write(ctx, storage.SlugRecord{Slug: "report", UserID: "user", FileURL: "f"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, storage.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, conflicts)
}

func TestPostgres_RenameAndDelete(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	a, err := repo.Write(ctx, storage.SlugRecord{Slug: "a", UserID: "u1", FileURL: "fa"})
	require.NoError(t, err)
	assert.True(t, a.CreatedAt.Equal(a.UpdatedAt))

	_, err = repo.Write(ctx, storage.SlugRecord{Slug: "b", UserID: "u2", FileURL: "fb"})
	require.NoError(t, err)

	_, err = repo.UpdateSlug(ctx, a.ID, "u1", "b", time.Now())
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = repo.UpdateSlug(ctx, a.ID, "u2", "c", time.Now())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	renamed, err := repo.UpdateSlug(ctx, a.ID, "u1", "c", time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "c", renamed.Slug)
	assert.True(t, renamed.UpdatedAt.After(renamed.CreatedAt))

	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.Delete(ctx, a.ID, "u1")
	require.NoError(t, err)

	used, err := repo.FileInUse(ctx, "fa")
	require.NoError(t, err)
	assert.False(t, used)
}

func TestPostgres_RejectsMalformedSlug(t *testing.T) {
	repo := setupPostgres(t)

	_, err := repo.Write(context.Background(), storage.SlugRecord{Slug: "has space", UserID: "u", FileURL: "f"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrConflict)
}
