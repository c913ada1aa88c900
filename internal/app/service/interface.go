package service

import (
	"context"

	"github.com/atinyakov/slugshare/internal/models"
	"github.com/atinyakov/slugshare/internal/storage"
)

type Storage interface {
	storage.Registry
}

// SlugServiceIface is what the HTTP and gRPC boundaries depend on.
type SlugServiceIface interface {
	CheckAvailability(ctx context.Context, slug, exclude string) (*models.CheckSlugResponse, error)
	ListSlugs(ctx context.Context, userID string) ([]storage.SlugRecord, error)
	CreateSlug(ctx context.Context, userID, slug, fileURL string) (*storage.SlugRecord, error)
	CreateFromUpload(ctx context.Context, userID, slug string, f FileUpload) (*storage.SlugRecord, error)
	RenameSlug(ctx context.Context, userID, id, slug string) (*storage.SlugRecord, error)
	DeleteSlug(ctx context.Context, userID, id string) (*storage.SlugRecord, error)
	Upload(ctx context.Context, userID string, f FileUpload) (string, error)
	Resolve(ctx context.Context, slug string) (*storage.SlugRecord, error)
	GetStats(ctx context.Context) (*storage.Stats, error)
	PingContext(ctx context.Context) error
}
