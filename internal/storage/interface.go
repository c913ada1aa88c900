// Package storage holds the slug registry model and the registries that do
// not need an external database: an in-memory one and a JSON file one.
//
// Every registry must enforce slug uniqueness atomically inside Write and
// UpdateSlug and report a violation as ErrConflict. Callers rely on that
// signal, not on earlier lookups, to decide who owns a slug.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrConflict reports a unique constraint violation on the slug.
	ErrConflict = errors.New("data conflict")
	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("not found")
)

// Registry is the contract shared by the memory, file and PostgreSQL registries.
type Registry interface {
	Write(ctx context.Context, r SlugRecord) (*SlugRecord, error)
	FindBySlug(ctx context.Context, slug string) (*SlugRecord, error)
	FindByID(ctx context.Context, id string) (*SlugRecord, error)
	FindByUserID(ctx context.Context, userID string) ([]SlugRecord, error)
	FindConflict(ctx context.Context, slug, excludeID string) (bool, error)
	UpdateSlug(ctx context.Context, id, userID, slug string, at time.Time) (*SlugRecord, error)
	Delete(ctx context.Context, id, userID string) (*SlugRecord, error)
	FileInUse(ctx context.Context, fileURL string) (bool, error)
	GetStats(ctx context.Context) (*Stats, error)
	PingContext(ctx context.Context) error
	Close() error
}
