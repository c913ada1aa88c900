// Package service implements slug availability checks and the reservation
// protocol: create, rename, delete and list slug bindings, plus file upload
// and public resolution.
//
// Uniqueness is decided by the registry's atomic insert-if-absent. Lookups
// done here only produce friendlier errors earlier; they never grant a slug.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/blob"
	"github.com/atinyakov/slugshare/internal/models"
	"github.com/atinyakov/slugshare/internal/slug"
	"github.com/atinyakov/slugshare/internal/storage"
)

const invalidSlugFormat = "Invalid slug format"

// FileUpload is one file received from a client.
type FileUpload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type SlugService struct {
	repository Storage
	blobs      blob.Store
	reap       chan<- string
	logger     *zap.Logger
	now        func() time.Time
}

// NewSlugService wires the registry and blob store. File URLs of deleted or
// rejected records are sent to reap when it is not nil.
func NewSlugService(repo Storage, blobs blob.Store, reap chan<- string, logger *zap.Logger) *SlugService {
	return &SlugService{
		repository: repo,
		blobs:      blobs,
		reap:       reap,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *SlugService) PingContext(ctx context.Context) error {
	return s.repository.PingContext(ctx)
}

// CheckAvailability reports whether candidate is free. A malformed candidate
// is reported as unavailable without a lookup; exclude names the caller's own
// current slug, which always counts as available.
func (s *SlugService) CheckAvailability(ctx context.Context, candidate, exclude string) (*models.CheckSlugResponse, error) {
	if candidate == "" {
		return nil, validationError("Slug parameter is required")
	}

	if err := slug.Validate(candidate); err != nil {
		return &models.CheckSlugResponse{Available: false, Slug: candidate, Error: invalidSlugFormat}, nil
	}

	if exclude != "" && candidate == exclude {
		return &models.CheckSlugResponse{Available: true, Slug: candidate}, nil
	}

	_, err := s.repository.FindBySlug(ctx, candidate)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &models.CheckSlugResponse{Available: true, Slug: candidate}, nil
	case err != nil:
		s.logger.Error("slug lookup failed", zap.String("slug", candidate), zap.Error(err))
		return nil, dependencyError("Failed to check slug availability", err)
	}

	return &models.CheckSlugResponse{Available: false, Slug: candidate}, nil
}

func (s *SlugService) ListSlugs(ctx context.Context, userID string) ([]storage.SlugRecord, error) {
	if userID == "" {
		return nil, &Error{Kind: KindUnauthorized, Msg: "Unauthorized"}
	}

	records, err := s.repository.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("list slugs failed", zap.String("user", userID), zap.Error(err))
		return nil, dependencyError("Failed to fetch slugs", err)
	}
	return records, nil
}

// CreateSlug binds fileURL to candidate for userID. Two concurrent calls for
// the same slug end with exactly one record; the loser gets a conflict.
func (s *SlugService) CreateSlug(ctx context.Context, userID, candidate, fileURL string) (*storage.SlugRecord, error) {
	if userID == "" {
		return nil, &Error{Kind: KindUnauthorized, Msg: "Unauthorized"}
	}
	if candidate == "" || fileURL == "" {
		return nil, validationError("Slug and file URL are required")
	}
	if err := slug.Validate(candidate); err != nil {
		return nil, slugFormatError(candidate, err)
	}

	return s.insert(ctx, "create", storage.SlugRecord{Slug: candidate, UserID: userID, FileURL: fileURL})
}

// CreateFromUpload stores f and binds it to candidate in one call. The slug is
// validated before anything is written; a blob orphaned by a conflict is
// handed to the reaper.
func (s *SlugService) CreateFromUpload(ctx context.Context, userID, candidate string, f FileUpload) (*storage.SlugRecord, error) {
	if userID == "" {
		return nil, &Error{Kind: KindUnauthorized, Msg: "Unauthorized"}
	}
	if candidate == "" {
		return nil, validationError("Slug and file are required")
	}
	if err := slug.Validate(candidate); err != nil {
		return nil, slugFormatError(candidate, err)
	}

	fileURL, err := s.Upload(ctx, userID, f)
	if err != nil {
		return nil, err
	}

	rec, err := s.insert(ctx, "submit", storage.SlugRecord{Slug: candidate, UserID: userID, FileURL: fileURL})
	if err != nil {
		s.reapFile(fileURL)
		return nil, err
	}
	return rec, nil
}

func (s *SlugService) insert(ctx context.Context, op string, r storage.SlugRecord) (*storage.SlugRecord, error) {
	rec, err := s.repository.Write(ctx, r)
	switch {
	case errors.Is(err, storage.ErrConflict):
		slugConflicts.WithLabelValues(op, "constraint").Inc()
		return nil, conflictError(r.Slug, err)
	case err != nil:
		s.logger.Error("slug insert failed", zap.String("slug", r.Slug), zap.Error(err))
		return nil, dependencyError("Failed to create slug", err)
	}

	s.logger.Info("slug created", zap.String("slug", rec.Slug), zap.String("id", rec.ID), zap.String("user", rec.UserID))
	return rec, nil
}

// RenameSlug changes the slug of record id. Renaming to the current slug is a
// no-op that keeps updatedAt unchanged.
func (s *SlugService) RenameSlug(ctx context.Context, userID, id, candidate string) (*storage.SlugRecord, error) {
	if userID == "" {
		return nil, &Error{Kind: KindUnauthorized, Msg: "Unauthorized"}
	}

	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if candidate == "" {
		return nil, validationError("Slug is required")
	}
	if err := slug.Validate(candidate); err != nil {
		return nil, slugFormatError(candidate, err)
	}
	if candidate == current.Slug {
		return current, nil
	}

	taken, err := s.repository.FindConflict(ctx, candidate, id)
	if err != nil {
		s.logger.Error("slug conflict lookup failed", zap.String("slug", candidate), zap.Error(err))
		return nil, dependencyError("Failed to update slug", err)
	}
	if taken {
		slugConflicts.WithLabelValues("rename", "precheck").Inc()
		return nil, conflictError(candidate, storage.ErrConflict)
	}

	updated, err := s.repository.UpdateSlug(ctx, id, userID, candidate, s.now())
	switch {
	case errors.Is(err, storage.ErrConflict):
		slugConflicts.WithLabelValues("rename", "constraint").Inc()
		return nil, conflictError(candidate, err)
	case errors.Is(err, storage.ErrNotFound):
		return nil, notFoundError(err)
	case err != nil:
		s.logger.Error("slug update failed", zap.String("id", id), zap.Error(err))
		return nil, dependencyError("Failed to update slug", err)
	}

	s.logger.Info("slug renamed", zap.String("id", id), zap.String("from", current.Slug), zap.String("to", updated.Slug))
	return updated, nil
}

// DeleteSlug removes record id and queues its file for reaping.
func (s *SlugService) DeleteSlug(ctx context.Context, userID, id string) (*storage.SlugRecord, error) {
	if userID == "" {
		return nil, &Error{Kind: KindUnauthorized, Msg: "Unauthorized"}
	}

	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	deleted, err := s.repository.Delete(ctx, id, userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, notFoundError(err)
	case err != nil:
		s.logger.Error("slug delete failed", zap.String("id", id), zap.Error(err))
		return nil, dependencyError("Failed to delete slug", err)
	}

	s.logger.Info("slug deleted", zap.String("id", id), zap.String("slug", deleted.Slug))
	s.reapFile(deleted.FileURL)
	return deleted, nil
}

// owned loads record id and checks it belongs to userID.
func (s *SlugService) owned(ctx context.Context, userID, id string) (*storage.SlugRecord, error) {
	if id == "" {
		return nil, notFoundError(storage.ErrNotFound)
	}

	rec, err := s.repository.FindByID(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, notFoundError(err)
	case err != nil:
		s.logger.Error("slug lookup by id failed", zap.String("id", id), zap.Error(err))
		return nil, dependencyError("Failed to load slug", err)
	}

	if rec.UserID != userID {
		return nil, forbiddenError()
	}
	return rec, nil
}

// Upload stores f and returns its public URL.
func (s *SlugService) Upload(ctx context.Context, userID string, f FileUpload) (string, error) {
	if userID == "" {
		return "", &Error{Kind: KindUnauthorized, Msg: "Unauthorized"}
	}
	if f.Body == nil {
		return "", validationError("No file provided")
	}
	if _, err := blob.Folder(f.ContentType); err != nil {
		return "", &Error{Kind: KindValidation, Msg: "Invalid file type. Only PDF and JPEG files are allowed.", Err: err}
	}

	fileURL, err := s.blobs.Put(ctx, f.Name, f.ContentType, f.Body)
	if err != nil {
		s.logger.Error("blob upload failed", zap.String("name", f.Name), zap.Error(err))
		return "", dependencyError("Failed to upload file", err)
	}
	return fileURL, nil
}

// Resolve finds the record published at candidate. Malformed slugs are never
// looked up.
func (s *SlugService) Resolve(ctx context.Context, candidate string) (*storage.SlugRecord, error) {
	if !slug.IsValidFormat(candidate) {
		return nil, notFoundError(storage.ErrNotFound)
	}

	rec, err := s.repository.FindBySlug(ctx, candidate)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, notFoundError(err)
	case err != nil:
		s.logger.Error("slug resolve failed", zap.String("slug", candidate), zap.Error(err))
		return nil, dependencyError("Failed to resolve slug", err)
	}
	return rec, nil
}

func (s *SlugService) GetStats(ctx context.Context) (*storage.Stats, error) {
	stats, err := s.repository.GetStats(ctx)
	if err != nil {
		return nil, dependencyError("Failed to collect stats", err)
	}
	return stats, nil
}

func (s *SlugService) reapFile(fileURL string) {
	if s.reap == nil || fileURL == "" {
		return
	}

	select {
	case s.reap <- fileURL:
	default:
		s.logger.Warn("reaper queue full, blob left behind", zap.String("url", fileURL))
	}
}
