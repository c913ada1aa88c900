// Package models defines the request and response bodies exchanged with the
// slug service. Each operation has its own schema; handlers decode into these
// and never into storage types.
package models

import "time"

// Slug is the public view of a slug record.
type Slug struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	FileURL   string    `json:"fileUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CheckSlugResponse answers GET /api/check-slug. Error is set only when the
// candidate is malformed.
type CheckSlugResponse struct {
	Available bool   `json:"available"`
	Slug      string `json:"slug"`
	Error     string `json:"error,omitempty"`
}

// CreateSlugRequest binds an already uploaded file to a slug.
type CreateSlugRequest struct {
	Slug    string `json:"slug"`
	FileURL string `json:"fileUrl"`
}

// RenameSlugRequest changes the slug of an existing record.
type RenameSlugRequest struct {
	Slug string `json:"slug"`
}

// SlugResponse wraps a single record.
type SlugResponse struct {
	Data Slug `json:"data"`
}

// ListSlugsResponse lists the caller's records, newest first.
type ListSlugsResponse struct {
	Slugs []Slug `json:"slugs"`
}

// MessageResponse confirms an operation without a body of its own.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse returns where an uploaded file can be fetched from.
type UploadResponse struct {
	FileURL string `json:"fileUrl"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
	Slug  string `json:"slug,omitempty"`
}

// StatsResponse is served to the trusted subnet only.
type StatsResponse struct {
	Slugs int `json:"slugs"`
	Users int `json:"users"`
}
