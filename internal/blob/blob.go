// Package blob stores uploaded documents and hands back the public URL they
// are served from.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNotOwned        = errors.New("url does not belong to this store")
)

// Store is the blob storage contract consumed by the upload and reaper code.
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, fileURL string) error
	Owns(fileURL string) bool
}

var allowedTypes = map[string]string{
	"application/pdf": "pdfs",
	"image/jpeg":      "images",
	"image/jpg":       "images",
}

// Folder returns the key prefix for an allowed content type.
func Folder(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	folder, ok := allowedTypes[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
	return folder, nil
}

// Key builds "{folder}/{unixmillis}-{uuid}-{name}".
func Key(folder, name string, at time.Time) string {
	return fmt.Sprintf("%s/%d-%s-%s", folder, at.UnixMilli(), uuid.NewString(), sanitizeName(name))
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// IsImage decides between inline <img> and <iframe> rendering.
func IsImage(fileURL string) bool {
	u := strings.ToLower(fileURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch path.Ext(u) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
