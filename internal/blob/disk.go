package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DiskStore keeps blobs under a local directory and serves them at
// {baseURL}/files/{key}.
type DiskStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

func NewDiskStore(dir, baseURL string, logger *zap.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	return &DiskStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (d *DiskStore) prefix() string {
	return d.baseURL + "/files/"
}

// Put writes r to a temp file and renames it into place.
func (d *DiskStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	folder, err := Folder(contentType)
	if err != nil {
		return "", err
	}

	key := Key(folder, name, d.now())
	target := filepath.Join(d.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}

	d.logger.Info("blob stored", zap.String("key", key))
	return d.prefix() + key, nil
}

func (d *DiskStore) Owns(fileURL string) bool {
	return strings.HasPrefix(fileURL, d.prefix())
}

// Delete removes the blob behind fileURL. A missing file is not an error.
func (d *DiskStore) Delete(_ context.Context, fileURL string) error {
	if !d.Owns(fileURL) {
		return ErrNotOwned
	}

	key := strings.TrimPrefix(fileURL, d.prefix())
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("bad blob key %q", key)
	}

	err := os.Remove(filepath.Join(d.dir, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Handler serves stored blobs; mount it under /files/.
func (d *DiskStore) Handler() http.Handler {
	return http.StripPrefix("/files/", http.FileServer(noDirFS{http.Dir(d.dir)}))
}

type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
