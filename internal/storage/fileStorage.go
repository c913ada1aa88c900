package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileStorage is a MemoryStorage persisted as JSON lines. Every successful
// mutation rewrites the file through a temp file and an atomic rename; a
// failed write rolls the in-memory state back.
type FileStorage struct {
	mem    *MemoryStorage
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStorage opens (or creates) the file at p and loads its records.
func NewFileStorage(p string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0o770); err != nil {
		return nil, err
	}

	mem, _ := CreateMemoryStorage()
	fs := &FileStorage{mem: mem, path: p, logger: logger}

	records, err := fs.load()
	if err != nil {
		return nil, err
	}
	if err := mem.WriteAll(context.Background(), records); err != nil {
		return nil, fmt.Errorf("load %s: %w", p, err)
	}

	logger.Info("file storage loaded", zap.String("path", p), zap.Int("records", len(records)))
	return fs, nil
}

func (fs *FileStorage) load() ([]SlugRecord, error) {
	file, err := os.OpenFile(fs.path, os.O_RDONLY|os.O_CREATE, 0o660)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []SlugRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r SlugRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("failed to parse JSON line: %w", err)
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return records, nil
}

// flush rewrites the whole file, oldest record first.
func (fs *FileStorage) flush() error {
	records := fs.mem.snapshot()

	tmp := fs.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o660)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := len(records) - 1; i >= 0; i-- {
		if err := enc.Encode(records[i]); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, fs.path)
}

// mutate runs op against memory and persists the result.
func (fs *FileStorage) mutate(op func() (*SlugRecord, error)) (*SlugRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	before := fs.mem.snapshot()

	r, err := op()
	if err != nil {
		return nil, err
	}

	if err := fs.flush(); err != nil {
		fs.mem.restore(before)
		fs.logger.Error("cannot persist registry", zap.String("path", fs.path), zap.Error(err))
		return nil, fmt.Errorf("persist registry: %w", err)
	}

	return r, nil
}

func (fs *FileStorage) Write(ctx context.Context, r SlugRecord) (*SlugRecord, error) {
	return fs.mutate(func() (*SlugRecord, error) {
		return fs.mem.Write(ctx, r)
	})
}

// WriteAll inserts records and persists once. Nothing is kept on error.
func (fs *FileStorage) WriteAll(ctx context.Context, rs []SlugRecord) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	before := fs.mem.snapshot()
	if err := fs.mem.WriteAll(ctx, rs); err != nil {
		fs.mem.restore(before)
		return err
	}
	if err := fs.flush(); err != nil {
		fs.mem.restore(before)
		return err
	}
	return nil
}

func (fs *FileStorage) Read(ctx context.Context) ([]SlugRecord, error) {
	return fs.mem.Read(ctx)
}

func (fs *FileStorage) FindBySlug(ctx context.Context, slug string) (*SlugRecord, error) {
	return fs.mem.FindBySlug(ctx, slug)
}

func (fs *FileStorage) FindByID(ctx context.Context, id string) (*SlugRecord, error) {
	return fs.mem.FindByID(ctx, id)
}

func (fs *FileStorage) FindByUserID(ctx context.Context, userID string) ([]SlugRecord, error) {
	return fs.mem.FindByUserID(ctx, userID)
}

func (fs *FileStorage) FindConflict(ctx context.Context, slug, excludeID string) (bool, error) {
	return fs.mem.FindConflict(ctx, slug, excludeID)
}

func (fs *FileStorage) UpdateSlug(ctx context.Context, id, userID, slug string, at time.Time) (*SlugRecord, error) {
	return fs.mutate(func() (*SlugRecord, error) {
		return fs.mem.UpdateSlug(ctx, id, userID, slug, at)
	})
}

func (fs *FileStorage) Delete(ctx context.Context, id, userID string) (*SlugRecord, error) {
	return fs.mutate(func() (*SlugRecord, error) {
		return fs.mem.Delete(ctx, id, userID)
	})
}

func (fs *FileStorage) FileInUse(ctx context.Context, fileURL string) (bool, error) {
	return fs.mem.FileInUse(ctx, fileURL)
}

func (fs *FileStorage) GetStats(ctx context.Context) (*Stats, error) {
	return fs.mem.GetStats(ctx)
}

func (fs *FileStorage) PingContext(_ context.Context) error {
	return errors.ErrUnsupported
}

func (fs *FileStorage) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.flush()
}
