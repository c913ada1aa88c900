package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps the registry in process memory. A single mutex makes
// the slug index check and the insert one critical section, which is what
// gives Write its insert-if-absent semantics.
type MemoryStorage struct {
	mu     sync.RWMutex
	byID   map[string]*memoryRecord
	bySlug map[string]string
	seq    uint64
	now    func() time.Time
}

type memoryRecord struct {
	SlugRecord
	seq uint64
}

// CreateMemoryStorage returns an empty registry.
func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		byID:   make(map[string]*memoryRecord),
		bySlug: make(map[string]string),
		now:    time.Now,
	}, nil
}

func (m *MemoryStorage) Write(_ context.Context, r SlugRecord) (*SlugRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.bySlug[r.Slug]; taken {
		return nil, ErrConflict
	}

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if _, exists := m.byID[r.ID]; exists {
		return nil, errors.New("duplicate id")
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	m.seq++
	m.byID[r.ID] = &memoryRecord{SlugRecord: r, seq: m.seq}
	m.bySlug[r.Slug] = r.ID

	out := r
	return &out, nil
}

// WriteAll loads records as-is, keeping their ids and timestamps.
func (m *MemoryStorage) WriteAll(ctx context.Context, rs []SlugRecord) error {
	for _, r := range rs {
		if _, err := m.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStorage) Read(_ context.Context) ([]SlugRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(func(*memoryRecord) bool { return true }), nil
}

func (m *MemoryStorage) FindBySlug(_ context.Context, slug string) (*SlugRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	out := m.byID[id].SlugRecord
	return &out, nil
}

func (m *MemoryStorage) FindByID(_ context.Context, id string) (*SlugRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r.SlugRecord
	return &out, nil
}

// FindByUserID returns the user's records, newest first.
func (m *MemoryStorage) FindByUserID(_ context.Context, userID string) ([]SlugRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(func(r *memoryRecord) bool { return r.UserID == userID }), nil
}

func (m *MemoryStorage) FindConflict(_ context.Context, slug, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	return ok && id != excludeID, nil
}

func (m *MemoryStorage) UpdateSlug(_ context.Context, id, userID, slug string, at time.Time) (*SlugRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	if holder, taken := m.bySlug[slug]; taken && holder != id {
		return nil, ErrConflict
	}

	delete(m.bySlug, r.Slug)
	r.Slug = slug
	r.UpdatedAt = at.UTC()
	m.bySlug[slug] = id

	out := r.SlugRecord
	return &out, nil
}

func (m *MemoryStorage) Delete(_ context.Context, id, userID string) (*SlugRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}

	delete(m.byID, id)
	delete(m.bySlug, r.Slug)

	out := r.SlugRecord
	return &out, nil
}

func (m *MemoryStorage) FileInUse(_ context.Context, fileURL string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.byID {
		if r.FileURL == fileURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStorage) GetStats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make(map[string]struct{})
	for _, r := range m.byID {
		if r.UserID != "" {
			users[r.UserID] = struct{}{}
		}
	}

	return &Stats{Slugs: len(m.byID), Users: len(users)}, nil
}

func (m *MemoryStorage) PingContext(_ context.Context) error {
	return errors.ErrUnsupported
}

func (m *MemoryStorage) Close() error {
	return nil
}

// snapshot and restore let FileStorage roll back a mutation it failed to persist.
func (m *MemoryStorage) snapshot() []SlugRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sorted(func(*memoryRecord) bool { return true })
}

func (m *MemoryStorage) restore(rs []SlugRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID = make(map[string]*memoryRecord, len(rs))
	m.bySlug = make(map[string]string, len(rs))
	// rs is newest first; replay oldest first to keep the sequence order.
	for i := len(rs) - 1; i >= 0; i-- {
		m.seq++
		m.byID[rs[i].ID] = &memoryRecord{SlugRecord: rs[i], seq: m.seq}
		m.bySlug[rs[i].Slug] = rs[i].ID
	}
}

// sorted must be called with the lock held.
func (m *MemoryStorage) sorted(keep func(*memoryRecord) bool) []SlugRecord {
	picked := make([]*memoryRecord, 0)
	for _, r := range m.byID {
		if keep(r) {
			picked = append(picked, r)
		}
	}

	sort.Slice(picked, func(i, j int) bool {
		if !picked[i].CreatedAt.Equal(picked[j].CreatedAt) {
			return picked[i].CreatedAt.After(picked[j].CreatedAt)
		}
		return picked[i].seq > picked[j].seq
	})

	out := make([]SlugRecord, 0, len(picked))
	for _, r := range picked {
		out = append(out, r.SlugRecord)
	}
	return out
}
