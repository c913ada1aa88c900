// Package repository implements the slug registry on PostgreSQL. The
// slug_records_slug_key unique index is the only thing that decides which of
// two concurrent writers gets a slug; this package turns its violation into
// storage.ErrConflict.
package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const columns = "id, slug, user_id, file_url, created_at, updated_at"

// InitDB opens the pool, checks the connection and applies migrations.
func InitDB(ctx context.Context, dsn string, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the embedded migrations. The migrate instance is not
// closed: its driver would close the shared *sql.DB.
func Migrate(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("migrations init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations up: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

type SlugRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateSlugRepository(db *sql.DB, logger *zap.Logger) *SlugRepository {
	return &SlugRepository{
		db:     db,
		logger: logger,
	}
}

// isCode reports whether err carries one of the given SQLSTATE codes.
func isCode(err error, codes ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	for _, c := range codes {
		if pgErr.Code == c {
			return true
		}
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*storage.SlugRecord, error) {
	var r storage.SlugRecord
	if err := row.Scan(&r.ID, &r.Slug, &r.UserID, &r.FileURL, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// Write inserts the record; a taken slug is reported as storage.ErrConflict.
func (r *SlugRepository) Write(ctx context.Context, v storage.SlugRecord) (*storage.SlugRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO slug_records (slug, user_id, file_url) VALUES ($1, $2, $3) RETURNING "+columns+";",
		v.Slug, v.UserID, v.FileURL,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if isCode(err, pgerrcode.UniqueViolation) {
			r.logger.Info("slug already taken", zap.String("slug", v.Slug))
			return nil, storage.ErrConflict
		}
		return nil, fmt.Errorf("insert slug %q: %w", v.Slug, err)
	}

	return rec, nil
}

func (r *SlugRepository) findOne(ctx context.Context, query string, arg string) (*storage.SlugRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) || isCode(err, pgerrcode.InvalidTextRepresentation) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *SlugRepository) FindBySlug(ctx context.Context, slug string) (*storage.SlugRecord, error) {
	return r.findOne(ctx, "SELECT "+columns+" FROM slug_records WHERE slug = $1;", slug)
}

// FindByID treats a malformed uuid as a missing record.
func (r *SlugRepository) FindByID(ctx context.Context, id string) (*storage.SlugRecord, error) {
	return r.findOne(ctx, "SELECT "+columns+" FROM slug_records WHERE id = $1;", id)
}

func (r *SlugRepository) FindByUserID(ctx context.Context, userID string) ([]storage.SlugRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+columns+" FROM slug_records WHERE user_id = $1 ORDER BY created_at DESC, id;",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]storage.SlugRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *SlugRepository) FindConflict(ctx context.Context, slug, excludeID string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM slug_records WHERE slug = $1 AND id::text <> $2);",
		slug, excludeID,
	).Scan(&taken)
	return taken, err
}

// UpdateSlug renames a record owned by userID. The unique index still guards
// the new slug against a writer that slipped in after the caller's pre-check.
func (r *SlugRepository) UpdateSlug(ctx context.Context, id, userID, slug string, at time.Time) (*storage.SlugRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE slug_records SET slug = $1, updated_at = $2 WHERE id = $3 AND user_id = $4 RETURNING "+columns+";",
		slug, at.UTC(), id, userID,
	)

	rec, err := scanRecord(row)
	switch {
	case err == nil:
		return rec, nil
	case isCode(err, pgerrcode.UniqueViolation):
		return nil, storage.ErrConflict
	case errors.Is(err, sql.ErrNoRows), isCode(err, pgerrcode.InvalidTextRepresentation):
		return nil, storage.ErrNotFound
	default:
		return nil, fmt.Errorf("update slug %q: %w", id, err)
	}
}

func (r *SlugRepository) Delete(ctx context.Context, id, userID string) (*storage.SlugRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"DELETE FROM slug_records WHERE id = $1 AND user_id = $2 RETURNING "+columns+";",
		id, userID,
	)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) || isCode(err, pgerrcode.InvalidTextRepresentation) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete slug %q: %w", id, err)
	}
	return rec, nil
}

func (r *SlugRepository) FileInUse(ctx context.Context, fileURL string) (bool, error) {
	var used bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM slug_records WHERE file_url = $1);",
		fileURL,
	).Scan(&used)
	return used, err
}

func (r *SlugRepository) GetStats(ctx context.Context) (*storage.Stats, error) {
	var s storage.Stats
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT user_id) FROM slug_records;",
	).Scan(&s.Slugs, &s.Users)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SlugRepository) PingContext(c context.Context) error {
	return r.db.PingContext(c)
}

func (r *SlugRepository) Close() error {
	return r.db.Close()
}
