package photocache

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite is a photo cache backed by modernc.org/sqlite. It survives process
// restarts, which matters for the photo endpoint's provider quota.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, ttl time.Duration) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "photocache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "photocache: exec %s", pragma)
		}
	}
	return &SQLite{db: db, ttl: ttl}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS photo_cache (
	id           TEXT PRIMARY KEY,
	cache_key    TEXT NOT NULL UNIQUE,
	data         BLOB NOT NULL,
	content_type TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_photo_cache_expires_at ON photo_cache(expires_at);
`

// Migrate creates the cache schema.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "photocache: migrate")
}

// Get retrieves a cached photo. Expired rows count as misses and are left
// for Purge to collect.
func (s *SQLite) Get(ctx context.Context, reference string, maxWidth int) (*Entry, bool) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data, content_type FROM photo_cache WHERE cache_key = ? AND expires_at > ?`,
		photoKey(reference, maxWidth), time.Now().UTC(),
	)

	var e Entry
	if err := row.Scan(&e.Data, &e.ContentType); err != nil {
		if err != sql.ErrNoRows {
			zap.L().Warn("photo cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return &e, true
}

// Put stores a photo, replacing any existing row for the same key.
func (s *SQLite) Put(ctx context.Context, reference string, maxWidth int, e Entry) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO photo_cache (id, cache_key, data, content_type, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   data = excluded.data,
		   content_type = excluded.content_type,
		   created_at = excluded.created_at,
		   expires_at = excluded.expires_at`,
		uuid.New().String(), photoKey(reference, maxWidth), e.Data, e.ContentType, now, now.Add(s.ttl),
	)
	if err != nil {
		zap.L().Warn("photo cache write failed", zap.Error(err))
	}
}

// Purge deletes expired rows and returns the number removed.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM photo_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "photocache: purge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "photocache: rows affected")
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
