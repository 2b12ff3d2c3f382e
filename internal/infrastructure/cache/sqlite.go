package cache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/labelscan/labelscan/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteCache is a persistent record cache backed by a single SQLite file
type SQLiteCache struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteCache opens (or creates) the cache database at path and applies migrations
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	if path == "" {
		return nil, errors.New("sqlite cache path is required")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &SQLiteCache{db: db, path: path, now: time.Now}
	if err := c.migrate(migrationsFS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Path returns the database file path
func (c *SQLiteCache) Path() string {
	return c.path
}

// Close closes the database connection
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Get retrieves a record that has not expired
func (c *SQLiteCache) Get(ctx context.Context, key string) (*domain.EnrichmentRecord, error) {
	var data string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT data, expires_at FROM enrichment_cache WHERE key = ?", key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	if c.now().UnixNano() > expiresAt {
		return nil, domain.ErrCacheMiss
	}

	var record domain.EnrichmentRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("decoding cached record: %w", err)
	}
	return &record, nil
}

// Set stores record with TTL, replacing any previous entry
func (c *SQLiteCache) Set(ctx context.Context, key string, record *domain.EnrichmentRecord, ttl time.Duration) error {
	if record == nil {
		return domain.ErrInvalidRequest
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	now := c.now()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO enrichment_cache (key, data, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, key, string(data), now.Add(ttl).UnixNano(), now.UnixNano())
	if err != nil {
		return fmt.Errorf("storing record: %w", err)
	}
	return nil
}

// Delete removes a record
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM enrichment_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// Exists checks if a non-expired record exists
func (c *SQLiteCache) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		"SELECT 1 FROM enrichment_cache WHERE key = ? AND expires_at >= ?", key, c.now().UnixNano(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying cache: %w", err)
	}
	return true, nil
}

// PurgeExpired deletes expired rows and returns how many were removed
func (c *SQLiteCache) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM enrichment_cache WHERE expires_at < ?", c.now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

// migrate applies every NNN_*.sql file newer than the recorded schema version
func (c *SQLiteCache) migrate(fsys embed.FS) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := entry.Name()
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= currentVersion {
			continue
		}

		script, err := fs.ReadFile(fsys, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := c.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(script)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}
