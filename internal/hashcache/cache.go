package hashcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Cache stores page fingerprints backed by SQLite.
type Cache struct {
	db   *sql.DB
	path string
}

// Key identifies one version of an archive on disk.
type Key struct {
	Path    string
	Size    int64
	ModTime int64 // nanoseconds since the Unix epoch
}

// KeyFor stats path and returns its current key.
func KeyFor(path string) (Key, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Key{}, err
	}
	return Key{Path: path, Size: info.Size(), ModTime: info.ModTime().UnixNano()}, nil
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open creates or connects to the cache database at path.
func Open(path string) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("open hash cache: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create hash cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: path}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database file location.
func (c *Cache) Path() string { return c.path }

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the stored fingerprints for key by page index. Rows written
// for a different size or modification time are ignored, so the result is
// empty for archives that changed since they were hashed.
func (c *Cache) Lookup(ctx context.Context, key Key) (map[int]string, error) {
	hashes := make(map[int]string)
	err := retryOnBusy(ctx, func() error {
		clear(hashes)
		rows, err := c.db.QueryContext(ctx,
			`SELECT page_index, hash FROM page_hashes WHERE path = ? AND size = ? AND mtime_ns = ?`,
			key.Path, key.Size, key.ModTime,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				index int
				hash  string
			)
			if err := rows.Scan(&index, &hash); err != nil {
				return err
			}
			hashes[index] = hash
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("lookup hashes for %s: %w", key.Path, err)
	}
	return hashes, nil
}

// Put replaces every stored row for key.Path with hashes.
func (c *Cache) Put(ctx context.Context, key Key, hashes map[int]string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOnBusy(ctx, func() error {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM page_hashes WHERE path = ?`, key.Path); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO page_hashes (path, size, mtime_ns, page_index, hash, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for index, hash := range hashes {
			if _, err := stmt.ExecContext(ctx, key.Path, key.Size, key.ModTime, index, hash, now); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("store hashes for %s: %w", key.Path, err)
	}
	return nil
}

// Forget drops every row stored for path.
func (c *Cache) Forget(ctx context.Context, path string) error {
	err := retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, `DELETE FROM page_hashes WHERE path = ?`, path)
		return err
	})
	if err != nil {
		return fmt.Errorf("forget hashes for %s: %w", path, err)
	}
	return nil
}

// Prune drops rows for archives that no longer exist or changed on disk and
// returns the number of paths removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	type stamp struct {
		path    string
		size    int64
		modTime int64
	}
	var stamps []stamp
	err := retryOnBusy(ctx, func() error {
		stamps = stamps[:0]
		rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT path, size, mtime_ns FROM page_hashes`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var s stamp
			if err := rows.Scan(&s.path, &s.size, &s.modTime); err != nil {
				return err
			}
			stamps = append(stamps, s)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("list cached paths: %w", err)
	}

	removed := 0
	for _, s := range stamps {
		key, err := KeyFor(s.path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// archive is gone
		case err != nil:
			continue
		case key.Size == s.size && key.ModTime == s.modTime:
			continue
		}
		if err := c.Forget(ctx, s.path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Count returns the number of stored page rows.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var count int
	err := retryOnBusy(ctx, func() error {
		return c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM page_hashes`).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("count hashes: %w", err)
	}
	return count, nil
}
