package duplicates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"comictag/internal/comic"
	"comictag/internal/hashcache"
	"comictag/internal/logging"
)

// Opener wraps a path in a Comic.
type Opener func(path string) *comic.Comic

// Failure records a page or archive that could not be fingerprinted. Index is
// -1 when the failure concerns the whole archive.
type Failure struct {
	Path  string
	Index int
	Err   error
}

func (f Failure) Error() string {
	if f.Index < 0 {
		return fmt.Sprintf("%s: %v", f.Path, f.Err)
	}
	return fmt.Sprintf("%s page %d: %v", f.Path, f.Index, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Collector fingerprints every page of a set of archives.
type Collector struct {
	Logger *slog.Logger
	// Cache, when set, supplies fingerprints of unchanged archives and
	// stores newly computed ones.
	Cache *hashcache.Cache
	// Progress, when set, is called after each archive.
	Progress func(done, total int)
}

// Collect fingerprints the pages of comics in order. Read-only archives are
// skipped. Pages that cannot be read or decoded are reported as failures and
// left out of the table; they never stop the scan.
func (c *Collector) Collect(ctx context.Context, comics []*comic.Comic) (*Table, []Failure) {
	logger := logging.NewComponentLogger(c.Logger, "duplicates")
	table := NewTable()
	var failures []Failure

	for i, cm := range comics {
		if err := ctx.Err(); err != nil {
			failures = append(failures, Failure{Path: cm.Path(), Index: -1, Err: err})
			break
		}
		table.comics++
		failures = append(failures, c.collectOne(ctx, logger, cm, table)...)
		if c.Progress != nil {
			c.Progress(i+1, len(comics))
		}
	}

	logger.Info("page fingerprints collected",
		logging.String(logging.FieldEventType, "hashes_collected"),
		logging.Int("comics", table.comics),
		logging.Int("pages", table.Len()),
		logging.Int("failures", len(failures)),
	)
	return table, failures
}

func (c *Collector) collectOne(ctx context.Context, logger *slog.Logger, cm *comic.Comic, table *Table) []Failure {
	path := cm.Path()
	logger = logger.With(logging.String(logging.FieldComic, path))

	if !cm.IsWritable() {
		logging.WarnWithContext(logger, "archive not writable, skipping", "archive_read_only",
			logging.String(logging.FieldErrorHint, "check file permissions and that the file is a cbz"),
		)
		return nil
	}
	count := cm.NumberOfPages()
	if count == 0 {
		return nil
	}

	var (
		key    hashcache.Key
		cached map[int]string
	)
	if c.Cache != nil {
		var err error
		if key, err = hashcache.KeyFor(path); err == nil {
			cached, err = c.Cache.Lookup(ctx, key)
		}
		if err != nil {
			logger.Debug("hash cache lookup failed", logging.Error(err))
			key = hashcache.Key{}
		}
	}

	var failures []Failure
	computed := make(map[int]string, count)
	for idx := 0; idx < count; idx++ {
		hash, ok := cached[idx]
		if !ok {
			data, err := cm.Page(idx)
			if err == nil {
				hash, err = Fingerprint(data)
			}
			if err != nil {
				impact := "page left out of duplicate review"
				if errors.Is(err, ErrDecode) {
					impact = "undecodable page left out of duplicate review"
				}
				logging.WarnWithContext(logger, "page not fingerprinted", "page_hash_failed",
					logging.Int(logging.FieldPage, idx),
					logging.Error(err),
					logging.String(logging.FieldImpact, impact),
				)
				failures = append(failures, Failure{Path: path, Index: idx, Err: err})
				continue
			}
		}
		computed[idx] = hash
		table.Add(Row{Path: path, Index: idx, Hash: hash})
	}

	if c.Cache != nil && key.Path != "" && len(computed) != len(cached) {
		if err := c.Cache.Put(ctx, key, computed); err != nil {
			logger.Debug("hash cache store failed", logging.Error(err))
		}
	}
	return failures
}

// Representative returns the first row of hash and its page bytes, for
// showing the shared image during review.
func Representative(table *Table, hash string, open Opener) (Row, []byte, error) {
	group := table.Group(hash)
	if len(group) == 0 {
		return Row{}, nil, fmt.Errorf("no pages with fingerprint %s", hash)
	}
	row := group[0]
	data, err := open(row.Path).Page(row.Index)
	if err != nil {
		return row, nil, err
	}
	return row, data, nil
}
