package duplicates

import (
	"context"
	"log/slog"
	"os"

	"comictag/internal/comic"
	"comictag/internal/hashcache"
	"comictag/internal/logging"
)

// RemoveOptions configures RemovePages.
type RemoveOptions struct {
	// UpdateMetadata rewrites ComicInfo.xml with a page list sized to the
	// new page count. Archives without metadata never gain any.
	UpdateMetadata bool
	Logger         *slog.Logger
	// Cache, when set, forgets the fingerprints of every rebuilt archive.
	Cache *hashcache.Cache
	// Opener defaults to comic.Open with Logger.
	Opener Opener
}

// RemovalResult reports the outcome for one archive.
type RemovalResult struct {
	Path            string
	Indices         []int
	Removed         bool
	Err             error
	BytesBefore     int64
	BytesAfter      int64
	MetadataUpdated bool
	MetadataErr     error
}

// Saved returns the number of bytes the archive shrank by.
func (r RemovalResult) Saved() int64 {
	if !r.Removed || r.BytesAfter > r.BytesBefore {
		return 0
	}
	return r.BytesBefore - r.BytesAfter
}

// RemovePages removes every planned page, rebuilding each archive once.
// Each archive succeeds or fails on its own; a failure never stops the
// remaining archives.
func RemovePages(ctx context.Context, plan *Plan, opts RemoveOptions) []RemovalResult {
	logger := logging.NewComponentLogger(opts.Logger, "duplicates")
	open := opts.Opener
	if open == nil {
		open = func(path string) *comic.Comic {
			return comic.Open(path, comic.Options{Logger: opts.Logger})
		}
	}

	entries := plan.Entries()
	results := make([]RemovalResult, 0, len(entries))
	for _, entry := range entries {
		res := RemovalResult{Path: entry.Path, Indices: entry.Indices}
		if err := ctx.Err(); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		removeOne(ctx, logger.With(logging.String(logging.FieldComic, entry.Path)), open(entry.Path), &res, opts)
		results = append(results, res)
	}
	return results
}

func removeOne(ctx context.Context, logger *slog.Logger, cm *comic.Comic, res *RemovalResult, opts RemoveOptions) {
	res.BytesBefore = fileSize(res.Path)

	hadMetadata := cm.HasMetadata()
	md, err := cm.ReadMetadata()
	if err != nil {
		logger.Debug("existing metadata unreadable", logging.Error(err))
		hadMetadata = false
	}

	if err := cm.RemovePages(res.Indices); err != nil {
		res.Err = err
		logging.ErrorWithContext(logger, "duplicate page removal failed", "pages_remove_failed",
			logging.Error(err),
			logging.Any("indices", res.Indices),
		)
		return
	}
	res.Removed = true
	res.BytesAfter = fileSize(res.Path)

	if opts.Cache != nil {
		if err := opts.Cache.Forget(ctx, res.Path); err != nil {
			logger.Debug("hash cache forget failed", logging.Error(err))
		}
	}

	if hadMetadata && opts.UpdateMetadata {
		md.SetDefaultPageList(cm.NumberOfPages())
		if err := cm.WriteMetadata(md); err != nil {
			res.MetadataErr = err
			logging.WarnWithContext(logger, "page list not updated", "metadata_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "stored page list is stale"),
			)
		} else {
			res.MetadataUpdated = true
			res.BytesAfter = fileSize(res.Path)
		}
	}

	logger.Info("duplicate pages removed",
		logging.String(logging.FieldEventType, "pages_removed"),
		logging.Int("removed", len(res.Indices)),
		logging.Int64("before_bytes", res.BytesBefore),
		logging.Int64("after_bytes", res.BytesAfter),
		logging.Bool("metadata_updated", res.MetadataUpdated),
	)
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
