package sorter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"comictag/internal/comic"
	"comictag/internal/comicinfo"
	"comictag/internal/fileutil"
	"comictag/internal/logging"
	"comictag/internal/textutil"
)

var (
	// ErrPermission reports a destination that could not be created.
	ErrPermission = errors.New("permission denied")
	// ErrIncomplete reports metadata lacking publisher, series, or volume.
	ErrIncomplete = errors.New("metadata incomplete for sorting")
	// ErrNoMetadata reports an archive without ComicInfo.xml.
	ErrNoMetadata = errors.New("no metadata")
)

// Sorter moves archives into <root>/<publisher>/<series>/v<volume>.
type Sorter struct {
	root   string
	logger *slog.Logger
}

// New returns a Sorter rooted at dir.
func New(dir string, logger *slog.Logger) *Sorter {
	return &Sorter{root: dir, logger: logging.NewComponentLogger(logger, "sorter")}
}

// Destination returns the directory md sorts into. Trade paperbacks get a
// " TPB" series suffix.
func (s *Sorter) Destination(md *comicinfo.Metadata) (string, error) {
	publisher := textutil.SanitizePathSegment(md.Publisher)
	series := textutil.SanitizePathSegment(md.Series)
	volume := textutil.SanitizePathSegment(md.Volume)
	if publisher == "" || series == "" || volume == "" {
		return "", fmt.Errorf("%w: publisher=%q series=%q volume=%q", ErrIncomplete, md.Publisher, md.Series, md.Volume)
	}
	if strings.EqualFold(strings.TrimSpace(md.Format), "Trade Paperback") {
		series += " TPB"
	}
	return filepath.Join(s.root, publisher, series, "v"+volume), nil
}

// Result describes one sorted archive.
type Result struct {
	From  string
	To    string
	Moved bool
}

// Sort moves c into its destination directory, keeping its file name. A
// file already at the target is not overwritten; the archive gets a
// " (N)" suffix instead.
func (s *Sorter) Sort(c *comic.Comic) (Result, error) {
	from := c.Path()
	res := Result{From: from, To: from}
	if strings.TrimSpace(s.root) == "" {
		return res, errors.New("sort directory not configured")
	}
	if !c.HasMetadata() {
		return res, fmt.Errorf("sort %s: %w", from, ErrNoMetadata)
	}
	md, err := c.ReadMetadata()
	if err != nil {
		return res, fmt.Errorf("sort %s: %w", from, err)
	}
	dir, err := s.Destination(md)
	if err != nil {
		return res, fmt.Errorf("sort %s: %w", from, err)
	}

	if filepath.Dir(from) == dir {
		return res, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return res, fmt.Errorf("sort %s: create %s: %w: %w", from, dir, ErrPermission, err)
		}
		return res, fmt.Errorf("sort %s: create %s: %w", from, dir, err)
	}

	target := fileutil.UniquePath(filepath.Join(dir, filepath.Base(from)))
	if err := c.Rename(target); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return res, fmt.Errorf("sort %s: %w: %w", from, ErrPermission, err)
		}
		return res, fmt.Errorf("sort %s: %w", from, err)
	}
	res.To = target
	res.Moved = true
	s.logger.Info("archive sorted",
		logging.String(logging.FieldEventType, "archive_sorted"),
		logging.String(logging.FieldComic, target),
		logging.String("from", from),
	)
	return res, nil
}
