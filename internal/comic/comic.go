package comic

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"
	_ "golang.org/x/image/webp" // register WebP decoder

	"comictag/internal/archive"
	"comictag/internal/comicinfo"
	"comictag/internal/filename"
	"comictag/internal/fileutil"
	"comictag/internal/logging"
)

// ErrPageIndex reports a page index outside the archive's page list.
var ErrPageIndex = errors.New("page index out of range")

// Options configures a Comic.
type Options struct {
	Logger *slog.Logger
	// CalcPageSizes records byte size and pixel dimensions of every page
	// whenever metadata is written.
	CalcPageSizes bool
}

// Comic binds one archive path to its backend and caches what has been read
// from it. A Comic is not safe for concurrent use.
type Comic struct {
	backend       archive.Backend
	logger        *slog.Logger
	calcPageSizes bool

	entries  []string
	pages    []string
	loaded   bool
	metadata *comicinfo.Metadata
}

// Open wraps the archive at path. The backend variant is chosen once from the
// file's contents; unreadable files get the unsupported backend.
func Open(path string, opts Options) *Comic {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Comic{
		backend:       archive.Open(path),
		logger:        logger.With(logging.String(logging.FieldComic, path)),
		calcPageSizes: opts.CalcPageSizes,
	}
}

// Path returns the archive's current location.
func (c *Comic) Path() string { return c.backend.Path() }

// Kind returns the backend variant.
func (c *Comic) Kind() archive.Kind { return c.backend.Kind() }

// IsZip reports whether the archive is a zip (cbz) container.
func (c *Comic) IsZip() bool { return c.backend.Kind() == archive.KindZip }

// IsWritable reports whether the archive can be modified in place.
func (c *Comic) IsWritable() bool { return archive.Writable(c.backend) }

// SeemsToBeComic reports whether the archive holds at least one page.
func (c *Comic) SeemsToBeComic() bool { return c.NumberOfPages() > 0 }

// Rename moves the archive to newPath and keeps using it from there.
func (c *Comic) Rename(newPath string) error {
	oldPath := c.Path()
	if newPath == oldPath {
		return nil
	}
	if err := fileutil.MoveFile(oldPath, newPath); err != nil {
		return fmt.Errorf("rename %s: %w", oldPath, err)
	}
	c.backend.SetPath(newPath)
	c.logger = c.logger.With(logging.String(logging.FieldComic, newPath))
	c.logger.Debug("archive renamed", logging.String("from", oldPath))
	return nil
}

func (c *Comic) load() error {
	if c.loaded {
		return nil
	}
	entries, err := c.backend.List()
	if err != nil {
		return err
	}
	pages := make([]string, 0, len(entries))
	for _, name := range entries {
		if archive.IsPageName(name) {
			pages = append(pages, name)
		}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return natural.Less(strings.ToLower(pages[i]), strings.ToLower(pages[j]))
	})
	c.entries = entries
	c.pages = pages
	c.loaded = true
	return nil
}

// resetCache drops everything read from the archive.
func (c *Comic) resetCache() {
	c.entries = nil
	c.pages = nil
	c.loaded = false
	c.metadata = nil
}

// PageNames returns the page entry names in reading order.
func (c *Comic) PageNames() ([]string, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	return slices.Clone(c.pages), nil
}

// NumberOfPages returns the page count, or 0 when the archive cannot be
// listed.
func (c *Comic) NumberOfPages() int {
	if err := c.load(); err != nil {
		c.logger.Debug("archive listing failed", logging.Error(err))
		return 0
	}
	return len(c.pages)
}

// PageName returns the entry name of page index.
func (c *Comic) PageName(index int) (string, error) {
	if err := c.load(); err != nil {
		return "", err
	}
	if index < 0 || index >= len(c.pages) {
		return "", fmt.Errorf("%w: %d of %d", ErrPageIndex, index, len(c.pages))
	}
	return c.pages[index], nil
}

// Page returns the raw bytes of page index.
func (c *Comic) Page(index int) ([]byte, error) {
	name, err := c.PageName(index)
	if err != nil {
		return nil, err
	}
	return c.backend.Read(name)
}

// HasMetadata reports whether the archive holds pages and a ComicInfo.xml
// entry.
func (c *Comic) HasMetadata() bool {
	if !c.SeemsToBeComic() {
		return false
	}
	return slices.Contains(c.entries, comicinfo.EntryName)
}

// ReadMetadata returns the stored metadata, or an empty record carrying a
// default page list when there is none. A stored page list that disagrees
// with the page count is replaced by a default list. The result is a copy
// the caller may modify.
func (c *Comic) ReadMetadata() (*comicinfo.Metadata, error) {
	if c.metadata != nil {
		return c.metadata.Clone(), nil
	}
	if !c.HasMetadata() {
		md := &comicinfo.Metadata{}
		md.SetDefaultPageList(c.NumberOfPages())
		c.metadata = md
		return md.Clone(), nil
	}

	data, err := c.backend.Read(comicinfo.EntryName)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	md, err := comicinfo.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("read metadata from %s: %w", c.Path(), err)
	}
	if count := c.NumberOfPages(); len(md.Pages) != count {
		c.logger.Debug("stored page list does not match archive, regenerating",
			logging.Int("stored_pages", len(md.Pages)),
			logging.Int("archive_pages", count),
		)
		md.SetDefaultPageList(count)
	}
	c.metadata = md
	return md.Clone(), nil
}

// WriteMetadata stores md as the archive's ComicInfo.xml. The page list is
// annotated from the archive before it is encoded; md itself is not
// modified.
func (c *Comic) WriteMetadata(md *comicinfo.Metadata) error {
	if md == nil {
		return errors.New("write metadata: nil metadata")
	}
	record := md.Clone()
	c.ApplyArchiveInfo(record, c.calcPageSizes)

	data, err := comicinfo.Marshal(record)
	if err != nil {
		c.resetCache()
		return fmt.Errorf("write metadata: %w", err)
	}
	for _, credit := range comicinfo.UnmappedCredits(record) {
		logging.WarnWithContext(c.logger, "credit role has no ComicInfo element", "credit_role_unmapped",
			logging.String("person", credit.Person),
			logging.String("roles", strings.Join(credit.Roles, ", ")),
			logging.String(logging.FieldErrorHint, "use one of the standard creator roles"),
			logging.String(logging.FieldImpact, "credit not stored in ComicInfo.xml"),
		)
	}
	err = c.backend.Write(comicinfo.EntryName, data)
	c.resetCache()
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	c.metadata = record
	c.logger.Debug("metadata written",
		logging.String(logging.FieldEventType, "metadata_written"),
		logging.Int("page_count", record.PageCount),
	)
	return nil
}

// ApplyArchiveInfo sets md's page count from the archive and gives it a page
// list of matching length. With calcSizes, pages missing a size or
// dimensions are read and decoded; a page that does not decode keeps its
// byte size only.
func (c *Comic) ApplyArchiveInfo(md *comicinfo.Metadata, calcSizes bool) {
	count := c.NumberOfPages()
	md.PageCount = count
	if len(md.Pages) != count {
		md.SetDefaultPageList(count)
	}
	if !calcSizes {
		return
	}
	for i := range md.Pages {
		p := &md.Pages[i]
		if p.Size != 0 && p.Width != 0 && p.Height != 0 {
			continue
		}
		data, err := c.Page(p.Image)
		if err != nil {
			logging.WarnWithContext(c.logger, "page unreadable", "page_read_failed",
				logging.Int(logging.FieldPage, p.Image),
				logging.Error(err),
				logging.String(logging.FieldImpact, "page size not recorded"),
			)
			continue
		}
		p.Size = len(data)
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			c.logger.Debug("page did not decode",
				logging.Int(logging.FieldPage, p.Image),
				logging.Error(err),
			)
			continue
		}
		p.Width = cfg.Width
		p.Height = cfg.Height
	}
}

// RemoveMetadata deletes ComicInfo.xml. Archives without it are left alone.
func (c *Comic) RemoveMetadata() error {
	if !c.HasMetadata() {
		return nil
	}
	err := c.backend.Remove(comicinfo.EntryName)
	c.resetCache()
	if err != nil {
		return fmt.Errorf("remove metadata: %w", err)
	}
	c.logger.Debug("metadata removed", logging.String(logging.FieldEventType, "metadata_removed"))
	return nil
}

// RemovePages deletes the pages at indices in a single rebuild. Duplicate
// indices are ignored.
func (c *Comic) RemovePages(indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	names := make([]string, 0, len(indices))
	for _, idx := range indices {
		name, err := c.PageName(idx)
		if err != nil {
			return fmt.Errorf("remove pages: %w", err)
		}
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	err := c.backend.Remove(names...)
	c.resetCache()
	if err != nil {
		return fmt.Errorf("remove pages: %w", err)
	}
	c.logger.Debug("pages removed",
		logging.String(logging.FieldEventType, "pages_removed"),
		logging.Int("removed", len(names)),
	)
	return nil
}

// MetadataFromFilename builds a record from the archive's file name. With
// parseScanInfo, the unparsed remainder of the name becomes the scan info.
func (c *Comic) MetadataFromFilename(parseScanInfo bool) *comicinfo.Metadata {
	r := filename.Parse(c.Path())
	md := &comicinfo.Metadata{
		Series:     r.Series,
		Volume:     r.Volume,
		Issue:      r.Issue,
		IssueCount: r.IssueCount,
		Year:       r.Year,
	}
	if parseScanInfo {
		md.ScanInfo = r.Remainder
	}
	return md
}

// ExportCBZ writes the archive's entries into a new zip container at dst.
// Exporting a zip archive onto its own path does nothing.
func (c *Comic) ExportCBZ(dst string) error {
	if c.Kind() == archive.KindUnsupported {
		return fmt.Errorf("export %s: %w", c.Path(), archive.ErrUnsupported)
	}
	if c.IsZip() && dst == c.Path() {
		return nil
	}
	if err := archive.NewZip(dst).CopyFrom(c.backend); err != nil {
		return fmt.Errorf("export %s: %w", c.Path(), err)
	}
	return nil
}

// ScannerPageIndex guesses whether the last page is a scanner credit page,
// judging by its name against the names of the other pages. Archives with
// fewer than five pages are never guessed.
func (c *Comic) ScannerPageIndex() (int, bool) {
	names, err := c.PageNames()
	if err != nil || len(names) < 5 {
		return 0, false
	}

	buckets := make(map[int]int)
	for _, name := range names {
		buckets[len(path.Base(name))]++
	}
	modeLength, modeCount := 0, 0
	for length, n := range buckets {
		if n > modeCount || (n == modeCount && length > modeLength) {
			modeLength, modeCount = length, n
		}
	}

	var common []string
	for _, name := range names {
		if base := path.Base(name); len(base) == modeLength {
			common = append(common, base)
		}
	}
	prefix := commonPrefix(common)
	last := len(names) - 1
	final := path.Base(names[last])

	if modeLength <= 7 && prefix == "" {
		if len(final) > modeLength {
			return last, true
		}
		return 0, false
	}
	if !strings.HasPrefix(final, prefix) {
		return last, true
	}
	return 0, false
}

func commonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, v := range values[1:] {
		for !strings.HasPrefix(v, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
