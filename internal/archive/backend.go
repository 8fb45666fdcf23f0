package archive

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	// ErrNotFound reports a missing entry inside a readable container.
	ErrNotFound = errors.New("archive entry not found")
	// ErrBadContainer reports a container that cannot be opened or parsed.
	ErrBadContainer = errors.New("bad container")
	// ErrRebuild reports a failed rebuild; the original file is left intact.
	ErrRebuild = errors.New("archive rebuild failed")
	// ErrUnsupported reports an operation on an unrecognized container.
	ErrUnsupported = errors.New("unsupported archive")
)

// Kind identifies the backend variant chosen for a file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindZip
)

func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip"
	default:
		return "unsupported"
	}
}

// Backend is the capability set every container variant exposes.
type Backend interface {
	Kind() Kind
	Path() string
	// SetPath points the backend at a new location after the file moved.
	SetPath(path string)
	// List returns entry names in container order.
	List() ([]string, error)
	// Read returns an entry's bytes or an error wrapping ErrNotFound.
	Read(name string) ([]byte, error)
	// Write adds or replaces a single entry.
	Write(name string, data []byte) error
	// Remove drops every named entry in one rebuild. Names that are not
	// present are ignored.
	Remove(names ...string) error
	// CopyFrom replaces this container with the entries readable from src.
	CopyFrom(src Backend) error
}

var zipSignatures = [][]byte{
	[]byte("PK\x03\x04"),
	[]byte("PK\x05\x06"),
	[]byte("PK\x07\x08"),
}

// Open probes path and returns the matching backend. Unreadable or
// unrecognized files yield the unsupported backend.
func Open(path string) Backend {
	if IsZip(path) {
		return NewZip(path)
	}
	return &UnsupportedBackend{path: path}
}

// IsZip reports whether the file at path starts with a zip signature.
func IsZip(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false
	}
	for _, sig := range zipSignatures {
		if bytes.Equal(magic, sig) {
			return true
		}
	}
	return false
}

// Writable reports whether b supports mutation and the current process may
// write the underlying file.
func Writable(b Backend) bool {
	if b == nil || b.Kind() == KindUnsupported {
		return false
	}
	return unix.Access(b.Path(), unix.W_OK) == nil
}

var pageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// IsPageName reports whether an entry name looks like a page image. Hidden
// files (base name starting with ".") never count.
func IsPageName(name string) bool {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := pageExtensions[strings.ToLower(path.Ext(base))]
	return ok
}
