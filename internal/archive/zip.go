package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"comictag/internal/fileutil"
)

// ZipBackend implements Backend for zip-compatible (cbz) containers.
type ZipBackend struct {
	path string
}

// NewZip returns a zip backend for path without probing it.
func NewZip(path string) *ZipBackend {
	return &ZipBackend{path: path}
}

func (z *ZipBackend) Kind() Kind { return KindZip }

func (z *ZipBackend) Path() string { return z.path }

func (z *ZipBackend) SetPath(path string) { z.path = path }

func (z *ZipBackend) open() (*zip.ReadCloser, error) {
	r, err := zip.OpenReader(z.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadContainer, z.path, err)
	}
	return r, nil
}

func (z *ZipBackend) List() ([]string, error) {
	r, err := z.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func (z *ZipBackend) Read(name string) ([]byte, error) {
	r, err := z.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open entry %s in %s: %w", ErrBadContainer, name, z.path, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read entry %s in %s: %w", ErrBadContainer, name, z.path, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, z.path)
}

func (z *ZipBackend) Write(name string, data []byte) error {
	return z.rebuild(map[string]struct{}{name: {}}, &newEntry{name: name, data: data})
}

func (z *ZipBackend) Remove(names ...string) error {
	exclude := make(map[string]struct{}, len(names))
	for _, name := range names {
		exclude[name] = struct{}{}
	}
	return z.rebuild(exclude, nil)
}

type newEntry struct {
	name string
	data []byte
}

// rebuild rewrites the container without the excluded entries, optionally
// appending one new entry. Existing entries are copied raw, without
// recompression.
func (z *ZipBackend) rebuild(exclude map[string]struct{}, add *newEntry) error {
	info, err := os.Stat(z.path)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrRebuild, z.path, err)
	}

	err = fileutil.AtomicWrite(z.path, info.Mode().Perm(), func(w io.Writer) error {
		src, err := z.open()
		if err != nil {
			return err
		}
		defer src.Close()

		zw := zip.NewWriter(w)
		for _, f := range src.File {
			if _, skip := exclude[f.Name]; skip {
				continue
			}
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy entry %s: %w", f.Name, err)
			}
		}
		if add != nil {
			if err := writeEntry(zw, add.name, add.data); err != nil {
				return err
			}
		}
		if src.Comment != "" {
			if err := zw.SetComment(src.Comment); err != nil {
				return err
			}
		}
		return zw.Close()
	})
	if err != nil {
		if errors.Is(err, ErrBadContainer) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrRebuild, z.path, err)
	}
	return nil
}

func (z *ZipBackend) CopyFrom(src Backend) error {
	if src == nil {
		return fmt.Errorf("%w: no source archive", ErrRebuild)
	}
	names, err := src.List()
	if err != nil {
		return fmt.Errorf("%w: list %s: %w", ErrRebuild, src.Path(), err)
	}

	err = fileutil.AtomicWrite(z.path, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, name := range names {
			data, err := src.Read(name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			if err := writeEntry(zw, name, data); err != nil {
				return err
			}
		}
		return zw.Close()
	})
	if err != nil {
		return fmt.Errorf("%w: copy into %s: %w", ErrRebuild, z.path, err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}
