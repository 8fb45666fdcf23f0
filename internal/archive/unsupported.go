package archive

import "fmt"

// UnsupportedBackend stands in for files that are not recognized containers.
type UnsupportedBackend struct {
	path string
}

func (u *UnsupportedBackend) Kind() Kind { return KindUnsupported }

func (u *UnsupportedBackend) Path() string { return u.path }

func (u *UnsupportedBackend) SetPath(path string) { u.path = path }

func (u *UnsupportedBackend) List() ([]string, error) { return nil, nil }

func (u *UnsupportedBackend) Read(name string) ([]byte, error) {
	return nil, fmt.Errorf("%w: read %s from %s", ErrUnsupported, name, u.path)
}

func (u *UnsupportedBackend) Write(name string, _ []byte) error {
	return fmt.Errorf("%w: write %s to %s", ErrUnsupported, name, u.path)
}

func (u *UnsupportedBackend) Remove(_ ...string) error {
	return fmt.Errorf("%w: remove from %s", ErrUnsupported, u.path)
}

func (u *UnsupportedBackend) CopyFrom(_ Backend) error {
	return fmt.Errorf("%w: copy into %s", ErrUnsupported, u.path)
}
