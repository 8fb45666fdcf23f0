package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"comictag/internal/hashcache"
	"comictag/internal/runlock"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckHashCache opens the fingerprint cache and counts its rows.
func CheckHashCache(ctx context.Context, path string) Result {
	const name = "Hash cache"

	cache, err := hashcache.Open(path)
	if err != nil {
		if errors.Is(err, hashcache.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: written by another version; delete it to rebuild)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer cache.Close()

	count, err := cache.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d pages)", path, count)}
}

// CheckRunLock reports whether another run currently holds the lock.
func CheckRunLock(path string) Result {
	const name = "Run lock"

	lock, err := runlock.Acquire(path)
	if err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (held by another run)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := lock.Release(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: release: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (free)", path)}
}
