package testsupport

import (
	"testing"

	"comictag/internal/config"
	"comictag/internal/hashcache"
)

// MustOpenHashCache opens the fingerprint cache for tests and registers cleanup.
func MustOpenHashCache(t testing.TB, cfg *config.Config) *hashcache.Cache {
	t.Helper()

	cache, err := hashcache.Open(cfg.HashCache.Path)
	if err != nil {
		t.Fatalf("open hash cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
