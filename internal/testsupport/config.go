package testsupport

import (
	"path/filepath"
	"testing"

	"comictag/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.HashCache.Path = filepath.Join(base, "state", "hashes.db")
	cfgVal.Sort.Directory = filepath.Join(base, "sorted")
	cfgVal.Duplicates.Progress = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutHashCache disables the fingerprint cache on the test config.
func WithoutHashCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.HashCache.Enabled = false
	}
}

// WithTemplate overrides the rename template on the test config.
func WithTemplate(template string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rename.Template = template
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
