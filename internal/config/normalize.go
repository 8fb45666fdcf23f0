package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSort(); err != nil {
		return err
	}
	if err := c.normalizeHashCache(); err != nil {
		return err
	}
	c.normalizeRename()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSort() error {
	c.Sort.Directory = strings.TrimSpace(c.Sort.Directory)
	if c.Sort.Directory == "" {
		if value, ok := os.LookupEnv("COMICTAG_SORT_DIR"); ok {
			c.Sort.Directory = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Sort.Directory, err = expandPath(c.Sort.Directory); err != nil {
		return fmt.Errorf("sort.directory: %w", err)
	}
	return nil
}

func (c *Config) normalizeHashCache() error {
	if strings.TrimSpace(c.HashCache.Path) == "" {
		c.HashCache.Path = filepath.Join(c.Paths.StateDir, defaultHashCacheFile)
	}
	var err error
	if c.HashCache.Path, err = expandPath(c.HashCache.Path); err != nil {
		return fmt.Errorf("hash_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeRename() {
	c.Rename.Template = strings.TrimSpace(c.Rename.Template)
	if c.Rename.Template == "" {
		c.Rename.Template = defaultRenameTemplate
	}
	if c.Rename.IssuePadding < 0 {
		c.Rename.IssuePadding = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
