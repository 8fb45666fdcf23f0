package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRename(); err != nil {
		return err
	}
	if err := c.validateDuplicates(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}

func (c *Config) validateRename() error {
	if !strings.Contains(c.Rename.Template, "%") {
		return errors.New("rename.template must contain at least one %token%")
	}
	if c.Rename.IssuePadding > 10 {
		return errors.New("rename.issue_padding must be between 0 and 10")
	}
	return nil
}

func (c *Config) validateDuplicates() error {
	if c.Duplicates.HammingDistance < 0 || c.Duplicates.HammingDistance > 64 {
		return errors.New("duplicates.hamming_distance must be between 0 and 64")
	}
	return nil
}
