package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"comictag/internal/comic"
	"comictag/internal/config"
	"comictag/internal/fileutil"
	"comictag/internal/hashcache"
	"comictag/internal/logging"
	"comictag/internal/runlock"
)

const runLogPattern = "comictag-*.log"

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *logging.Logger
	cache  *hashcache.Cache
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = strings.ToLower(level)
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// ensureLogger builds the run logger once. Console records go to the
// command's stderr so stdout carries only results.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger.Logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	c.logger = logger
	logging.CleanupOldLogs(logger.Logger, cfg.Paths.LogDir, runLogPattern, logger.LogPath, cfg.Logging.RetentionDays)
	logger.Debug("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("command", cmd.CommandPath()),
	)
	return logger.Logger, nil
}

func (c *commandContext) log() *slog.Logger {
	if c.logger == nil {
		return logging.NewNop()
	}
	return c.logger.Logger
}

// openComic wraps path using the configured page annotation settings.
func (c *commandContext) openComic(path string) *comic.Comic {
	opts := comic.Options{Logger: c.log()}
	if cfg := c.configValue(); cfg != nil {
		opts.CalcPageSizes = cfg.Metadata.CalcPageSizes
	}
	return comic.Open(path, opts)
}

// hashCache opens the fingerprint cache, or returns nil when it is disabled.
func (c *commandContext) hashCache() (*hashcache.Cache, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.HashCache.Enabled {
		return nil, nil
	}
	cache, err := hashcache.Open(cfg.HashCache.Path)
	if err != nil {
		return nil, fmt.Errorf("open hash cache: %w", err)
	}
	c.cache = cache
	return cache, nil
}

// withLock runs fn while holding the single-writer lock.
func (c *commandContext) withLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return fmt.Errorf("%w; wait for the other run to finish", err)
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(c.log(), "release run lock failed", "lock_release_failed",
				logging.String(logging.FieldErrorHint, "remove the lock file if no comictag run is active"),
				logging.String(logging.FieldImpact, "next run may report the lock as held"),
				logging.Error(err),
			)
		}
	}()
	return fn()
}

// expandInputs walks directory arguments and returns every file beneath
// them. Unreadable inputs are logged and skipped.
func (c *commandContext) expandInputs(args []string) []string {
	files, errs := fileutil.RecursiveFiles(args)
	for _, err := range errs {
		logging.WarnWithContext(c.log(), "input skipped", "input_unreadable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the path exists and is readable"),
			logging.String(logging.FieldImpact, "files beneath it are not processed"),
		)
	}
	return files
}

func (c *commandContext) close() error {
	var errs []error
	if c.cache != nil {
		errs = append(errs, c.cache.Close())
		c.cache = nil
	}
	if c.logger != nil {
		errs = append(errs, c.logger.Close())
		c.logger = nil
	}
	return errors.Join(errs...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
