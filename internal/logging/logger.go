package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"comictag/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Console receives human output. Defaults to stderr so stdout stays
	// reserved for command results.
	Console io.Writer
	// FilePath, when set, receives a JSON copy of every record.
	FilePath string
	// RunID is stamped on every record. Generated when empty.
	RunID       string
	Development bool
}

// Logger bundles the slog logger with the run metadata callers report.
type Logger struct {
	*slog.Logger
	RunID   string
	LogPath string
	closer  io.Closer
}

// Close releases the run log file, if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var consoleHandler slog.Handler
	switch format {
	case "json":
		consoleHandler = newJSONHandler(console, levelVar, addSource)
	case "console":
		consoleHandler = newPrettyHandler(console, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	runID := strings.TrimSpace(opts.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}

	handlers := []slog.Handler{consoleHandler}
	var closer io.Closer
	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := ensureLogDir(path); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		fileLevel := new(slog.LevelVar)
		fileLevel.Set(min(level, slog.LevelInfo))
		handlers = append(handlers, newJSONHandler(file, fileLevel, true))
		closer = file
	}

	handler := newRunIDHandler(newFanoutHandler(handlers...), runID)
	return &Logger{
		Logger:  slog.New(handler),
		RunID:   runID,
		LogPath: opts.FilePath,
		closer:  closer,
	}, nil
}

// NewFromConfig creates a logger using application config defaults. Each run
// gets its own log file under the configured log directory. A nil console
// writes to stderr.
func NewFromConfig(cfg *config.Config, console io.Writer) (*Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Console: console})
	}

	runID := uuid.NewString()
	opts := Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Console: console,
		RunID:   runID,
	}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		opts.FilePath = filepath.Join(cfg.Paths.LogDir, RunLogName(time.Now(), runID))
	}
	return New(opts)
}

// RunLogName returns the file name used for a run's log.
func RunLogName(ts time.Time, runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("comictag-%s-%s.log", ts.UTC().Format("20060102T150405"), short)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
