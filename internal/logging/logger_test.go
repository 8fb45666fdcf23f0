package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"comictag/internal/config"
	"comictag/internal/logging"
)

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	defer logger.Close()

	if logger.RunID == "" {
		t.Fatal("expected generated run id")
	}
	if filepath.Dir(logger.LogPath) != cfg.Paths.LogDir {
		t.Fatalf("expected run log inside log dir, got %q", logger.LogPath)
	}
	logger.Info("metadata written", logging.String(logging.FieldComic, "/tmp/a.cbz"))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content, err := os.ReadFile(logger.LogPath)
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("run log is not JSON: %v (%q)", err, content)
	}
	if record["run_id"] != logger.RunID {
		t.Fatalf("expected run_id %q, got %v", logger.RunID, record["run_id"])
	}
	if record["comic"] != "/tmp/a.cbz" {
		t.Fatalf("expected comic field, got %v", record["comic"])
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller", logging.Int64("bytes_saved_bytes", 2048))

	out := buf.String()
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
	if !strings.Contains(out, "2.0 kB") {
		t.Fatalf("expected humanized byte size, got %q", out)
	}
	if strings.Contains(out, "run_id") || strings.Contains(out, "Run:") {
		t.Fatalf("expected run id hidden at info, got %q", out)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Console: &buf, RunID: "run-1"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("message with caller")

	out := buf.String()
	if !strings.Contains(out, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", out)
	}
	if !strings.Contains(out, "Run: run-1") {
		t.Fatalf("expected run id at debug, got %q", out)
	}
}

func TestConsoleHeaderShowsComponentAndComic(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithComic(context.Background(), "/library/Aquaman 001.cbz")
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger.Logger, "duplicates"))
	log.Info("pages removed", logging.Int("removed", 2))

	out := buf.String()
	if !strings.Contains(out, "INFO [duplicates] Aquaman 001.cbz – pages removed") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - Removed: 2") {
		t.Fatalf("expected bullet field, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected info level filtering, got %q", buf.String())
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Console: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger.Logger, "archive unreadable", "comic_unreadable")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	for _, key := range []string{logging.FieldEventType, logging.FieldErrorHint, logging.FieldImpact} {
		if _, ok := record[key]; !ok {
			t.Fatalf("expected %s in warning record: %v", key, record)
		}
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "comictag-old.log")
	current := filepath.Join(dir, "comictag-current.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, current, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), dir, "comictag-*.log", current, 30)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{current, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

func TestRunLogName(t *testing.T) {
	ts := time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC)
	got := logging.RunLogName(ts, "0123456789abcdef")
	if got != "comictag-20240305T060708-01234567.log" {
		t.Fatalf("unexpected run log name %q", got)
	}
}
