package preflight

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"comictag/internal/runlock"
	"comictag/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckHashCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashes.db")
	result := CheckHashCache(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected pass for fresh cache, got: %s", result.Detail)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("set schema version: %v", err)
	}
	db.Close()

	result = CheckHashCache(context.Background(), path)
	if result.Passed {
		t.Fatal("expected failure for cache written by another version")
	}
}

func TestCheckRunLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comictag.lock")
	if result := CheckRunLock(path); !result.Passed {
		t.Fatalf("expected free lock, got: %s", result.Detail)
	}

	lock, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer lock.Release()
	if result := CheckRunLock(path); result.Passed {
		t.Fatal("expected held lock to fail the check")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	cfg.Sort.Directory = ""

	results := RunAll(context.Background(), cfg)
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed {
			t.Errorf("%s failed: %s", r.Name, r.Detail)
		}
	}
	want := []string{"Log directory", "State directory", "Hash cache", "Run lock"}
	if len(names) != len(want) {
		t.Fatalf("checks = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("checks = %v, want %v", names, want)
		}
	}

	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
