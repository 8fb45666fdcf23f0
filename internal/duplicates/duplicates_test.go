package duplicates_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"comictag/internal/comic"
	"comictag/internal/comicinfo"
	"comictag/internal/duplicates"
	"comictag/internal/testsupport"
)

func TestFingerprint(t *testing.T) {
	a, err := duplicates.Fingerprint(testsupport.PNG(t, 1))
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	again, err := duplicates.Fingerprint(testsupport.PNG(t, 1))
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	b, err := duplicates.Fingerprint(testsupport.PNG(t, 2))
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if len(a) != 16 {
		t.Fatalf("expected 16 hex digits, got %q", a)
	}
	if a != again {
		t.Fatalf("identical images hashed differently: %s vs %s", a, again)
	}
	if a == b {
		t.Fatalf("distinct images share fingerprint %s", a)
	}
}

func TestFingerprintRejectsGarbage(t *testing.T) {
	if _, err := duplicates.Fingerprint([]byte("not an image")); !errors.Is(err, duplicates.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDistinctHashesAndGroup(t *testing.T) {
	table := duplicates.NewTable(
		duplicates.Row{Path: "A", Index: 0, Hash: "h1"},
		duplicates.Row{Path: "A", Index: 1, Hash: "h1"},
		duplicates.Row{Path: "B", Index: 0, Hash: "h2"},
	)

	if got := table.DistinctHashes(); !slices.Equal(got, []string{"h1"}) {
		t.Fatalf("DistinctHashes = %v, want [h1]", got)
	}
	group := table.Group("h1")
	want := []duplicates.Row{{Path: "A", Index: 0, Hash: "h1"}, {Path: "A", Index: 1, Hash: "h1"}}
	if !slices.Equal(group, want) {
		t.Fatalf("Group(h1) = %v, want %v", group, want)
	}
}

func TestDistinctHashesFirstSeenOrder(t *testing.T) {
	table := duplicates.NewTable(
		duplicates.Row{Path: "A", Index: 0, Hash: "h2"},
		duplicates.Row{Path: "A", Index: 1, Hash: "h1"},
		duplicates.Row{Path: "B", Index: 0, Hash: "h3"},
		duplicates.Row{Path: "B", Index: 1, Hash: "h1"},
		duplicates.Row{Path: "C", Index: 0, Hash: "h2"},
	)

	if got := table.DistinctHashes(); !slices.Equal(got, []string{"h2", "h1"}) {
		t.Fatalf("DistinctHashes = %v, want [h2 h1]", got)
	}
	stats := table.Stats()
	if stats.Pages != 5 || stats.DuplicatePages != 4 || stats.DuplicateHashes != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPlanApprove(t *testing.T) {
	plan := duplicates.NewPlan()
	plan.Approve([]duplicates.Row{
		{Path: "A", Index: 0, Hash: "h1"},
		{Path: "A", Index: 1, Hash: "h1"},
		{Path: "B", Index: 3, Hash: "h1"},
	})
	plan.Approve([]duplicates.Row{
		{Path: "B", Index: 5, Hash: "h2"},
		{Path: "C", Index: 1, Hash: "h2"},
	})

	want := []duplicates.PlanEntry{
		{Path: "A", Indices: []int{0}},
		{Path: "B", Indices: []int{3, 5}},
		{Path: "C", Indices: []int{1}},
	}
	got := plan.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Path != want[i].Path || !slices.Equal(got[i].Indices, want[i].Indices) {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if plan.Len() != 3 || plan.Pages() != 4 {
		t.Fatalf("unexpected plan size: archives=%d pages=%d", plan.Len(), plan.Pages())
	}
}

func writeComic(t *testing.T, dir, name string, variants ...uint64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteCBZ(t, path, testsupport.Pages(t, variants...)...)
	return path
}

func openAll(paths ...string) []*comic.Comic {
	comics := make([]*comic.Comic, 0, len(paths))
	for _, p := range paths {
		comics = append(comics, comic.Open(p, comic.Options{}))
	}
	return comics
}

func TestCollectReviewRemove(t *testing.T) {
	dir := t.TempDir()
	a := writeComic(t, dir, "a.cbz", 1, 2, 1)
	b := writeComic(t, dir, "b.cbz", 3, 1)

	if err := comic.Open(a, comic.Options{}).WriteMetadata(&comicinfo.Metadata{Series: "Saga"}); err != nil {
		t.Fatalf("WriteMetadata failed: %v", err)
	}

	var progress []int
	collector := &duplicates.Collector{Progress: func(done, total int) {
		progress = append(progress, done)
	}}
	table, failures := collector.Collect(context.Background(), openAll(a, b))
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if !slices.Equal(progress, []int{1, 2}) {
		t.Fatalf("unexpected progress calls: %v", progress)
	}

	hashes := table.DistinctHashes()
	if len(hashes) != 1 {
		t.Fatalf("expected one shared image, got %v", hashes)
	}
	group := table.Group(hashes[0])
	if len(group) != 3 {
		t.Fatalf("expected 3 rows in group, got %v", group)
	}

	plan := duplicates.NewPlan()
	plan.Approve(group)
	results := duplicates.RemovePages(context.Background(), plan, duplicates.RemoveOptions{UpdateMetadata: true})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if !res.Removed || res.Err != nil {
			t.Fatalf("removal failed for %s: %v", res.Path, res.Err)
		}
	}
	if !results[0].MetadataUpdated || results[1].MetadataUpdated {
		t.Fatalf("only the archive with metadata should be updated: %+v", results)
	}

	ca := comic.Open(a, comic.Options{})
	if ca.NumberOfPages() != 2 {
		t.Fatalf("expected 2 pages in a.cbz, got %d", ca.NumberOfPages())
	}
	md, err := ca.ReadMetadata()
	if err != nil {
		t.Fatalf("ReadMetadata failed: %v", err)
	}
	if md.PageCount != 2 || len(md.Pages) != 2 {
		t.Fatalf("expected resynced page list of 2, got count=%d pages=%d", md.PageCount, len(md.Pages))
	}
	if comic.Open(b, comic.Options{}).NumberOfPages() != 1 {
		t.Fatal("expected 1 page left in b.cbz")
	}
}

func TestCollectUsesCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cache := testsupport.MustOpenHashCache(t, cfg)
	dir := t.TempDir()
	a := writeComic(t, dir, "a.cbz", 1, 2)

	collector := &duplicates.Collector{Cache: cache}
	first, _ := collector.Collect(context.Background(), openAll(a))
	count, err := cache.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 cached rows, got %d", count)
	}

	second, _ := collector.Collect(context.Background(), openAll(a))
	if !slices.Equal(first.Rows(), second.Rows()) {
		t.Fatalf("cached scan differs: %v vs %v", first.Rows(), second.Rows())
	}
}

func TestCollectSkipsUndecodablePages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cbz")
	testsupport.WriteCBZ(t, path,
		testsupport.Entry{Name: "01.png", Data: testsupport.PNG(t, 1)},
		testsupport.Entry{Name: "02.png", Data: []byte("truncated")},
		testsupport.Entry{Name: "03.png", Data: testsupport.PNG(t, 2)},
	)

	table, failures := (&duplicates.Collector{}).Collect(context.Background(), openAll(path))
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if len(failures) != 1 || failures[0].Index != 1 || !errors.Is(failures[0], duplicates.ErrDecode) {
		t.Fatalf("unexpected failures: %v", failures)
	}
}

func TestCollectSkipsUnsupportedArchives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.cbr")
	testsupport.WriteFile(t, path, 64)

	table, failures := (&duplicates.Collector{}).Collect(context.Background(), openAll(path))
	if table.Len() != 0 || len(failures) != 0 {
		t.Fatalf("expected nothing collected, got rows=%d failures=%v", table.Len(), failures)
	}
	if table.Stats().Comics != 1 {
		t.Fatalf("expected archive to be counted, got %+v", table.Stats())
	}
}

func TestRemovePagesIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeComic(t, dir, "good.cbz", 1, 2)
	missing := filepath.Join(dir, "missing.cbz")

	plan := duplicates.NewPlan()
	plan.Approve([]duplicates.Row{{Path: missing, Index: 0}, {Path: good, Index: 1}})
	results := duplicates.RemovePages(context.Background(), plan, duplicates.RemoveOptions{})

	if results[0].Removed || results[0].Err == nil {
		t.Fatalf("expected failure for missing archive, got %+v", results[0])
	}
	if !results[1].Removed || results[1].Err != nil {
		t.Fatalf("expected success for good archive, got %+v", results[1])
	}
	if results[1].Saved() <= 0 {
		t.Fatalf("expected archive to shrink, before=%d after=%d", results[1].BytesBefore, results[1].BytesAfter)
	}
}

func TestRepresentative(t *testing.T) {
	dir := t.TempDir()
	a := writeComic(t, dir, "a.cbz", 4, 5, 4)

	table, _ := (&duplicates.Collector{}).Collect(context.Background(), openAll(a))
	hashes := table.DistinctHashes()
	if len(hashes) != 1 {
		t.Fatalf("expected one shared image, got %v", hashes)
	}

	open := func(path string) *comic.Comic { return comic.Open(path, comic.Options{}) }
	row, data, err := duplicates.Representative(table, hashes[0], open)
	if err != nil {
		t.Fatalf("Representative failed: %v", err)
	}
	if row.Index != 0 || !slices.Equal(data, testsupport.PNG(t, 4)) {
		t.Fatalf("unexpected representative row %+v", row)
	}
	if _, _, err := duplicates.Representative(table, "ffffffffffffffff", open); err == nil {
		t.Fatal("expected error for unknown fingerprint")
	}
}

func TestWithinHamming(t *testing.T) {
	candidates := []string{"0000000000000003", "00000000000fffff", "not-hex", "0000000000000000"}
	matches, err := duplicates.WithinHamming("0000000000000000", candidates, 10)
	if err != nil {
		t.Fatalf("WithinHamming failed: %v", err)
	}
	want := []duplicates.Match{
		{Index: 0, Hash: "0000000000000003", Distance: 2},
		{Index: 3, Hash: "0000000000000000", Distance: 0},
	}
	if !slices.Equal(matches, want) {
		t.Fatalf("WithinHamming = %v, want %v", matches, want)
	}
	if _, err := duplicates.WithinHamming("xyz", candidates, 10); err == nil {
		t.Fatal("expected error for unparseable reference")
	}
}
