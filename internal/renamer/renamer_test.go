package renamer_test

import (
	"os"
	"path/filepath"
	"testing"

	"comictag/internal/comic"
	"comictag/internal/comicinfo"
	"comictag/internal/renamer"
	"comictag/internal/testsupport"
)

func TestDetermineName(t *testing.T) {
	full := &comicinfo.Metadata{Series: "Aquaman", Volume: "1", Issue: "1", IssueCount: "8", Year: "2013"}

	cases := []struct {
		name string
		opts renamer.Options
		md   *comicinfo.Metadata
		want string
	}{
		{
			name: "default template",
			opts: renamer.Options{IssuePadding: 3, SmartCleanup: true},
			md:   full,
			want: "Aquaman v1 #001 (of 8) (2013).cbz",
		},
		{
			name: "smart cleanup drops empty tokens",
			opts: renamer.Options{IssuePadding: 3, SmartCleanup: true},
			md:   &comicinfo.Metadata{Series: "Aquaman", Issue: "1", Year: "2013"},
			want: "Aquaman #001 (2013).cbz",
		},
		{
			name: "without smart cleanup",
			opts: renamer.Options{IssuePadding: 3},
			md:   &comicinfo.Metadata{Series: "Aquaman", Issue: "1", IssueCount: "8", Year: "2013"},
			want: "Aquaman v #001 (of 8) (2013).cbz",
		},
		{
			name: "month name and format code",
			opts: renamer.Options{Template: "%publisher% - %series% - %month_name% %year% [%format%]", SmartCleanup: true},
			md:   &comicinfo.Metadata{Publisher: "DC", Series: "Batman", Month: "03", Year: "1990", Format: "Trade Paperback"},
			want: "DC - Batman - March 1990 [TPB].cbz",
		},
		{
			name: "empty bracket removed",
			opts: renamer.Options{Template: "%series% %year% [%format%]", SmartCleanup: true},
			md:   &comicinfo.Metadata{Series: "Batman", Year: "1990", Format: "Comic"},
			want: "Batman 1990.cbz",
		},
		{
			name: "trailing dash removed",
			opts: renamer.Options{Template: "%series% - %title%", SmartCleanup: true},
			md:   &comicinfo.Metadata{Series: "Batman"},
			want: "Batman.cbz",
		},
		{
			name: "half issue padded",
			opts: renamer.Options{Template: "%series% #%issue%", IssuePadding: 3, SmartCleanup: true},
			md:   &comicinfo.Metadata{Series: "Saga", Issue: "½"},
			want: "Saga #000.5.cbz",
		},
		{
			name: "language name",
			opts: renamer.Options{Template: "%series% (%language%)", SmartCleanup: true},
			md:   &comicinfo.Metadata{Series: "Asterix", LanguageISO: "fr"},
			want: "Asterix (French).cbz",
		},
		{
			name: "unsafe characters replaced",
			opts: renamer.Options{Template: "%series% #%issue%", IssuePadding: 3, SmartCleanup: true},
			md:   &comicinfo.Metadata{Series: "Batman: Year One", Issue: "1"},
			want: "Batman - Year One #001.cbz",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := renamer.New(tc.opts, nil).DetermineName(tc.md, ".cbz")
			if got != tc.want {
				t.Fatalf("DetermineName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTemplate("%series% #%issue%"))
	opts := renamer.OptionsFromConfig(cfg)
	if opts.Template != "%series% #%issue%" || opts.IssuePadding != cfg.Rename.IssuePadding || !opts.SmartCleanup {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.cbz")
	testsupport.WriteCBZ(t, path, testsupport.Pages(t, 1)...)
	md := &comicinfo.Metadata{Series: "Saga", Issue: "1", Year: "2012"}

	r := renamer.New(renamer.Options{IssuePadding: 3, SmartCleanup: true}, nil)
	c := comic.Open(path, comic.Options{})

	res, err := r.Rename(c, md)
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	want := filepath.Join(dir, "Saga #001 (2012).cbz")
	if !res.Renamed || res.To != want || c.Path() != want {
		t.Fatalf("unexpected result %+v (comic at %s)", res, c.Path())
	}

	again, err := r.Rename(c, md)
	if err != nil {
		t.Fatalf("second Rename failed: %v", err)
	}
	if again.Renamed {
		t.Fatalf("expected no-op when name already matches, got %+v", again)
	}
}

func TestRenameAvoidsCollision(t *testing.T) {
	dir := t.TempDir()
	taken := filepath.Join(dir, "Saga #001.cbz")
	testsupport.WriteFile(t, taken, 16)
	path := filepath.Join(dir, "incoming.cbz")
	testsupport.WriteCBZ(t, path, testsupport.Pages(t, 1)...)

	r := renamer.New(renamer.Options{Template: "%series% #%issue%", IssuePadding: 3, SmartCleanup: true}, nil)
	res, err := r.Rename(comic.Open(path, comic.Options{}), &comicinfo.Metadata{Series: "Saga", Issue: "1"})
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if want := filepath.Join(dir, "Saga #001 (1).cbz"); res.To != want {
		t.Fatalf("Rename target = %s, want %s", res.To, want)
	}
	if _, err := os.Stat(taken); err != nil {
		t.Fatalf("existing file should be untouched: %v", err)
	}
}

func TestRenameRequiresMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.cbz")
	testsupport.WriteCBZ(t, path, testsupport.Pages(t, 1)...)

	r := renamer.New(renamer.Options{}, nil)
	if _, err := r.Rename(comic.Open(path, comic.Options{}), &comicinfo.Metadata{}); err == nil {
		t.Fatal("expected error for empty metadata")
	}
}
