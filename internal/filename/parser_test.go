package filename_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"comictag/internal/filename"
)

const afterlife = "Afterlife_With_Archie_V1_#002_(of_08)_(2013)"

func TestIssueNumber(t *testing.T) {
	issue, start, end := filename.IssueNumber(afterlife)
	assert.Equal(t, "002", issue)
	assert.Equal(t, 25, start)
	assert.Equal(t, 29, end)
}

func TestSeriesName(t *testing.T) {
	_, start, _ := filename.IssueNumber(afterlife)
	series, volume := filename.SeriesName(afterlife, start)
	assert.Equal(t, "Afterlife With Archie", series)
	assert.Equal(t, "1", volume)
}

func TestSpecialEditionUsesYearAsVolume(t *testing.T) {
	name := "Aquaman TPB (1994)"
	_, start, _ := filename.IssueNumber(name)
	series, volume := filename.SeriesName(name, start)
	assert.Equal(t, 0, start)
	assert.Equal(t, "Aquaman", series)
	assert.Equal(t, "1994", volume)
}

func TestYearCountAndRemainder(t *testing.T) {
	_, start, end := filename.IssueNumber(afterlife)
	year := filename.Year(afterlife, end)
	count := filename.IssueCount(afterlife, end)
	_, volume := filename.SeriesName(afterlife, start)

	assert.Equal(t, "2013", year)
	assert.Equal(t, "8", count)
	assert.Equal(t, "(of 08)", filename.Remainder(afterlife, year, count, volume, end))
}

func TestParse(t *testing.T) {
	cases := []struct {
		path string
		want filename.Result
	}{
		{
			path: "/comics/" + afterlife + ".cbz",
			want: filename.Result{
				Series: "Afterlife With Archie", Volume: "1", Issue: "2",
				IssueCount: "8", Year: "2013", Remainder: "(of 08)",
				IssueStart: 25, IssueEnd: 29,
			},
		},
		{
			path: "Batman #1 (2016).cbz",
			want: filename.Result{Series: "Batman", Issue: "1", Year: "2016", IssueStart: 7, IssueEnd: 9},
		},
		{
			path: "Saga 054 (2018) (Digital) (Zone-Empire).cbz",
			want: filename.Result{
				Series: "Saga", Issue: "54", Year: "2018",
				Remainder: "(Digital) (Zone-Empire)", IssueStart: 5, IssueEnd: 8,
			},
		},
		{
			path: "X-Men v2 012.cbz",
			want: filename.Result{Series: "X-Men", Volume: "2", Issue: "12", IssueStart: 9, IssueEnd: 12},
		},
		{
			path: "2000 AD 1500.cbz",
			want: filename.Result{Series: "2000 AD", Issue: "1500", IssueStart: 8, IssueEnd: 12},
		},
		{
			path: "Watchmen TPB.cbz",
			want: filename.Result{Series: "Watchmen", Remainder: "TPB"},
		},
		{
			path: "Spawn #.5.cbz",
			want: filename.Result{Series: "Spawn", Issue: "0.5", IssueStart: 6, IssueEnd: 9},
		},
		{
			path: "Saga 000.cbz",
			want: filename.Result{Series: "Saga", Issue: "0", IssueStart: 5, IssueEnd: 8},
		},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, filename.Parse(tc.path))
		})
	}
}

func TestParseBareNameKeepsDecimalIssue(t *testing.T) {
	r := filename.Parse("Spawn #.5")
	assert.Equal(t, "Spawn", r.Series)
	assert.Equal(t, "0.5", r.Issue)
}

func TestYearIgnoresImplausibleParenthesized(t *testing.T) {
	name := "Saga 001 (1234) (2015)"
	_, _, end := filename.IssueNumber(name)
	assert.Equal(t, "2015", filename.Year(name, end))
	assert.Empty(t, filename.Year("Saga 001 (1234)", 8))
}

func TestParseSpecialEdition(t *testing.T) {
	r := filename.Parse("Aquaman TPB (1994).cbz")
	assert.Equal(t, 0, r.IssueStart)
	assert.Equal(t, "Aquaman", r.Series)
	assert.Equal(t, "1994", r.Volume)
	assert.Equal(t, "1994", r.Year)
	assert.Empty(t, r.Issue)
}

func TestParseIsDeterministic(t *testing.T) {
	first := filename.Parse(afterlife)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, filename.Parse(afterlife))
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Saga 001", filename.Normalize("/tmp/Saga%20001.cbz"))
	assert.Equal(t, "Pok\u00e9mon 003", filename.Normalize("Poke\u0301mon 003.cbz"))
	assert.Equal(t, "Spawn 001 (2015) (Digital)", filename.Normalize("Spawn 001 _282015_29 _28Digital_29.cbz"))
	assert.Equal(t, "Odd_28name", filename.Normalize("Odd_28name.cbz"))
	assert.Equal(t, "Spawn #.5", filename.Normalize("Spawn #.5"))
	assert.Equal(t, "Saga 001", filename.Normalize("Saga 001.CBR"))
}
