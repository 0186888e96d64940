package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `"Title","UK Vacancies (thousands) - Total"
"CDID","AP2Y"
"Release date","09-02-2024"
"Next release","12 March 2024"
"2023","930"
"2023 Q4","921"
"2023 NOV","910"
"2023 DEC","905"
"2024 JAN","902"
`

func TestParseVintageRoundTrip(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleSnapshot), "v100.csv")
	require.NoError(t, err)

	assert.True(t, table.VintageKnown)
	assert.Equal(t, "09-02-2024", table.Vintage.Format(VintageLayout))
}

func TestParseRetainsOnlyMonthlyRows(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleSnapshot), "v100.csv")
	require.NoError(t, err)

	require.Len(t, table.Obs, 3)
	assert.Equal(t, 3, table.Retained)
	assert.Equal(t, 0, table.Dropped)

	assert.Equal(t, time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC), table.Obs[0].Month)
	assert.Equal(t, 910.0, table.Obs[0].Value)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), table.Obs[2].Month)
	assert.Equal(t, 902.0, table.Obs[2].Value)
}

func TestParseQuarterlyOnlyYieldsEmptyTable(t *testing.T) {
	raw := `"Release date","09-02-2024"
"2023 Q3","915"
"2023 Q4","921"
`
	table, err := Parse(strings.NewReader(raw), "v99.csv")
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.Retained)
}

func TestParseUnknownVintage(t *testing.T) {
	raw := `"Title","UK Vacancies"
"2024 JAN","902"
`
	table, err := Parse(strings.NewReader(raw), "v98.csv")
	require.NoError(t, err)

	assert.False(t, table.VintageKnown)
	assert.Len(t, table.Obs, 1)
}

func TestParseUnparseableReleaseDate(t *testing.T) {
	raw := `"Release date","February 2024"
"2024 JAN","902"
`
	table, err := Parse(strings.NewReader(raw), "v97.csv")
	require.NoError(t, err)
	assert.False(t, table.VintageKnown)
}

func TestParseDropsBadValues(t *testing.T) {
	raw := `"Release date","09-02-2024"
"2023 DEC","n/a"
"2024 JAN","902"
`
	table, err := Parse(strings.NewReader(raw), "v96.csv")
	require.NoError(t, err)

	require.Len(t, table.Obs, 1)
	assert.Equal(t, 1, table.Retained)
	assert.Equal(t, 1, table.Dropped)
	assert.Equal(t, 902.0, table.Obs[0].Value)
}

func TestParseDeduplicatesKeepingFirst(t *testing.T) {
	raw := `"Release date","09-02-2024"
"2024 JAN","902"
"2024 JAN","999"
`
	table, err := Parse(strings.NewReader(raw), "v95.csv")
	require.NoError(t, err)

	require.Len(t, table.Obs, 1)
	assert.Equal(t, 902.0, table.Obs[0].Value)
	assert.Equal(t, 1, table.Dropped)
}

func TestParseCaseInsensitiveMonths(t *testing.T) {
	raw := `"Release date","15-05-2024"
"2024 mar","895"
"2024 Apr","890"
`
	table, err := Parse(strings.NewReader(raw), "v94.csv")
	require.NoError(t, err)

	require.Len(t, table.Obs, 2)
	assert.Equal(t, time.March, table.Obs[0].Month.Month())
	assert.Equal(t, time.April, table.Obs[1].Month.Month())
}

func TestParseDirSkipsBadFilesAndEmptySnapshots(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "v100.csv", sampleSnapshot)
	writeFile(t, dir, "v99.csv", `"Release date","10-01-2024"
"2023 Q4","921"
`)

	tables, err := ParseDir(dir)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "v100.csv", tables[0].Source)
}

func TestParseDirMissing(t *testing.T) {
	_, err := ParseDir("does-not-exist")
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
