package vintages

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oluski/go-vintages/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	second := trendValues(24, 800, 4)
	second[5] += 7
	tables := []*snapshot.Table{
		buildSnapshot(t, "10-01-2025", start, trendValues(24, 800, 4)),
		buildSnapshot(t, "10-02-2025", start, second),
	}

	p := New(nil)
	res, err := p.Run(tables)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, res.WriteReport(path, start.AddDate(0, 5, 0)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestLineRevisionsUsesHistoryOrder(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	tables := []*snapshot.Table{
		buildSnapshot(t, "10-02-2025", start, trendValues(24, 810, 4)),
		buildSnapshot(t, "10-01-2025", start, trendValues(24, 800, 4)),
	}

	p := New(nil)
	res, err := p.Run(tables)
	require.NoError(t, err)

	line := res.LineRevisions(start)
	assert.NotNil(t, line)
}
