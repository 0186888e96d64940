package vintages

import (
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/oluski/go-vintages/snapshot"
	"github.com/pkg/profile"
)

var benchRes *Results

func BenchmarkPipelineRun(b *testing.B) {
	start := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	tables := make([]*snapshot.Table, 0, 60)
	for v := 0; v < 60; v++ {
		vintage := time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC).AddDate(0, v, 0)
		st := &snapshot.Table{
			Source:       vintage.Format("v-02-01-2006.csv"),
			Vintage:      vintage,
			VintageKnown: true,
		}
		months := 60 + v
		for i := 0; i < months; i++ {
			st.Obs = append(st.Obs, snapshot.Observation{
				Month: start.AddDate(0, i, 0),
				Value: 800 + 4*float64(i) + float64(v%5),
			})
		}
		st.Retained = months
		tables = append(tables, st)
	}

	p := New(nil)
	var err error

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for i := 0; i < b.N; i++ {
		benchRes, err = p.Run(tables)
		if err != nil {
			panic(err)
		}
	}
	b.StopTimer()

	bytes, err := json.MarshalIndent(benchRes, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile("benchmark_results.json", bytes, 0o644); err != nil {
		panic(err)
	}
}
