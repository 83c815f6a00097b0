package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cryogrid/snowmetrics/internal/cube"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, 2017, "h11v02", "repaired", 50)
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("BeginRun returned an empty run ID")
	}

	r, err := s.GetRun(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if r.SnowYear != 2017 || r.TileID != "h11v02" || r.Strategy != "repaired" || r.Threshold != 50 {
		t.Errorf("GetRun = %+v", r)
	}
	if r.Started.IsZero() {
		t.Error("run has no start time")
	}
	if !r.Completed.IsZero() {
		t.Error("run is marked completed before CompleteRun")
	}

	if err := s.CompleteRun(ctx, runID); err != nil {
		t.Fatal(err)
	}
	r, err = s.GetRun(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if r.Completed.IsZero() {
		t.Error("run has no completion time after CompleteRun")
	}
	if r.Completed.Before(r.Started) {
		t.Errorf("completed %v precedes started %v", r.Completed, r.Started)
	}
}

func TestGetRunUnknownID(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetRun(context.Background(), "no-such-run"); err == nil {
		t.Error("GetRun returned no error for an unknown run ID")
	}
}

func TestRecordAndFetchGridStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, 2017, "h11v02", "raw", 50)
	if err != nil {
		t.Fatal(err)
	}

	g := cube.NewGrid(2, 2)
	copy(g.Data(), []int16{0, 10, 20, 30})
	if err := s.RecordGridStats(ctx, runID, map[string]*cube.Grid{"first_snow_day": g}); err != nil {
		t.Fatal(err)
	}

	st, err := s.GetGridStats(ctx, runID, "first_snow_day")
	if err != nil {
		t.Fatal(err)
	}
	if st.Min != 10 || st.Max != 30 || st.Mean != 20 || st.NodataCount != 1 {
		t.Errorf("GetGridStats = %+v, want min 10 max 30 mean 20 nodata 1", st)
	}

	// re-recording replaces rather than duplicates
	copy(g.Data(), []int16{5, 5, 5, 5})
	if err := s.RecordGridStats(ctx, runID, map[string]*cube.Grid{"first_snow_day": g}); err != nil {
		t.Fatal(err)
	}
	st, err = s.GetGridStats(ctx, runID, "first_snow_day")
	if err != nil {
		t.Fatal(err)
	}
	if st.Min != 5 || st.Max != 5 || st.NodataCount != 0 {
		t.Errorf("after replace GetGridStats = %+v", st)
	}
}

func TestListRunsAndStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.BeginRun(ctx, 2016, "h11v02", "raw", 50)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.BeginRun(ctx, 2017, "h12v01", "repaired", 40)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns returned %d runs, want 2", len(runs))
	}
	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[first] || !ids[second] {
		t.Errorf("ListRuns = %v, want both %s and %s", ids, first, second)
	}

	g := cube.NewGrid(1, 2)
	copy(g.Data(), []int16{213, 577})
	grids := map[string]*cube.Grid{"first_snow_day": g, "last_snow_day": g}
	if err := s.RecordGridStats(ctx, second, grids); err != nil {
		t.Fatal(err)
	}

	stats, err := s.ListGridStats(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("ListGridStats returned %d rows, want 2", len(stats))
	}
	// ordered by metric name
	if stats[0].Metric != "first_snow_day" || stats[1].Metric != "last_snow_day" {
		t.Errorf("metric order = %s, %s", stats[0].Metric, stats[1].Metric)
	}

	if other, err := s.ListGridStats(ctx, first); err != nil {
		t.Fatal(err)
	} else if len(other) != 0 {
		t.Errorf("run %s has %d stats rows, want 0", first, len(other))
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name       string
		data       []int16
		wantMin    int16
		wantMax    int16
		wantMean   float64
		wantNodata int
	}{
		{"mixed", []int16{0, 10, 20, 30}, 10, 30, 20, 1},
		{"all nodata", []int16{0, 0, 0, 0}, 0, 0, 0, 4},
		{"negative values", []int16{-5, 0, 5, 0}, -5, 5, 0, 2},
		{"single value", []int16{577}, 577, 577, 577, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := cube.NewGrid(1, len(tt.data))
			copy(g.Data(), tt.data)
			st := Summarize("metric", g)
			if st.Min != tt.wantMin || st.Max != tt.wantMax {
				t.Errorf("min/max = %d/%d, want %d/%d", st.Min, st.Max, tt.wantMin, tt.wantMax)
			}
			if st.Mean != tt.wantMean {
				t.Errorf("mean = %v, want %v", st.Mean, tt.wantMean)
			}
			if st.NodataCount != tt.wantNodata {
				t.Errorf("nodata = %d, want %d", st.NodataCount, tt.wantNodata)
			}
		})
	}
}
