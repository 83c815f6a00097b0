package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cryogrid/snowmetrics/internal/cube"
	"github.com/cryogrid/snowmetrics/internal/darkness"
	"github.com/cryogrid/snowmetrics/internal/metrics"
	"github.com/cryogrid/snowmetrics/internal/repair"
	"github.com/cryogrid/snowmetrics/pkg/codes"
)

// scratch is one worker's reusable per-pixel state: a single series worth of
// buffers, so a band never materializes more than one pixel's time series.
type scratch struct {
	values   []uint8
	bitflags []uint8
	snowOn   []bool
}

func newScratch(times int) *scratch {
	return &scratch{
		values:   make([]uint8, times),
		bitflags: make([]uint8, times),
		snowOn:   make([]bool, times),
	}
}

// forEachPixel runs fn over every pixel, partitioned into contiguous row
// bands processed concurrently. Each worker owns its scratch and each pixel
// writes only its own output cells, so no locking is needed.
func forEachPixel(ctx context.Context, times, height, width, workers int, fn func(y, x int, s *scratch)) error {
	g, ctx := errgroup.WithContext(ctx)

	if workers > height {
		workers = height
	}
	band := (height + workers - 1) / workers
	for start := 0; start < height; start += band {
		y0, y1 := start, start+band
		if y1 > height {
			y1 = height
		}
		g.Go(func() error {
			s := newScratch(times)
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for x := 0; x < width; x++ {
					fn(y, x, s)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// setSeason writes one pixel's season metrics into the result grids.
func setSeason(res *Result, y, x int, m metrics.Season) {
	res.FirstSnowDay.Set(y, x, m.FirstSnowDay)
	res.LastSnowDay.Set(y, x, m.LastSnowDay)
	res.FSSRange.Set(y, x, m.FSSRange)
	res.SnowDays.Set(y, x, m.SnowDays)
	res.NoSnowDays.Set(y, x, m.NoSnowDays)
	res.CSSStart.Set(y, x, m.CSS.Start)
	res.CSSEnd.Set(y, x, m.CSS.End)
	res.CSSRange.Set(y, x, m.CSS.Range)
	res.CSSSegments.Set(y, x, m.CSS.Segments)
	res.CSSTotalDays.Set(y, x, m.CSS.TotalDays)
}

// setObscuration writes one pixel's obscuration event into the grids. Events
// for pixels the condition never reached stay at the zero/nodata value in
// every field. When withValues is false the dusk/dawn value grids are left
// for a later gather pass over the cube.
func setObscuration(obs *Obscuration, y, x int, ev darkness.Event, withValues bool) {
	if !ev.Occurred {
		return
	}
	obs.Count.Set(y, x, ev.Count)
	obs.DuskIndex.Set(y, x, ev.DuskIndex)
	obs.DawnIndex.Set(y, x, ev.DawnIndex)
	obs.MedianIndex.Set(y, x, ev.MedianIndex)
	obs.Transition.Set(y, x, int16(ev.Transition))
	if ev.SnowOnAtDusk {
		obs.SnowOnAtDusk.Set(y, x, 1)
	}
	if ev.SnowOnAtDawn {
		obs.SnowOnAtDawn.Set(y, x, 1)
	}
	if withValues {
		obs.ValueAtDusk.Set(y, x, int16(ev.ValueAtDusk))
		obs.ValueAtDawn.Set(y, x, int16(ev.ValueAtDawn))
	}
}

// rawComputer computes metrics straight off the input cube, without repair.
// It mirrors the uncertainty-analysis path of the processing chain: the
// obscuration value grids are produced by a deferred gather over the cube
// keyed by the dusk/dawn index grids.
type rawComputer struct {
	opts     Options
	season   *metrics.Engine
	analyzer *darkness.Analyzer
	logger   *zap.SugaredLogger
}

func newRawComputer(opts Options, logger *zap.SugaredLogger) (*rawComputer, error) {
	return &rawComputer{
		opts:     opts,
		season:   metrics.NewEngine(opts.Year, opts.Threshold, opts.CSSMinDays, opts.CSSBridgeDays),
		analyzer: darkness.NewAnalyzer(opts.Threshold),
		logger:   logger,
	}, nil
}

func (rc *rawComputer) Compute(ctx context.Context, snow, bitflags *cube.Cube) (*Result, error) {
	rc.logger.Infow("computing raw metrics", "times", snow.Times, "height", snow.Height, "width", snow.Width)

	res := newResult(snow.Height, snow.Width)
	err := forEachPixel(ctx, snow.Times, snow.Height, snow.Width, rc.opts.workers(), func(y, x int, s *scratch) {
		snow.ExtractSeries(y, x, s.values)
		setSeason(res, y, x, rc.season.ComputePixel(s.values, s.snowOn))
		nightEv := rc.analyzer.AnalyzePixel(s.values, codes.ConditionNight)
		cloudEv := rc.analyzer.AnalyzePixel(s.values, codes.ConditionCloud)
		setObscuration(&res.Night, y, x, nightEv, false)
		setObscuration(&res.Cloud, y, x, cloudEv, false)
	})
	if err != nil {
		return nil, err
	}

	// Deferred gather of the boundary observations: the time index varies per
	// pixel, so this is an index-grid gather, not a layer slice.
	for _, obs := range []*Obscuration{&res.Night, &res.Cloud} {
		obs.ValueAtDusk = maskNodata(snow.GatherTime(obs.DuskIndex), obs.Count)
		obs.ValueAtDawn = maskNodata(snow.GatherTime(obs.DawnIndex), obs.Count)
	}
	return res, nil
}

// maskNodata zeroes gathered values for pixels the condition never reached,
// where the index grids hold the nodata value rather than a real index.
func maskNodata(g, count *cube.Grid) *cube.Grid {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if count.At(y, x) == 0 {
				g.Set(y, x, 0)
			}
		}
	}
	return g
}

// repairedComputer smooths low-illumination observations, analyzes the
// obscured periods on the smoothed series, then step-fills the obscured runs
// and computes season metrics from the repaired series. The repaired cube is
// retained in the result for downstream reuse.
type repairedComputer struct {
	opts     Options
	season   *metrics.Engine
	analyzer *darkness.Analyzer
	repairer *repair.Repairer
	logger   *zap.SugaredLogger
}

func newRepairedComputer(opts Options, logger *zap.SugaredLogger) (*repairedComputer, error) {
	repairer, err := repair.NewRepairer(opts.SmoothingWindow, opts.SmoothingPolyorder)
	if err != nil {
		return nil, err
	}
	return &repairedComputer{
		opts:     opts,
		season:   metrics.NewEngine(opts.Year, opts.Threshold, opts.CSSMinDays, opts.CSSBridgeDays),
		analyzer: darkness.NewAnalyzer(opts.Threshold),
		repairer: repairer,
		logger:   logger,
	}, nil
}

func (rc *repairedComputer) Compute(ctx context.Context, snow, bitflags *cube.Cube) (*Result, error) {
	if bitflags == nil {
		return nil, fmt.Errorf("pipeline: repaired strategy requires the QA bitflag cube")
	}
	rc.logger.Infow("computing repaired metrics", "times", snow.Times, "height", snow.Height, "width", snow.Width)

	repaired, err := cube.New(snow.Times, snow.Height, snow.Width)
	if err != nil {
		return nil, err
	}

	res := newResult(snow.Height, snow.Width)
	err = forEachPixel(ctx, snow.Times, snow.Height, snow.Width, rc.opts.workers(), func(y, x int, s *scratch) {
		snow.ExtractSeries(y, x, s.values)
		bitflags.ExtractSeries(y, x, s.bitflags)

		rc.repairer.SmoothPixel(s.values, s.bitflags)

		// Obscuration is judged on the smoothed series, before the fill
		// erases the night and cloud codes it reports on.
		nightEv := rc.analyzer.AnalyzePixel(s.values, codes.ConditionNight)
		cloudEv := rc.analyzer.AnalyzePixel(s.values, codes.ConditionCloud)
		setObscuration(&res.Night, y, x, nightEv, true)
		setObscuration(&res.Cloud, y, x, cloudEv, true)

		rc.repairer.FillPixel(s.values)
		repaired.SetSeries(y, x, s.values)

		setSeason(res, y, x, rc.season.ComputePixel(s.values, s.snowOn))
	})
	if err != nil {
		return nil, err
	}

	res.Repaired = repaired
	return res, nil
}
