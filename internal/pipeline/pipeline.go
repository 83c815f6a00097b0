// Package pipeline orchestrates the per-pixel engines over a full tile:
// optional gap repair, season metrics, and obscuration analysis for night and
// cloud, run concurrently over contiguous row bands. Supports pluggable
// computation strategies so metrics can be produced from the raw cube or from
// a repaired one.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/cryogrid/snowmetrics/internal/cube"
	"github.com/cryogrid/snowmetrics/pkg/codes"
	"github.com/cryogrid/snowmetrics/pkg/snowyear"
)

// Options is the explicit engine configuration. There is no package-level
// state; every component receives its parameters from here.
type Options struct {
	Year               snowyear.Year
	Threshold          uint8 // snow-cover percentage, snow-on above this
	CSSMinDays         int   // minimum qualifying continuous-season length
	CSSBridgeDays      int   // gap tolerance when assembling season segments
	SmoothingWindow    int   // Savitzky-Golay window, positive odd
	SmoothingPolyorder int   // polynomial order, less than window
	Workers            int   // concurrent row bands, defaults to GOMAXPROCS
}

// DefaultOptions returns the production parameters for a snow year.
func DefaultOptions(year snowyear.Year) Options {
	return Options{
		Year:               year,
		Threshold:          50,
		CSSMinDays:         14,
		CSSBridgeDays:      2,
		SmoothingWindow:    5,
		SmoothingPolyorder: 1,
	}
}

// Validate fails fast on caller contract violations so bad parameters never
// reach per-pixel iteration.
func (o Options) Validate() error {
	if o.Threshold < 1 || o.Threshold > codes.MaxValidCover {
		return fmt.Errorf("pipeline: snow cover threshold must be in [1, %d], got %d", codes.MaxValidCover, o.Threshold)
	}
	if o.CSSMinDays < 1 {
		return fmt.Errorf("pipeline: CSS minimum segment length must be positive, got %d", o.CSSMinDays)
	}
	if o.CSSBridgeDays < 0 {
		return fmt.Errorf("pipeline: CSS bridge tolerance must be non-negative, got %d", o.CSSBridgeDays)
	}
	if o.SmoothingWindow < 1 || o.SmoothingWindow%2 == 0 {
		return fmt.Errorf("pipeline: smoothing window must be a positive odd integer, got %d", o.SmoothingWindow)
	}
	if o.SmoothingPolyorder < 0 || o.SmoothingPolyorder >= o.SmoothingWindow {
		return fmt.Errorf("pipeline: smoothing polyorder must be in [0, window), got %d", o.SmoothingPolyorder)
	}
	if o.Workers < 0 {
		return fmt.Errorf("pipeline: workers must be non-negative, got %d", o.Workers)
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Obscuration holds the per-pixel output grids for one obscuration source.
type Obscuration struct {
	Count        *cube.Grid
	DuskIndex    *cube.Grid
	DawnIndex    *cube.Grid
	MedianIndex  *cube.Grid
	ValueAtDusk  *cube.Grid
	ValueAtDawn  *cube.Grid
	SnowOnAtDusk *cube.Grid
	SnowOnAtDawn *cube.Grid
	Transition   *cube.Grid
}

// Result is the complete per-tile output: one int16 grid per metric, plus the
// repaired cube when the computing strategy performs repair.
type Result struct {
	FirstSnowDay *cube.Grid
	LastSnowDay  *cube.Grid
	FSSRange     *cube.Grid
	SnowDays     *cube.Grid
	NoSnowDays   *cube.Grid

	CSSStart     *cube.Grid
	CSSEnd       *cube.Grid
	CSSRange     *cube.Grid
	CSSSegments  *cube.Grid
	CSSTotalDays *cube.Grid

	Night Obscuration
	Cloud Obscuration

	// Repaired is the cleaned cube, nil for the raw strategy.
	Repaired *cube.Cube
}

// Grids returns every output grid keyed by its metric name, in the naming
// scheme the downstream raster tooling expects.
func (r *Result) Grids() map[string]*cube.Grid {
	grids := map[string]*cube.Grid{
		"first_snow_day": r.FirstSnowDay,
		"last_snow_day":  r.LastSnowDay,
		"fss_range":      r.FSSRange,
		"snow_days":      r.SnowDays,
		"no_snow_days":   r.NoSnowDays,
		"css_start":      r.CSSStart,
		"css_end":        r.CSSEnd,
		"css_range":      r.CSSRange,
		"css_segments":   r.CSSSegments,
		"css_total_days": r.CSSTotalDays,
	}
	for cond, obs := range map[string]Obscuration{"night": r.Night, "cloud": r.Cloud} {
		grids[cond+"_obscured_day_count"] = obs.Count
		grids["dusk_index_of_last_obs_prior_to_"+cond] = obs.DuskIndex
		grids["dawn_index_of_first_obs_after_"+cond] = obs.DawnIndex
		grids["median_index_of_"+cond+"_period"] = obs.MedianIndex
		grids["value_at_"+cond+"_dusk"] = obs.ValueAtDusk
		grids["value_at_"+cond+"_dawn"] = obs.ValueAtDawn
		grids["snow_is_on_at_"+cond+"_dusk"] = obs.SnowOnAtDusk
		grids["snow_is_on_at_"+cond+"_dawn"] = obs.SnowOnAtDawn
		grids["snow_transition_cases_"+cond] = obs.Transition
	}
	return grids
}

// Computer is a metric computation strategy over a tile's cubes.
type Computer interface {
	// Compute produces the full metric set for a snow cube and its parallel
	// QA bitflag cube.
	Compute(ctx context.Context, snow, bitflags *cube.Cube) (*Result, error)
}

// ComputerType identifies the computation strategy.
type ComputerType string

const (
	// ComputerTypeRaw computes metrics straight off the input cube.
	ComputerTypeRaw ComputerType = "raw"

	// ComputerTypeRepaired smooths low-illumination observations and
	// step-fills obscured runs before computing metrics.
	ComputerTypeRepaired ComputerType = "repaired"
)

// Calculator runs tile computations using a pluggable strategy.
type Calculator struct {
	computer Computer
	logger   *zap.SugaredLogger
}

// NewCalculator creates a Calculator with the specified strategy.
func NewCalculator(opts Options, logger *zap.SugaredLogger, computerType ComputerType) (*Calculator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var computer Computer
	var err error
	switch computerType {
	case ComputerTypeRaw:
		computer, err = newRawComputer(opts, logger)
	case ComputerTypeRepaired, "":
		computer, err = newRepairedComputer(opts, logger)
	default:
		return nil, fmt.Errorf("pipeline: unknown computer type %q", computerType)
	}
	if err != nil {
		return nil, err
	}

	return &Calculator{computer: computer, logger: logger}, nil
}

// Compute produces the tile's metric set using the configured strategy.
func (c *Calculator) Compute(ctx context.Context, snow, bitflags *cube.Cube) (*Result, error) {
	if bitflags != nil {
		if snow.Times != bitflags.Times || snow.Height != bitflags.Height || snow.Width != bitflags.Width {
			return nil, fmt.Errorf("pipeline: bitflag cube %dx%dx%d does not match snow cube %dx%dx%d",
				bitflags.Times, bitflags.Height, bitflags.Width, snow.Times, snow.Height, snow.Width)
		}
	}
	return c.computer.Compute(ctx, snow, bitflags)
}

func newResult(height, width int) *Result {
	newObscuration := func() Obscuration {
		return Obscuration{
			Count:        cube.NewGrid(height, width),
			DuskIndex:    cube.NewGrid(height, width),
			DawnIndex:    cube.NewGrid(height, width),
			MedianIndex:  cube.NewGrid(height, width),
			ValueAtDusk:  cube.NewGrid(height, width),
			ValueAtDawn:  cube.NewGrid(height, width),
			SnowOnAtDusk: cube.NewGrid(height, width),
			SnowOnAtDawn: cube.NewGrid(height, width),
			Transition:   cube.NewGrid(height, width),
		}
	}
	return &Result{
		FirstSnowDay: cube.NewGrid(height, width),
		LastSnowDay:  cube.NewGrid(height, width),
		FSSRange:     cube.NewGrid(height, width),
		SnowDays:     cube.NewGrid(height, width),
		NoSnowDays:   cube.NewGrid(height, width),
		CSSStart:     cube.NewGrid(height, width),
		CSSEnd:       cube.NewGrid(height, width),
		CSSRange:     cube.NewGrid(height, width),
		CSSSegments:  cube.NewGrid(height, width),
		CSSTotalDays: cube.NewGrid(height, width),
		Night:        newObscuration(),
		Cloud:        newObscuration(),
	}
}
