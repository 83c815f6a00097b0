// Package repair cleans a pixel's coded daily series before metric
// computation. Two independent passes run in sequence: Savitzky-Golay
// smoothing of valid observations flagged as low-illumination, then a
// step-function fill of night- and cloud-obscured runs from their nearest
// clear neighbors.
package repair

import (
	"math"

	"github.com/cryogrid/snowmetrics/internal/series"
	"github.com/cryogrid/snowmetrics/pkg/codes"
)

// Repairer applies the two repair passes under a fixed filter configuration.
// It holds only read-only state and is safe for concurrent use across pixel
// workers.
type Repairer struct {
	filter *SavGol
}

// NewRepairer builds a Repairer with the given smoothing window and
// polynomial order. Configuration errors (even window, order too large)
// surface here, before any pixel is touched.
func NewRepairer(window, polyorder int) (*Repairer, error) {
	filter, err := NewSavGol(window, polyorder)
	if err != nil {
		return nil, err
	}
	return &Repairer{filter: filter}, nil
}

// RepairPixel repairs one pixel's series in place. bitflags is the parallel
// per-observation QA series. Smoothing runs first so the step-fill boundary
// values reflect smoothed observations; night runs are filled before cloud
// runs so a cloud run bordering a night run sees an already-filled neighbor.
func (r *Repairer) RepairPixel(values, bitflags []uint8) {
	r.SmoothPixel(values, bitflags)
	r.FillPixel(values)
}

// FillPixel applies only the step-fill pass, night runs before cloud runs.
func (r *Repairer) FillPixel(values []uint8) {
	stepFillCode(values, codes.Night)
	stepFillCode(values, codes.Cloud)
}

// SmoothPixel applies the polynomial filter over each maximal run of
// observations that are both valid nonzero cover values and QA-flagged as
// low illumination. Runs shorter than the filter window carry too few samples
// to fit and pass through unmodified.
func (r *Repairer) SmoothPixel(values, bitflags []uint8) {
	mask := make([]bool, len(values))
	for i, v := range values {
		mask[i] = v >= 1 && v <= codes.MaxValidCover && codes.LowIllumination(bitflags[i])
	}

	for _, run := range series.FindRuns(mask) {
		if run.Len() < r.filter.Window() {
			continue
		}
		buf := make([]float64, run.Len())
		for i := range buf {
			buf[i] = float64(values[run.Start+i])
		}
		r.filter.Smooth(buf)
		for i, f := range buf {
			values[run.Start+i] = clampCover(f)
		}
	}
}

// stepFillCode fills each contiguous run of the target sentinel code as a
// step function: the first half takes the last valid value before the run,
// the second half the first valid value after it. The midpoint split is
// deliberate; the true transition instant inside an obscured window is
// unknowable, so interpolation would only invent precision.
func stepFillCode(values []uint8, code uint8) {
	n := len(values)
	for _, run := range series.FindCodeRuns(values, code) {
		hasBefore := run.Start > 0
		hasAfter := run.End < n-1

		switch {
		case hasBefore && hasAfter:
			before := values[run.Start-1]
			after := values[run.End+1]
			median := (run.Start + run.End) / 2
			for i := run.Start; i < median; i++ {
				values[i] = before
			}
			for i := median; i <= run.End; i++ {
				values[i] = after
			}
		case hasAfter:
			// run touches day 0: no earlier observation exists
			after := values[run.End+1]
			for i := run.Start; i <= run.End; i++ {
				values[i] = after
			}
		case hasBefore:
			// run touches the final day: no later observation exists
			before := values[run.Start-1]
			for i := run.Start; i <= run.End; i++ {
				values[i] = before
			}
		default:
			// the whole series is obscured; nothing valid to fill from
		}
	}
}

func clampCover(f float64) uint8 {
	v := math.Round(f)
	if v < 0 {
		return 0
	}
	if v > codes.MaxValidCover {
		return codes.MaxValidCover
	}
	return uint8(v)
}
