// Package series implements per-pixel time-series primitives: snow-on
// classification of a coded daily series and maximal-run detection with
// optional small-gap bridging.
//
// A series is one snow year of daily observations for a single pixel,
// chronologically ordered. All functions are pure and allocate at most one
// series worth of scratch state, so callers can process millions of pixels a
// tile at a time.
package series

import "github.com/cryogrid/snowmetrics/pkg/codes"

// Run is a maximal contiguous span of true values, with inclusive bounds.
type Run struct {
	Start int
	End   int
}

// Len returns the number of days covered by the run.
func (r Run) Len() int {
	return r.End - r.Start + 1
}

// SnowOn classifies a coded series into a boolean snow-on series. dst must be
// the same length as values; it is returned for convenience.
func SnowOn(values []uint8, threshold uint8, dst []bool) []bool {
	for i, v := range values {
		dst[i] = codes.SnowOn(v, threshold)
	}
	return dst
}

// FindRuns returns the maximal contiguous runs of true values, ordered by
// start index. An all-false series yields no runs; an all-true series yields
// a single run spanning the whole series.
func FindRuns(b []bool) []Run {
	var runs []Run
	start := -1
	for i, v := range b {
		switch {
		case v && start < 0:
			start = i
		case !v && start >= 0:
			runs = append(runs, Run{Start: start, End: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(b) - 1})
	}
	return runs
}

// FindRunsBridged behaves like FindRuns after treating any false run of
// length <= maxGap sandwiched between two true values as true. Gaps touching
// either series boundary are never bridged.
func FindRunsBridged(b []bool, maxGap int) []Run {
	if maxGap <= 0 {
		return FindRuns(b)
	}
	bridged := make([]bool, len(b))
	copy(bridged, b)
	gapStart := -1
	lastTrue := -1
	for i, v := range b {
		if v {
			if lastTrue >= 0 && gapStart >= 0 && i-gapStart <= maxGap {
				for j := gapStart; j < i; j++ {
					bridged[j] = true
				}
			}
			lastTrue = i
			gapStart = -1
			continue
		}
		if gapStart < 0 {
			gapStart = i
		}
	}
	return FindRuns(bridged)
}

// FindCodeRuns returns the maximal contiguous runs of a target code within a
// coded series.
func FindCodeRuns(values []uint8, code uint8) []Run {
	var runs []Run
	start := -1
	for i, v := range values {
		switch {
		case v == code && start < 0:
			start = i
		case v != code && start >= 0:
			runs = append(runs, Run{Start: start, End: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, End: len(values) - 1})
	}
	return runs
}

// FirstTrue returns the index of the first true value, or -1 if none exists.
// The explicit -1 avoids the classic failure of reading an argmax of zero off
// an all-false series as "day zero".
func FirstTrue(b []bool) int {
	for i, v := range b {
		if v {
			return i
		}
	}
	return -1
}

// LastTrue returns the index of the last true value, or -1 if none exists.
func LastTrue(b []bool) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] {
			return i
		}
	}
	return -1
}

// CountTrue returns the number of true values in the series.
func CountTrue(b []bool) int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}
