// Package metrics computes the annual snow-season summary statistics for a
// single pixel's daily series: first/last snow day, full-snow-season range,
// snow-day and no-snow-day counts, and the continuous snow season.
package metrics

import (
	"github.com/cryogrid/snowmetrics/internal/series"
	"github.com/cryogrid/snowmetrics/pkg/snowyear"
)

// CSS holds the continuous-snow-season result for a pixel. Start and End are
// day-of-snow-year values; Range, Segments and TotalDays are raw day counts.
// A pixel with no qualifying segment carries the zero value.
type CSS struct {
	Start     int16
	End       int16
	Range     int16
	Segments  int16
	TotalDays int16
}

// Season holds the per-pixel snow season metrics. FirstSnowDay, LastSnowDay
// and FSSRange are zero when no snow was observed all year; zero is the
// nodata value of the output grids and never a real day number, since
// day-of-snow-year starts at 213.
type Season struct {
	FirstSnowDay int16
	LastSnowDay  int16
	FSSRange     int16
	SnowDays     int16
	NoSnowDays   int16
	CSS          CSS
}

// Engine computes season metrics under a fixed configuration. It is
// stateless beyond configuration and safe for concurrent use.
type Engine struct {
	threshold  uint8
	cssMinDays int
	cssBridge  int
	year       snowyear.Year
}

// NewEngine returns an Engine for the given snow year. threshold is the
// snow-cover percentage above which a pixel counts as snow-on, cssMinDays the
// minimum qualifying segment length, and cssBridge the gap tolerance in days
// used when assembling continuous-season segments.
func NewEngine(year snowyear.Year, threshold uint8, cssMinDays, cssBridge int) *Engine {
	return &Engine{
		threshold:  threshold,
		cssMinDays: cssMinDays,
		cssBridge:  cssBridge,
		year:       year,
	}
}

// ComputePixel computes the season metrics for one pixel's coded series.
// snowOn is caller-owned scratch of the same length, overwritten with the
// boolean snow-on classification.
func (e *Engine) ComputePixel(values []uint8, snowOn []bool) Season {
	series.SnowOn(values, e.threshold, snowOn)

	var m Season
	m.SnowDays = int16(series.CountTrue(snowOn))
	m.NoSnowDays = e.countNoSnowDays(values)

	first := series.FirstTrue(snowOn)
	if first < 0 {
		// no snow all year: day metrics stay at the nodata value
		return m
	}
	last := series.LastTrue(snowOn)

	m.FirstSnowDay = int16(e.year.DayOfSnowYear(first))
	m.LastSnowDay = int16(e.year.DayOfSnowYear(last))
	m.FSSRange = m.LastSnowDay - m.FirstSnowDay + 1

	m.CSS = e.computeCSS(snowOn, int(m.SnowDays))
	return m
}

// countNoSnowDays counts confidently snow-free observations: valid cover
// values at or below the threshold. Sentinel codes never qualify. The count
// is only meaningful on a repaired series, where obscured observations have
// already been resolved to cover values.
func (e *Engine) countNoSnowDays(values []uint8) int16 {
	n := 0
	for _, v := range values {
		if v <= e.threshold {
			n++
		}
	}
	return int16(n)
}

func (e *Engine) computeCSS(snowOn []bool, snowDays int) CSS {
	days := len(snowOn)
	if snowDays == days {
		// Permanent snow (glacier or perennial snowfield): the whole year is
		// one season. Handled before run selection so an all-constant series
		// never degenerates into "no season".
		return CSS{
			Start:     snowyear.FirstDay,
			End:       int16(e.year.DayOfSnowYear(days - 1)),
			Range:     int16(days),
			Segments:  1,
			TotalDays: int16(days),
		}
	}

	runs := series.FindRunsBridged(snowOn, e.cssBridge)

	var best series.Run
	bestLen := 0
	segments := 0
	total := 0
	for _, r := range runs {
		if r.Len() < e.cssMinDays {
			continue
		}
		segments++
		total += r.Len()
		if r.Len() > bestLen {
			best = r
			bestLen = r.Len()
		}
	}
	if segments == 0 {
		return CSS{}
	}

	return CSS{
		Start:     int16(e.year.DayOfSnowYear(best.Start)),
		End:       int16(e.year.DayOfSnowYear(best.End)),
		Range:     int16(best.Len()),
		Segments:  int16(segments),
		TotalDays: int16(total),
	}
}
