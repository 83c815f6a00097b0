// Package snowyear handles the August-through-July snow year and the
// day-of-snow-year numbering used by all day-indexed metrics.
//
// Day-of-snow-year re-bases the familiar day-of-year value so the numbering
// increases monotonically across the two calendar years a snow year spans:
// 1 August is day 213, and 31 July of the following year is day 577 (578 when
// the second calendar year is a leap year).
package snowyear

import "time"

// BaseOffset is added to a 1-indexed snow-year day to obtain day-of-snow-year.
// 1 August is day 213 of a non-leap calendar year, so the offset is 212.
const BaseOffset = 212

// FirstDay is the day-of-snow-year value of 1 August.
const FirstDay = BaseOffset + 1

// LeapDayIndex is the 0-based position of 29 February within a leap snow
// year: 153 days for August through December, then 59 days to 28 February.
const LeapDayIndex = 212

// Year identifies a snow year: the span from 1 August of the named calendar
// year through 31 July of the next.
type Year int

// SecondYearIsLeap reports whether the snow year's second calendar year, the
// one that may contain 29 February, is a leap year.
func (y Year) SecondYearIsLeap() bool {
	return isLeap(int(y) + 1)
}

// Days returns the number of daily observations in the snow year.
func (y Year) Days() int {
	if y.SecondYearIsLeap() {
		return 366
	}
	return 365
}

// Start returns midnight UTC on 1 August of the snow year.
func (y Year) Start() time.Time {
	return time.Date(int(y), time.August, 1, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC on 31 July of the snow year's second calendar year.
func (y Year) End() time.Time {
	return time.Date(int(y)+1, time.July, 31, 0, 0, 0, 0, time.UTC)
}

// Shift converts a 1-indexed snow-year day number to day-of-snow-year.
//
// leapAccrued must be true iff the metric being converted is anchored on or
// after 29 February of a leap second calendar year, in which case the day
// number is expected to be counted in a 365-day frame and the accrued leap
// day is added through the larger offset. The flag is deliberately an
// explicit parameter at every call site rather than a package toggle; mixing
// the two offsets up shifts late-season metrics by a day.
func Shift(day int, leapYear, leapAccrued bool) int {
	if leapYear && leapAccrued {
		return day + BaseOffset + 1
	}
	return day + BaseOffset
}

// Shift converts a 1-indexed snow-year day number to day-of-snow-year using
// the year's own leap status.
func (y Year) Shift(day int, leapAccrued bool) int {
	return Shift(day, y.SecondYearIsLeap(), leapAccrued)
}

// DayOfSnowYear converts a 0-based series index to day-of-snow-year. Indices
// on or after the leap-day position of a leap snow year have already accrued
// the leap day, so their day count is taken in the 365-day frame and the
// accrued offset applies. The result is continuous in index space and
// bounded by 578.
func (y Year) DayOfSnowYear(index int) int {
	if y.SecondYearIsLeap() && index >= LeapDayIndex {
		return y.Shift(index, true)
	}
	return y.Shift(index+1, false)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
