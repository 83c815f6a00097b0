// Package darkness analyzes obscured periods in a pixel's daily series:
// spans where the snow state cannot be observed because the product coded the
// day as night or cloud. For each condition it locates the obscured period's
// boundaries and classifies what happened to the snow state across it.
//
// "Dusk" and "dawn" here are the last clear observation before and the first
// clear observation after the obscured period, not solar terms.
package darkness

import "github.com/cryogrid/snowmetrics/pkg/codes"

// Transition classifies the change in binary snow state across an obscured
// period.
type Transition int16

const (
	// TransitionNone means the condition never occurred at the pixel.
	TransitionNone Transition = 0
	// TransitionNoChange means the snow state was identical at dusk and dawn.
	TransitionNoChange Transition = 1
	// TransitionFlippedOn means snow appeared during the obscured period.
	TransitionFlippedOn Transition = 2
	// TransitionFlippedOff means snow disappeared during the obscured period.
	TransitionFlippedOff Transition = 3
)

// Event describes one pixel's obscured period for a single condition. It is
// computed fresh per pixel and never mutated. When Occurred is false the
// index and value fields are meaningless and Transition is TransitionNone;
// consumers must check Occurred before interpreting them.
type Event struct {
	Occurred     bool
	Count        int16
	FirstIndex   int16
	LastIndex    int16
	DuskIndex    int16
	DawnIndex    int16
	MedianIndex  int16
	ValueAtDusk  uint8
	ValueAtDawn  uint8
	SnowOnAtDusk bool
	SnowOnAtDawn bool
	Transition   Transition
}

// Analyzer computes obscuration events under a fixed snow-on threshold. It is
// stateless beyond configuration and safe for concurrent use.
type Analyzer struct {
	threshold uint8
}

// NewAnalyzer returns an Analyzer using the given snow-cover threshold for
// the dusk/dawn snow-state classification.
func NewAnalyzer(threshold uint8) *Analyzer {
	return &Analyzer{threshold: threshold}
}

// AnalyzePixel computes the obscuration event for one pixel and condition.
func (a *Analyzer) AnalyzePixel(values []uint8, cond codes.Condition) Event {
	code := cond.Code()

	first, last := -1, -1
	count := 0
	for i, v := range values {
		if v != code {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		count++
	}
	if first < 0 {
		return Event{}
	}

	// Clamp the boundary lookups: an obscured period starting on day 0 has no
	// earlier observation, and one running through the final day has no later
	// one. The clamped neighbor is the nearest observation that exists.
	dusk := first - 1
	if dusk < 0 {
		dusk = 0
	}
	dawn := last + 1
	if dawn > len(values)-1 {
		dawn = len(values) - 1
	}
	median := (dusk + dawn) / 2

	ev := Event{
		Occurred:    true,
		Count:       int16(count),
		FirstIndex:  int16(first),
		LastIndex:   int16(last),
		DuskIndex:   int16(dusk),
		DawnIndex:   int16(dawn),
		MedianIndex: int16(median),
		ValueAtDusk: values[dusk],
		ValueAtDawn: values[dawn],
	}
	ev.SnowOnAtDusk = codes.SnowOn(ev.ValueAtDusk, a.threshold)
	ev.SnowOnAtDawn = codes.SnowOn(ev.ValueAtDawn, a.threshold)

	switch {
	case ev.SnowOnAtDusk == ev.SnowOnAtDawn:
		ev.Transition = TransitionNoChange
	case ev.SnowOnAtDawn:
		ev.Transition = TransitionFlippedOn
	default:
		ev.Transition = TransitionFlippedOff
	}
	return ev
}
