package darkness

import (
	"testing"

	"github.com/cryogrid/snowmetrics/pkg/codes"
)

func TestAnalyzePixelNeverOccurred(t *testing.T) {
	values := []uint8{10, 20, 80, 90, 10}
	ev := NewAnalyzer(50).AnalyzePixel(values, codes.ConditionNight)

	if ev.Occurred {
		t.Fatal("Occurred = true for a series with no night codes")
	}
	if ev.Transition != TransitionNone {
		t.Errorf("Transition = %d, want TransitionNone", ev.Transition)
	}
	if ev.Count != 0 {
		t.Errorf("Count = %d, want 0", ev.Count)
	}
}

func TestAnalyzePixelInterior(t *testing.T) {
	// Snow flips on during the obscured period: off at dusk, on at dawn.
	values := []uint8{10, 20, codes.Night, codes.Night, codes.Night, 80, 90}
	ev := NewAnalyzer(50).AnalyzePixel(values, codes.ConditionNight)

	if !ev.Occurred {
		t.Fatal("Occurred = false")
	}
	if ev.Count != 3 {
		t.Errorf("Count = %d, want 3", ev.Count)
	}
	if ev.FirstIndex != 2 || ev.LastIndex != 4 {
		t.Errorf("First/Last = %d/%d, want 2/4", ev.FirstIndex, ev.LastIndex)
	}
	if ev.DuskIndex != 1 || ev.DawnIndex != 5 {
		t.Errorf("Dusk/Dawn = %d/%d, want 1/5", ev.DuskIndex, ev.DawnIndex)
	}
	if ev.MedianIndex != 3 {
		t.Errorf("Median = %d, want 3", ev.MedianIndex)
	}
	if ev.ValueAtDusk != 20 || ev.ValueAtDawn != 80 {
		t.Errorf("values = %d/%d, want 20/80", ev.ValueAtDusk, ev.ValueAtDawn)
	}
	if ev.SnowOnAtDusk || !ev.SnowOnAtDawn {
		t.Errorf("snow state = %v/%v, want false/true", ev.SnowOnAtDusk, ev.SnowOnAtDawn)
	}
	if ev.Transition != TransitionFlippedOn {
		t.Errorf("Transition = %d, want TransitionFlippedOn", ev.Transition)
	}
}

func TestAnalyzePixelTransitions(t *testing.T) {
	tests := []struct {
		name     string
		duskVal  uint8
		dawnVal  uint8
		want     Transition
	}{
		{"no change both off", 10, 20, TransitionNoChange},
		{"no change both on", 80, 90, TransitionNoChange},
		{"flipped on", 10, 80, TransitionFlippedOn},
		{"flipped off", 80, 10, TransitionFlippedOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := []uint8{tt.duskVal, codes.Cloud, codes.Cloud, tt.dawnVal}
			ev := NewAnalyzer(50).AnalyzePixel(values, codes.ConditionCloud)
			if ev.Transition != tt.want {
				t.Errorf("Transition = %d, want %d", ev.Transition, tt.want)
			}
		})
	}
}

func TestAnalyzePixelClampAtStart(t *testing.T) {
	// Obscured period starts on day 0: dusk clamps to 0 rather than -1.
	values := []uint8{codes.Night, codes.Night, 80, 10}
	ev := NewAnalyzer(50).AnalyzePixel(values, codes.ConditionNight)

	if ev.DuskIndex != 0 {
		t.Errorf("DuskIndex = %d, want 0", ev.DuskIndex)
	}
	if ev.DawnIndex != 2 {
		t.Errorf("DawnIndex = %d, want 2", ev.DawnIndex)
	}
	// the dusk observation is the night code itself; classified as snow-off
	if ev.ValueAtDusk != codes.Night {
		t.Errorf("ValueAtDusk = %d, want the night code", ev.ValueAtDusk)
	}
	if ev.SnowOnAtDusk {
		t.Error("SnowOnAtDusk = true for a sentinel value")
	}
}

func TestAnalyzePixelClampAtEnd(t *testing.T) {
	// Obscured period runs through the final day: dawn clamps to the last
	// valid index rather than running out of bounds.
	values := []uint8{10, 80, codes.Cloud, codes.Cloud}
	ev := NewAnalyzer(50).AnalyzePixel(values, codes.ConditionCloud)

	if ev.DawnIndex != 3 {
		t.Errorf("DawnIndex = %d, want 3", ev.DawnIndex)
	}
	if ev.DuskIndex != 1 {
		t.Errorf("DuskIndex = %d, want 1", ev.DuskIndex)
	}
	if ev.MedianIndex != 2 {
		t.Errorf("MedianIndex = %d, want 2", ev.MedianIndex)
	}
}

func TestAnalyzePixelSpansFragmentedPeriods(t *testing.T) {
	// Two separate cloud runs: the event covers first occurrence to last,
	// with the count totaling both runs.
	values := []uint8{10, codes.Cloud, 60, 60, codes.Cloud, codes.Cloud, 80}
	ev := NewAnalyzer(50).AnalyzePixel(values, codes.ConditionCloud)

	if ev.FirstIndex != 1 || ev.LastIndex != 5 {
		t.Errorf("First/Last = %d/%d, want 1/5", ev.FirstIndex, ev.LastIndex)
	}
	if ev.Count != 3 {
		t.Errorf("Count = %d, want 3", ev.Count)
	}
	if ev.DuskIndex != 0 || ev.DawnIndex != 6 {
		t.Errorf("Dusk/Dawn = %d/%d, want 0/6", ev.DuskIndex, ev.DawnIndex)
	}
}
