package repair

import (
	"testing"

	"github.com/cryogrid/snowmetrics/pkg/codes"
)

func TestNewSavGolValidation(t *testing.T) {
	tests := []struct {
		name      string
		window    int
		polyorder int
		wantErr   bool
	}{
		{"valid default", 5, 1, false},
		{"wider window", 7, 2, false},
		{"even window", 4, 1, true},
		{"zero window", 0, 0, true},
		{"negative window", -5, 1, true},
		{"order equals window", 5, 5, true},
		{"order exceeds window", 3, 4, true},
		{"negative order", 5, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSavGol(tt.window, tt.polyorder)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSavGol(%d, %d) error = %v, wantErr %v",
					tt.window, tt.polyorder, err, tt.wantErr)
			}
		})
	}
}

func TestSavGolPreservesLinearData(t *testing.T) {
	// A degree-1 fit reproduces linear data exactly, edges included.
	s, err := NewSavGol(5, 1)
	if err != nil {
		t.Fatal(err)
	}
	data := []float64{10, 20, 30, 40, 50, 60, 70}
	want := []float64{10, 20, 30, 40, 50, 60, 70}
	s.Smooth(data)
	for i := range data {
		if diff := data[i] - want[i]; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("data[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestSavGolShortDataUnchanged(t *testing.T) {
	s, err := NewSavGol(5, 1)
	if err != nil {
		t.Fatal(err)
	}
	data := []float64{3, 9, 1}
	s.Smooth(data)
	if data[0] != 3 || data[1] != 9 || data[2] != 1 {
		t.Errorf("short series modified: %v", data)
	}
}

func TestSmoothPixelLowIlluminationRun(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Five flagged observations around 60; the linear fit has slope -0.3,
	// so the smoothed run is 60.6, 60.3, 60, 59.7, 59.4 before rounding.
	values := []uint8{55, 60, 62, 58, 61, 59, 55}
	bitflags := []uint8{0, 128, 128, 128, 128, 128, 0}
	r.SmoothPixel(values, bitflags)

	want := []uint8{55, 61, 60, 60, 60, 59, 55}
	for i := range values {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %d, want %d (full: %v)", i, values[i], want[i], values)
		}
	}
}

func TestSmoothPixelSkipsShortRuns(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Only three consecutive flagged days: fewer than the window, untouched.
	values := []uint8{55, 60, 62, 58, 55}
	bitflags := []uint8{0, 128, 128, 128, 0}
	want := []uint8{55, 60, 62, 58, 55}
	r.SmoothPixel(values, bitflags)
	for i := range values {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %d, want %d", i, values[i], want[i])
		}
	}
}

func TestSmoothPixelIgnoresSentinelsAndUnflagged(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Sentinel codes break the mask even when flagged, and flagged zeros are
	// excluded, so no run reaches the window length.
	values := []uint8{60, 62, codes.Cloud, 58, 61, 0, 59, 60, 62}
	bitflags := []uint8{128, 128, 128, 128, 128, 128, 128, 0, 128}
	want := append([]uint8(nil), values...)
	r.SmoothPixel(values, bitflags)
	for i := range values {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %d, want %d", i, values[i], want[i])
		}
	}
}

func TestFillPixelInteriorRun(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	values := []uint8{10, codes.Night, codes.Night, codes.Night, codes.Night, 80}
	r.FillPixel(values)

	want := []uint8{10, 10, 80, 80, 80, 80}
	for i := range values {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %d, want %d (full: %v)", i, values[i], want[i], values)
		}
	}
}

func TestFillPixelBoundaryRuns(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		values []uint8
		want   []uint8
	}{
		{
			"run touches start",
			[]uint8{codes.Cloud, codes.Cloud, 60, 10},
			[]uint8{60, 60, 60, 10},
		},
		{
			"run touches end",
			[]uint8{10, 50, codes.Cloud, codes.Cloud},
			[]uint8{10, 50, 50, 50},
		},
		{
			"fully obscured",
			[]uint8{codes.Night, codes.Night, codes.Night},
			[]uint8{codes.Night, codes.Night, codes.Night},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.FillPixel(tt.values)
			for i := range tt.values {
				if tt.values[i] != tt.want[i] {
					t.Errorf("values[%d] = %d, want %d", i, tt.values[i], tt.want[i])
				}
			}
		})
	}
}

func TestFillPixelNightBeforeCloud(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	// The night run borders a cloud run. Night fills first, so the single
	// night day inherits the cloud code from its right neighbor and the cloud
	// pass then fills the merged run from the clear values around it.
	values := []uint8{10, codes.Night, codes.Cloud, 80}
	r.FillPixel(values)

	want := []uint8{10, 80, 80, 80}
	for i := range values {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %d, want %d (full: %v)", i, values[i], want[i], values)
		}
	}
}

func TestFillPixelIdempotent(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	values := []uint8{10, codes.Night, codes.Night, codes.Cloud, 80, codes.Cloud, 70}
	r.FillPixel(values)
	once := append([]uint8(nil), values...)
	r.FillPixel(values)
	for i := range values {
		if values[i] != once[i] {
			t.Errorf("second fill changed values[%d]: %d -> %d", i, once[i], values[i])
		}
	}
}

func TestRepairPixelCombined(t *testing.T) {
	r, err := NewRepairer(5, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Smoothing runs before filling, so the boundary value feeding the fill
	// is the smoothed one: the flagged run becomes 61,60,60,60,59 and the
	// trailing cloud run copies the 59.
	values := []uint8{60, 62, 58, 61, 59, codes.Cloud, codes.Cloud}
	bitflags := []uint8{128, 128, 128, 128, 128, 0, 0}
	r.RepairPixel(values, bitflags)

	want := []uint8{61, 60, 60, 60, 59, 59, 59}
	for i := range values {
		if values[i] != want[i] {
			t.Errorf("values[%d] = %d, want %d (full: %v)", i, values[i], want[i], values)
		}
	}
}
