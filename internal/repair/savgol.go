package repair

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SavGol is a Savitzky-Golay smoothing filter: a local least-squares
// polynomial fit evaluated at each sample. The projection (hat) matrix for
// one window is precomputed once, so filtering is a handful of dot products
// per sample.
type SavGol struct {
	window    int
	polyorder int
	half      int
	hat       *mat.Dense // window x window
}

// NewSavGol builds a filter with the given window length and polynomial
// order. The window must be a positive odd integer and the order must be
// smaller than the window; both are caller contract violations checked here
// rather than deep inside per-pixel iteration.
func NewSavGol(window, polyorder int) (*SavGol, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("savgol: window must be a positive odd integer, got %d", window)
	}
	if polyorder < 0 || polyorder >= window {
		return nil, fmt.Errorf("savgol: polyorder must be in [0, window), got %d with window %d", polyorder, window)
	}

	// Vandermonde design matrix over positions -half..half.
	half := window / 2
	a := mat.NewDense(window, polyorder+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i - half)
		p := 1.0
		for j := 0; j <= polyorder; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}

	// Hat matrix H = A (A'A)^-1 A' via a least-squares solve against the
	// identity, so row k of H evaluates the window's fit at position k.
	eye := mat.NewDense(window, window, nil)
	for i := 0; i < window; i++ {
		eye.Set(i, i, 1)
	}
	var pinv mat.Dense
	if err := pinv.Solve(a, eye); err != nil {
		return nil, fmt.Errorf("savgol: computing projection: %w", err)
	}
	var hat mat.Dense
	hat.Mul(a, &pinv)

	return &SavGol{
		window:    window,
		polyorder: polyorder,
		half:      half,
		hat:       &hat,
	}, nil
}

// Window returns the filter's window length.
func (s *SavGol) Window() int {
	return s.window
}

// Smooth filters data in place. Interior samples use the centered fit; the
// leading and trailing half-windows use the fit over the nearest full window
// evaluated at their own offset, so no padding values are invented. data must
// hold at least window samples.
func (s *SavGol) Smooth(data []float64) {
	n := len(data)
	if n < s.window {
		return
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var row, base int
		switch {
		case i < s.half:
			row, base = i, 0
		case i >= n-s.half:
			row, base = s.window-(n-i), n-s.window
		default:
			row, base = s.half, i-s.half
		}
		sum := 0.0
		for j := 0; j < s.window; j++ {
			sum += s.hat.At(row, j) * data[base+j]
		}
		out[i] = sum
	}
	copy(data, out)
}
