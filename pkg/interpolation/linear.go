// Package interpolation provides the 1D piecewise-linear interpolation
// primitive used throughout the reconstruction pipeline, both for
// estimating stage positions against the path timeline and for
// resampling line intensities onto the regular pixel grid.
package interpolation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

var (
	// ErrTooFewPoints indicates fewer than two sample points, for which
	// a linear interpolant is undefined.
	ErrTooFewPoints = errors.New("interpolation: need at least two sample points")
	// ErrLengthMismatch indicates xs and ys of different lengths.
	ErrLengthMismatch = errors.New("interpolation: xs and ys must have the same length")
	// ErrNotIncreasing indicates xs that are not strictly increasing.
	ErrNotIncreasing = errors.New("interpolation: xs must be strictly increasing")
)

// Linear is a piecewise-linear interpolant over a strictly increasing
// sample domain. Predictions strictly outside the fitted domain are
// NaN rather than extrapolated.
type Linear struct {
	pl     interp.PiecewiseLinear
	lo, hi float64
	fitted bool
}

// Fit fits the interpolant to (xs, ys) sample pairs. Unlike the
// underlying gonum predictor it validates its input and returns typed
// errors instead of panicking.
func (l *Linear) Fit(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, len(xs))
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("%w: xs[%d]=%g, xs[%d]=%g", ErrNotIncreasing, i-1, xs[i-1], i, xs[i])
		}
	}

	if err := l.pl.Fit(xs, ys); err != nil {
		return err
	}
	l.lo = xs[0]
	l.hi = xs[len(xs)-1]
	l.fitted = true
	return nil
}

// Predict returns the interpolated value at x, or NaN when x lies
// outside the fitted domain.
func (l *Linear) Predict(x float64) float64 {
	if !l.fitted || x < l.lo || x > l.hi {
		return math.NaN()
	}
	return l.pl.Predict(x)
}

// PredictClamped returns the interpolated value at x with out-of-domain
// requests filled by fill instead of NaN.
func (l *Linear) PredictClamped(x, fill float64) float64 {
	v := l.Predict(x)
	if math.IsNaN(v) {
		return fill
	}
	return v
}

// Domain returns the fitted interpolation domain [lo, hi].
func (l *Linear) Domain() (lo, hi float64) {
	return l.lo, l.hi
}
