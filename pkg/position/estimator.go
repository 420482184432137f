// Package position derives per-scan stage coordinates from the comb
// path timeline and classifies each scan by its sweep direction.
package position

import (
	"fmt"
	"math"

	"msirecon/pkg/interpolation"
	"msirecon/pkg/stagepath"
)

// Positions holds the interpolated stage location of every scan, in
// scan order. Scans acquired outside the path's time span have NaN
// coordinates and are excluded from gridding downstream.
type Positions struct {
	X []float64
	Y []float64

	// OutOfRange counts scans whose adjusted acquisition time exceeds
	// the last known path time. A nonzero count is a recoverable
	// condition: the affected scans simply carry undefined positions.
	OutOfRange int
}

// Estimate interpolates the stage (x, y) location at every scan time,
// linearly and independently per coordinate against the cumulative
// waypoint timeline. clockOffset is added to each scan time before
// lookup to reconcile the instrument and stage clocks; it uses the
// same unit as the scan times (seconds).
func Estimate(model *stagepath.Model, scanTimes []float64, clockOffset float64) (*Positions, error) {
	var ix, iy interpolation.Linear
	if err := ix.Fit(model.T, model.X); err != nil {
		return nil, fmt.Errorf("position: fitting x against path timeline: %w", err)
	}
	if err := iy.Fit(model.T, model.Y); err != nil {
		return nil, fmt.Errorf("position: fitting y against path timeline: %w", err)
	}

	_, tMax := model.Span()
	pos := &Positions{
		X: make([]float64, len(scanTimes)),
		Y: make([]float64, len(scanTimes)),
	}
	for i, t := range scanTimes {
		at := t + clockOffset
		pos.X[i] = ix.Predict(at)
		pos.Y[i] = iy.Predict(at)
		if at > tMax {
			pos.OutOfRange++
		}
	}
	return pos, nil
}

// Valid reports whether scan i has a defined position.
func (p *Positions) Valid(i int) bool {
	return !math.IsNaN(p.X[i]) && !math.IsNaN(p.Y[i])
}

// SurvivingLines filters the path's line set down to the lines covered
// by the interpolated scan positions: a line whose y value falls
// outside [min(y), max(y)] of the finite interpolated coordinates saw
// no scan and is dropped. Order is preserved.
func SurvivingLines(lines []float64, pos *Positions) []float64 {
	yMin := math.Inf(1)
	yMax := math.Inf(-1)
	for _, y := range pos.Y {
		if math.IsNaN(y) {
			continue
		}
		yMin = math.Min(yMin, y)
		yMax = math.Max(yMax, y)
	}

	surviving := make([]float64, 0, len(lines))
	for _, line := range lines {
		if line >= yMin && line <= yMax {
			surviving = append(surviving, line)
		}
	}
	return surviving
}
