// Package gridding turns direction-filtered scan positions and their
// intensity vectors into a regular (line x pixel x mass channel) image
// cube via per-line linear interpolation along x.
package gridding

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"msirecon/internal/models"
	"msirecon/pkg/interpolation"
)

var (
	// ErrNoScans indicates an empty scan subset; nothing can be gridded.
	ErrNoScans = errors.New("gridding: no scans to grid")
	// ErrBadPitch indicates a negative explicit pixel pitch.
	ErrBadPitch = errors.New("gridding: pixel pitch must be positive")
	// ErrZeroRange indicates scans all at one x position, which spans
	// no pixels.
	ErrZeroRange = errors.New("gridding: scan x positions span a zero range")
)

// edgeGuard is the inset, in stage units, excluded at each end of the
// x range. Scans within one micrometer of the extremes sit too close
// to the turnarounds to interpolate from reliably.
const edgeGuard = 1.0

// Params configures the gridder.
type Params struct {
	// PixelPitch is the pixel spacing in micrometers. Zero derives the
	// pitch from the median number of scans per line.
	PixelPitch float64
}

// Result is the gridded image and its diagnostics.
type Result struct {
	// Cube is the reconstructed (line, pixel, channel) image
	Cube *models.Cube

	// Pitch is the pixel pitch actually used, in micrometers
	Pitch float64

	// DegenerateLines lists the indices of lines with fewer than two
	// qualifying scans. Those lines are zero-filled.
	DegenerateLines []int
}

// Grid interpolates the given scans onto a regular pixel grid, one
// line at a time. xs and ys are the scan positions, already restricted
// to valid positions on a single consistent sweep direction;
// intensities holds one mass-channel vector per scan, aligned to the
// same scan subset; lines is the surviving line set, whose order fixes
// the cube's line axis; massAxis labels the channel axis.
func Grid(xs, ys []float64, intensities [][]float64, lines, massAxis []float64, params Params) (*Result, error) {
	if len(xs) == 0 {
		return nil, ErrNoScans
	}
	if len(xs) != len(ys) || len(xs) != len(intensities) {
		return nil, fmt.Errorf("gridding: %d x, %d y, %d intensity rows; lengths must match",
			len(xs), len(ys), len(intensities))
	}
	if params.PixelPitch < 0 {
		return nil, fmt.Errorf("%w: got %g", ErrBadPitch, params.PixelPitch)
	}

	xMin := floats.Min(xs)
	xMax := floats.Max(xs)
	if xMax <= xMin {
		return nil, ErrZeroRange
	}

	pitch := params.PixelPitch
	var numPixels int
	if pitch == 0 {
		perLine := median(scansPerLine(ys, lines))
		if perLine < 2 {
			return nil, fmt.Errorf("gridding: median of %g scans per line cannot derive a pitch", perLine)
		}
		pitch = (xMax - xMin) / (perLine - 1)
		numPixels = int(perLine)
	} else {
		numPixels = int(math.Floor((xMax-xMin)/pitch)) + 1
	}

	grid := make([]float64, numPixels)
	for i := range grid {
		grid[i] = xMin + float64(i)*pitch
	}

	cube := models.NewCube(lines, grid, massAxis)
	result := &Result{Cube: cube, Pitch: pitch}

	for li, line := range lines {
		lineXs, lineRows := selectLine(xs, ys, intensities, line, xMin, xMax)
		if len(lineXs) < 2 {
			// Too few points for linear interpolation: the whole line
			// stays zero and is flagged for diagnostics.
			result.DegenerateLines = append(result.DegenerateLines, li)
			continue
		}

		if err := interpolateLine(cube, li, lineXs, lineRows, grid); err != nil {
			return nil, fmt.Errorf("gridding: line y=%g: %w", line, err)
		}
	}
	return result, nil
}

// selectLine picks the scans belonging to one line, sorted by x, with
// the edge guard applied and duplicate x positions merged by averaging
// their intensity vectors.
type lineSample struct {
	x   float64
	row []float64
}

func selectLine(xs, ys []float64, intensities [][]float64, line, xMin, xMax float64) ([]float64, [][]float64) {
	var samples []lineSample
	for i := range xs {
		if ys[i] != line {
			continue
		}
		if xs[i] <= xMin+edgeGuard || xs[i] >= xMax-edgeGuard {
			continue
		}
		samples = append(samples, lineSample{x: xs[i], row: intensities[i]})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].x < samples[j].x })

	var (
		outXs   []float64
		outRows [][]float64
	)
	for i := 0; i < len(samples); {
		j := i
		for j < len(samples) && samples[j].x == samples[i].x {
			j++
		}
		row := samples[i].row
		if j-i > 1 {
			row = averageRows(samples[i:j])
		}
		outXs = append(outXs, samples[i].x)
		outRows = append(outRows, row)
		i = j
	}
	return outXs, outRows
}

func averageRows(samples []lineSample) []float64 {
	avg := make([]float64, len(samples[0].row))
	for _, s := range samples {
		floats.Add(avg, s.row)
	}
	floats.Scale(1/float64(len(samples)), avg)
	return avg
}

// interpolateLine fills one cube line by interpolating every mass
// channel from the line's scan positions onto the pixel grid. Grid
// points outside the scans' x span stay zero; there is no
// extrapolation.
func interpolateLine(cube *models.Cube, lineIdx int, lineXs []float64, lineRows [][]float64, grid []float64) error {
	numChannels := cube.NumChannels()
	channel := make([]float64, len(lineXs))
	var lin interpolation.Linear

	for c := 0; c < numChannels; c++ {
		for s, row := range lineRows {
			channel[s] = row[c]
		}
		if err := lin.Fit(lineXs, channel); err != nil {
			return err
		}
		for p, gx := range grid {
			cube.Set(lineIdx, p, c, lin.PredictClamped(gx, 0))
		}
	}
	return nil
}

// scansPerLine counts, for every line, how many scans sit exactly on
// its y value.
func scansPerLine(ys, lines []float64) []float64 {
	counts := make([]float64, len(lines))
	for i, line := range lines {
		for _, y := range ys {
			if y == line {
				counts[i]++
			}
		}
	}
	return counts
}

// median returns the middle value of vs, averaging the two central
// values for even lengths.
func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := make([]float64, len(vs))
	copy(sorted, vs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
