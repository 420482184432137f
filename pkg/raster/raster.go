// Package raster converts centroided spectra onto a common dense mass
// axis. Peaks are snapped to the nearest channel of a logarithmically
// spaced axis and then spread across neighboring channels with a
// normalized Gaussian window, modeling the instrument's mass
// resolution so spectra with slightly different centroid positions
// become comparable.
package raster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"msirecon/internal/models"
)

const (
	// DefaultResolution is the N in the axis ratio (N+1)/N. The axis
	// spacing is one part in 17000 of the local mass, fine enough to
	// look near linear over a typical acquisition range.
	DefaultResolution = 17000

	// DefaultKernelWidth is the width in channels of the smoothing
	// window applied to each binned spectrum.
	DefaultKernelWidth = 11

	// gaussianAlpha sets the reciprocal standard deviation of the
	// smoothing window relative to its half width.
	gaussianAlpha = 2.5
)

var (
	// ErrNoCentroids indicates a series with no peaks to rasterize.
	ErrNoCentroids = errors.New("raster: series contains no centroid peaks")
	// ErrBadResolution indicates a non-positive axis resolution.
	ErrBadResolution = errors.New("raster: resolution must be positive")
	// ErrBadKernelWidth indicates an even or non-positive kernel width.
	ErrBadKernelWidth = errors.New("raster: kernel width must be a positive odd number")
)

// Rasterized is the dense representation of a centroided series: one
// intensity row per scan over a shared logarithmic mass axis.
type Rasterized struct {
	// Intensities is the (scans x channels) matrix, one row per scan
	Intensities [][]float64

	// MassAxis is the logarithmic axis, including the zero-intensity
	// margin channels added on each side for the smoothing window
	MassAxis []float64
}

// MassAxis builds a logarithmically spaced axis covering [minMZ, maxMZ]
// with consecutive-entry ratio (resolution+1)/resolution. Entry k is
// minMZ * ratio^k and the axis has ceil(ln(maxMZ/minMZ)/ln ratio) + 1
// entries, so the last entry is at or just past maxMZ.
func MassAxis(minMZ, maxMZ float64, resolution int) ([]float64, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadResolution, resolution)
	}
	if minMZ <= 0 || maxMZ < minMZ {
		return nil, fmt.Errorf("raster: invalid mass range [%g, %g]", minMZ, maxMZ)
	}

	ratio := axisRatio(resolution)
	n := int(math.Ceil(math.Log(maxMZ/minMZ)/math.Log(ratio))) + 1
	axis := make([]float64, n)
	for k := range axis {
		axis[k] = minMZ * math.Pow(ratio, float64(k))
	}
	return axis, nil
}

// Rasterize bins every scan's centroid peaks onto a shared logarithmic
// mass axis and smooths each binned spectrum with a normalized
// Gaussian window of width kernelWidth. Binning is nearest-channel
// snapping, not interpolation: peaks closer than one channel alias
// into the same bin and their intensities add.
func Rasterize(series *models.Series, resolution, kernelWidth int) (*Rasterized, error) {
	if kernelWidth <= 0 || kernelWidth%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadKernelWidth, kernelWidth)
	}

	minMZ, maxMZ, ok := massRange(series)
	if !ok {
		return nil, ErrNoCentroids
	}

	axis, err := MassAxis(minMZ, maxMZ, resolution)
	if err != nil {
		return nil, err
	}

	// The window needs kernelWidth-1 margin channels on each side so
	// peaks at the axis ends keep their full spread.
	margin := kernelWidth - 1
	extended := extendAxis(axis, minMZ, resolution, margin)

	kernel := gaussianWindow(kernelWidth)
	logRatio := math.Log(axisRatio(resolution))

	out := &Rasterized{
		Intensities: make([][]float64, len(series.Scans)),
		MassAxis:    extended,
	}
	for i, scan := range series.Scans {
		binned := make([]float64, len(extended))
		for _, peak := range scan.Centroids {
			k := int(math.Round(math.Log(peak.MZ/minMZ) / logRatio))
			binned[margin+k] += peak.Intensity
		}
		out.Intensities[i] = convolveSame(binned, kernel)
	}
	return out, nil
}

// Bin accumulates one scan's peaks onto the given axis range without
// smoothing. It exists so the binning step can be inspected and tested
// separately: pre-smoothing, the summed bin intensities equal the
// summed raw peak intensities exactly.
func Bin(peaks []models.Peak, minMZ float64, resolution, channels int) []float64 {
	logRatio := math.Log(axisRatio(resolution))
	binned := make([]float64, channels)
	for _, peak := range peaks {
		k := int(math.Round(math.Log(peak.MZ/minMZ) / logRatio))
		if k >= 0 && k < channels {
			binned[k] += peak.Intensity
		}
	}
	return binned
}

func axisRatio(resolution int) float64 {
	return float64(resolution+1) / float64(resolution)
}

// massRange scans the whole series for the global minimum and maximum
// centroid mass.
func massRange(series *models.Series) (minMZ, maxMZ float64, ok bool) {
	minMZ = math.Inf(1)
	maxMZ = math.Inf(-1)
	for _, scan := range series.Scans {
		for _, peak := range scan.Centroids {
			minMZ = math.Min(minMZ, peak.MZ)
			maxMZ = math.Max(maxMZ, peak.MZ)
			ok = true
		}
	}
	return minMZ, maxMZ, ok
}

// extendAxis continues the geometric progression margin entries past
// both ends of the axis.
func extendAxis(axis []float64, minMZ float64, resolution, margin int) []float64 {
	ratio := axisRatio(resolution)
	extended := make([]float64, len(axis)+2*margin)
	for k := range extended {
		extended[k] = minMZ * math.Pow(ratio, float64(k-margin))
	}
	return extended
}

// gaussianWindow returns a symmetric Gaussian window of the given odd
// width, normalized to unit sum so smoothing conserves total intensity.
func gaussianWindow(width int) []float64 {
	if width == 1 {
		return []float64{1}
	}
	half := float64(width-1) / 2
	w := make([]float64, width)
	for i := range w {
		t := gaussianAlpha * (float64(i) - half) / half
		w[i] = math.Exp(-0.5 * t * t)
	}
	floats.Scale(1/floats.Sum(w), w)
	return w
}

// convolveSame convolves data with the kernel, returning a slice of
// the same length as data. The kernel is assumed odd-width.
func convolveSame(data, kernel []float64) []float64 {
	half := len(kernel) / 2
	out := make([]float64, len(data))
	for i := range data {
		if data[i] == 0 {
			continue
		}
		for j, kv := range kernel {
			idx := i + j - half
			if idx >= 0 && idx < len(out) {
				out[idx] += data[i] * kv
			}
		}
	}
	return out
}
