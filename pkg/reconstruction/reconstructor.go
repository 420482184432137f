// Package reconstruction sequences the full pipeline that turns a
// time-ordered spectrum series and a comb path description into a
// spatially resolved image cube.
package reconstruction

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"msirecon/internal/models"
	"msirecon/pkg/gridding"
	"msirecon/pkg/position"
	"msirecon/pkg/raster"
	"msirecon/pkg/stagepath"
	"msirecon/pkg/storage"
)

var (
	// ErrAmbiguousDirection indicates that the first-pass direction
	// could not be inferred from the first two valid scan positions.
	// The heuristic inspects only the start of the run, so an
	// acquisition starting mid-turnaround cannot be classified; failing
	// here is preferred over silently gridding the wrong sweep.
	ErrAmbiguousDirection = errors.New("reconstruction: cannot infer first-pass direction from initial scan motion")

	// ErrNoScansSelected indicates that no scan carried both a valid
	// position and the selected sweep label.
	ErrNoScansSelected = errors.New("reconstruction: no scans remain after direction filtering")

	// ErrInconsistentProfile indicates profile scans whose intensity
	// vectors disagree with the shared mass axis.
	ErrInconsistentProfile = errors.New("reconstruction: profile scan length does not match the mass axis")
)

// Params holds the reconstruction configuration.
type Params struct {
	// WaypointFile is the tab-delimited waypoint triples file (micrometers)
	WaypointFile string

	// TimingFile is the tab-delimited timing triples file (milliseconds)
	TimingFile string

	// ClockOffset reconciles the instrument and stage clocks, in
	// seconds, added to every scan time before position lookup
	ClockOffset float64

	// PixelPitch is the pixel spacing in micrometers; zero derives it
	// from the median number of scans per line
	PixelPitch float64

	// Resolution is the N of the logarithmic mass axis ratio (N+1)/N;
	// zero uses raster.DefaultResolution
	Resolution int

	// KernelWidth is the smoothing window width in channels; zero uses
	// raster.DefaultKernelWidth
	KernelWidth int
}

// Stats summarizes a reconstruction run.
type Stats struct {
	// TotalScans and UsedScans count the input scans and the subset
	// that survived position and direction filtering
	TotalScans int
	UsedScans  int

	// OutOfRangeScans counts scans acquired past the end of the path
	// timeline; they carry undefined positions and are dropped
	OutOfRangeScans int

	// Lines and DegenerateLines count the surviving raster lines and
	// the zero-filled ones among them
	Lines           int
	DegenerateLines int

	// Pitch is the pixel pitch used, in micrometers
	Pitch float64

	// Centroided reports whether the series required rasterization
	Centroided bool

	// CacheHit reports whether Run served the cube from the cache
	CacheHit bool
}

// Reconstructor drives the reconstruction pipeline:
//  1. Parse and validate the comb path description
//  2. Rasterize centroided spectra onto a logarithmic mass axis
//  3. Interpolate the stage position at each scan time
//  4. Classify sweep directions and keep the single consistent pass
//  5. Grid the surviving scans into the image cube
type Reconstructor struct {
	params *Params
	stats  Stats
}

// NewReconstructor creates a reconstructor with the given parameters.
func NewReconstructor(params *Params) *Reconstructor {
	return &Reconstructor{params: params}
}

// Process runs the full pipeline over the series and returns the
// reconstructed cube. The series is read-only to the pipeline; no
// partial cube is returned on error.
func (r *Reconstructor) Process(series *models.Series) (*models.Cube, error) {
	r.stats = Stats{TotalScans: len(series.Scans)}

	// Step 1: path model.
	model, err := stagepath.Load(r.params.WaypointFile, r.params.TimingFile)
	if err != nil {
		return nil, fmt.Errorf("loading stage path: %w", err)
	}

	// Step 2: dense intensity matrix.
	intensities, massAxis, err := r.densify(series)
	if err != nil {
		return nil, err
	}

	// Step 3: per-scan positions.
	pos, err := position.Estimate(model, series.Times(), r.params.ClockOffset)
	if err != nil {
		return nil, err
	}
	r.stats.OutOfRangeScans = pos.OutOfRange
	if pos.OutOfRange > 0 {
		logrus.WithFields(logrus.Fields{
			"scans": pos.OutOfRange,
			"total": len(series.Scans),
		}).Warn("scan times exceed the path timeline; affected scans are dropped")
	}

	// Step 4: single consistent pass.
	keepXs, keepYs, keepRows, err := selectFirstPass(pos, intensities)
	if err != nil {
		return nil, err
	}
	r.stats.UsedScans = len(keepXs)

	lines := position.SurvivingLines(model.Lines(), pos)
	r.stats.Lines = len(lines)

	// Step 5: gridding.
	result, err := gridding.Grid(keepXs, keepYs, keepRows, lines, massAxis,
		gridding.Params{PixelPitch: r.params.PixelPitch})
	if err != nil {
		return nil, err
	}
	r.stats.Pitch = result.Pitch
	r.stats.DegenerateLines = len(result.DegenerateLines)
	for _, li := range result.DegenerateLines {
		logrus.WithFields(logrus.Fields{
			"line": li,
			"y":    lines[li],
		}).Warn("line has fewer than two usable scans; zero-filled")
	}

	logrus.WithFields(logrus.Fields{
		"lines":    r.stats.Lines,
		"pixels":   result.Cube.NumPixels(),
		"channels": result.Cube.NumChannels(),
		"scans":    r.stats.UsedScans,
		"pitch_um": r.stats.Pitch,
	}).Info("reconstruction complete")

	return result.Cube, nil
}

// Run is the caching entry point: when cache is non-nil it checks for
// an artifact keyed by the path files, the series content and the
// parameters, returning the
// stored cube on a hit and storing the freshly computed cube on a
// miss. A nil cache behaves exactly like Process.
func (r *Reconstructor) Run(series *models.Series, cache *storage.Cache) (*models.Cube, error) {
	if cache == nil {
		return r.Process(series)
	}

	key, err := cache.Key(r.params.WaypointFile, r.params.TimingFile,
		storage.SeriesDigest(series),
		r.params.ClockOffset, r.params.PixelPitch,
		float64(r.params.Resolution), float64(r.params.KernelWidth))
	if err != nil {
		return nil, err
	}

	if cube, err := cache.Lookup(key); err != nil {
		return nil, err
	} else if cube != nil {
		r.stats = Stats{TotalScans: len(series.Scans), CacheHit: true}
		logrus.WithField("key", key).Info("serving cube from cache")
		return cube, nil
	}

	cube, err := r.Process(series)
	if err != nil {
		return nil, err
	}
	if err := cache.Store(key, cube); err != nil {
		return nil, fmt.Errorf("storing cube artifact: %w", err)
	}
	return cube, nil
}

// Stats returns the statistics of the last Process or Run call.
func (r *Reconstructor) Stats() Stats {
	return r.stats
}

// densify produces the (scans x channels) intensity matrix and its
// mass axis: centroided series are rasterized, profile series pass
// through on the caller-supplied axis.
func (r *Reconstructor) densify(series *models.Series) ([][]float64, []float64, error) {
	if series.IsCentroid() {
		r.stats.Centroided = true

		resolution := r.params.Resolution
		if resolution == 0 {
			resolution = raster.DefaultResolution
		}
		kernelWidth := r.params.KernelWidth
		if kernelWidth == 0 {
			kernelWidth = raster.DefaultKernelWidth
		}

		rasterized, err := raster.Rasterize(series, resolution, kernelWidth)
		if err != nil {
			return nil, nil, err
		}
		return rasterized.Intensities, rasterized.MassAxis, nil
	}

	intensities := make([][]float64, len(series.Scans))
	for i, scan := range series.Scans {
		if len(scan.Profile) != len(series.MassAxis) {
			return nil, nil, fmt.Errorf("%w: scan %d has %d channels, axis has %d",
				ErrInconsistentProfile, i, len(scan.Profile), len(series.MassAxis))
		}
		intensities[i] = scan.Profile
	}
	return intensities, series.MassAxis, nil
}

// selectFirstPass infers the global first-pass direction from the
// initial scan motion and filters the scans to that single sweep.
// The initial motion is the approach into the first line, acquired
// opposite to the registered sweep, so the kept label is the opposite
// of the detected direction. Return-sweep registration is less
// reliable; discarding the other sweep is a deliberate data-quality
// tradeoff, not a bug.
func selectFirstPass(pos *position.Positions, intensities [][]float64) ([]float64, []float64, [][]float64, error) {
	first, second := -1, -1
	for i := range pos.X {
		if !pos.Valid(i) {
			continue
		}
		if first < 0 {
			first = i
			continue
		}
		second = i
		break
	}
	if second < 0 || pos.X[second] == pos.X[first] {
		return nil, nil, nil, ErrAmbiguousDirection
	}

	dir := position.Classify(pos)
	keep := dir.RightToLeft
	if pos.X[second] < pos.X[first] {
		keep = dir.LeftToRight
	}

	var (
		xs, ys []float64
		rows   [][]float64
	)
	for i := range pos.X {
		if !keep[i] || !pos.Valid(i) {
			continue
		}
		xs = append(xs, pos.X[i])
		ys = append(ys, pos.Y[i])
		rows = append(rows, intensities[i])
	}
	if len(xs) == 0 {
		return nil, nil, nil, ErrNoScansSelected
	}
	return xs, ys, rows, nil
}
