package gridding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msirecon/pkg/gridding"
)

// combScans builds a two-line fixture with nine scans per line at
// x = 0, 4, ..., 32. Channel 0 carries the scan's own x position, so
// interpolation results can be checked exactly; channel 1 is constant
// per line.
func combScans() (xs, ys []float64, intensities [][]float64) {
	for _, line := range []float64{10, 20} {
		level := 5.0
		if line == 20 {
			level = 7.0
		}
		for i := 0; i <= 8; i++ {
			x := float64(i) * 4
			xs = append(xs, x)
			ys = append(ys, line)
			intensities = append(intensities, []float64{x, level})
		}
	}
	return xs, ys, intensities
}

func TestGrid_AutoPitchFromMedian(t *testing.T) {
	xs, ys, intensities := combScans()
	lines := []float64{10, 20}
	massAxis := []float64{100, 200}

	result, err := gridding.Grid(xs, ys, intensities, lines, massAxis, gridding.Params{})
	require.NoError(t, err)

	// Nine scans per line on both lines, so the median is nine and the
	// pitch is range/(9-1).
	assert.Equal(t, 4.0, result.Pitch)
	assert.Equal(t, 2, result.Cube.NumLines())
	assert.Equal(t, 9, result.Cube.NumPixels())
	assert.Equal(t, 2, result.Cube.NumChannels())
	assert.Empty(t, result.DegenerateLines)

	for p := 0; p < 9; p++ {
		assert.Equal(t, float64(p)*4, result.Cube.PixelXs[p])
	}
}

func TestGrid_InterpolatesExactlyAtScanPositions(t *testing.T) {
	xs, ys, intensities := combScans()
	lines := []float64{10, 20}
	massAxis := []float64{100, 200}

	result, err := gridding.Grid(xs, ys, intensities, lines, massAxis, gridding.Params{})
	require.NoError(t, err)

	levels := []float64{5, 7}
	for li := range lines {
		for p := 0; p < 9; p++ {
			gx := float64(p) * 4
			ch0 := result.Cube.At(li, p, 0)
			ch1 := result.Cube.At(li, p, 1)
			if p == 0 || p == 8 {
				// The edge guard excludes scans at x=0 and x=32, so the
				// interpolation domain is [4, 28] and the end pixels stay
				// zero rather than being extrapolated.
				assert.Equal(t, 0.0, ch0, "line %d pixel %d", li, p)
				assert.Equal(t, 0.0, ch1, "line %d pixel %d", li, p)
				continue
			}
			assert.InDelta(t, gx, ch0, 1e-12, "line %d pixel %d", li, p)
			assert.InDelta(t, levels[li], ch1, 1e-12, "line %d pixel %d", li, p)
		}
	}
}

func TestGrid_ExplicitPitch(t *testing.T) {
	xs, ys, intensities := combScans()
	lines := []float64{10, 20}
	massAxis := []float64{100, 200}

	result, err := gridding.Grid(xs, ys, intensities, lines, massAxis, gridding.Params{PixelPitch: 10})
	require.NoError(t, err)

	// floor(32/10) + 1 pixels at x = 0, 10, 20, 30.
	assert.Equal(t, 10.0, result.Pitch)
	require.Equal(t, 4, result.Cube.NumPixels())
	assert.Equal(t, []float64{0, 10, 20, 30}, result.Cube.PixelXs)

	// x=10 and x=20 land between scan positions on the identity channel.
	assert.InDelta(t, 10.0, result.Cube.At(0, 1, 0), 1e-12)
	assert.InDelta(t, 20.0, result.Cube.At(0, 2, 0), 1e-12)
	// x=0 and x=30 fall outside the guarded domain [4, 28].
	assert.Equal(t, 0.0, result.Cube.At(0, 0, 0))
	assert.Equal(t, 0.0, result.Cube.At(0, 3, 0))
}

func TestGrid_DegenerateLineZeroFilled(t *testing.T) {
	var (
		xs          []float64
		ys          []float64
		intensities [][]float64
	)
	for i := 0; i <= 8; i++ {
		xs = append(xs, float64(i)*4)
		ys = append(ys, 10)
		intensities = append(intensities, []float64{1})
	}
	// Line 20 has a single scan, not enough to interpolate from.
	xs = append(xs, 16)
	ys = append(ys, 20)
	intensities = append(intensities, []float64{9})

	result, err := gridding.Grid(xs, ys, intensities, []float64{10, 20}, []float64{100}, gridding.Params{})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, result.DegenerateLines)
	for p := 0; p < result.Cube.NumPixels(); p++ {
		assert.Equal(t, 0.0, result.Cube.At(1, p, 0), "pixel %d", p)
	}
	// The healthy line is still interpolated.
	mid := result.Cube.NumPixels() / 2
	assert.InDelta(t, 1.0, result.Cube.At(0, mid, 0), 1e-12)
}

func TestGrid_DuplicateXAveraged(t *testing.T) {
	xs := []float64{0, 10, 10, 20, 30}
	ys := []float64{2, 2, 2, 2, 2}
	intensities := [][]float64{{0}, {2}, {4}, {6}, {0}}

	result, err := gridding.Grid(xs, ys, intensities, []float64{2}, []float64{100}, gridding.Params{PixelPitch: 10})
	require.NoError(t, err)

	// The two scans at x=10 merge into their mean before fitting.
	assert.InDelta(t, 3.0, result.Cube.At(0, 1, 0), 1e-12)
	assert.InDelta(t, 6.0, result.Cube.At(0, 2, 0), 1e-12)
	assert.Equal(t, 0.0, result.Cube.At(0, 0, 0))
	assert.Equal(t, 0.0, result.Cube.At(0, 3, 0))
}

func TestGrid_Errors(t *testing.T) {
	_, err := gridding.Grid(nil, nil, nil, []float64{1}, []float64{100}, gridding.Params{})
	assert.ErrorIs(t, err, gridding.ErrNoScans)

	_, err = gridding.Grid([]float64{1, 2}, []float64{1}, [][]float64{{1}, {1}}, []float64{1}, []float64{100}, gridding.Params{})
	assert.Error(t, err)

	_, err = gridding.Grid([]float64{1, 2}, []float64{1, 1}, [][]float64{{1}, {1}}, []float64{1}, []float64{100}, gridding.Params{PixelPitch: -1})
	assert.ErrorIs(t, err, gridding.ErrBadPitch)

	_, err = gridding.Grid([]float64{5, 5}, []float64{1, 1}, [][]float64{{1}, {1}}, []float64{1}, []float64{100}, gridding.Params{})
	assert.ErrorIs(t, err, gridding.ErrZeroRange)
}

func TestGrid_AutoPitchNeedsTwoScansPerLine(t *testing.T) {
	_, err := gridding.Grid(
		[]float64{0, 30},
		[]float64{1, 2},
		[][]float64{{1}, {1}},
		[]float64{1, 2},
		[]float64{100},
		gridding.Params{},
	)
	assert.Error(t, err)
}
