package visualization_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msirecon/internal/models"
	"msirecon/pkg/visualization"
)

func testCube() *models.Cube {
	cube := models.NewCube(
		[]float64{90, 100},
		[]float64{0, 10, 20},
		[]float64{500, 600},
	)
	// Channel 0 ramps from 0 to its maximum at the last voxel; channel 1
	// stays empty.
	cube.Set(0, 0, 0, 0)
	cube.Set(0, 1, 0, 1)
	cube.Set(0, 2, 0, 2)
	cube.Set(1, 0, 0, 2)
	cube.Set(1, 1, 0, 3)
	cube.Set(1, 2, 0, 4)
	return cube
}

func TestChannelImage_DimensionsAndNormalization(t *testing.T) {
	v := visualization.NewViewer(testCube())

	img, err := v.ChannelImage(0)
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 3, bounds.Dx(), "width is the pixel axis")
	assert.Equal(t, 2, bounds.Dy(), "height is the line axis")

	// The maximum voxel maps to full white, a zero voxel to black, and
	// the midpoint to half scale.
	assert.Equal(t, color.Gray16{Y: 65535}, img.At(2, 1))
	assert.Equal(t, color.Gray16{Y: 0}, img.At(0, 0))
	half := img.At(2, 0).(color.Gray16)
	assert.InDelta(t, 32767, int(half.Y), 1)
}

func TestChannelImage_EmptyChannelIsBlack(t *testing.T) {
	v := visualization.NewViewer(testCube())

	img, err := v.ChannelImage(1)
	require.NoError(t, err)

	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, color.Gray16{Y: 0}, img.At(x, y))
		}
	}
}

func TestChannelImage_OutOfRange(t *testing.T) {
	v := visualization.NewViewer(testCube())

	_, err := v.ChannelImage(2)
	assert.Error(t, err)
	_, err = v.ChannelImage(-1)
	assert.Error(t, err)
}

func TestTICImage_SumsChannels(t *testing.T) {
	cube := testCube()
	// Give channel 1 some signal so the TIC differs from channel 0.
	cube.Set(0, 0, 1, 4)
	v := visualization.NewViewer(cube)

	img := v.TICImage()

	// TIC plane: line 0 = [4, 1, 2], line 1 = [2, 3, 4]; both maxima
	// map to full white.
	assert.Equal(t, color.Gray16{Y: 65535}, img.At(0, 0))
	assert.Equal(t, color.Gray16{Y: 65535}, img.At(2, 1))
	quarter := img.At(1, 0).(color.Gray16)
	assert.InDelta(t, 65535/4, int(quarter.Y), 1)
}

func TestSaveChannelSequence(t *testing.T) {
	v := visualization.NewViewer(testCube())
	dir := filepath.Join(t.TempDir(), "channels")

	require.NoError(t, v.SaveChannelSequence(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"channel_00000_mz500.0000.jpg",
		"channel_00001_mz600.0000.jpg",
		"tic.jpg",
	}, names)
}
