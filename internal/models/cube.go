package models

// Cube is a reconstructed hyperspectral image: a 3D intensity array
// indexed by (line, pixel, mass channel) together with the coordinate
// axis for each dimension.
type Cube struct {
	// Data is the intensity values as a 1D array in row-major
	// (line, pixel, channel) order
	Data []float64

	// LineYs holds the stage y position of each raster line in micrometers
	LineYs []float64

	// PixelXs holds the stage x position of each pixel in micrometers
	PixelXs []float64

	// MassAxis holds the m/z value of each mass channel
	MassAxis []float64
}

// NewCube allocates a zero-filled cube over the given axes.
func NewCube(lineYs, pixelXs, massAxis []float64) *Cube {
	return &Cube{
		Data:     make([]float64, len(lineYs)*len(pixelXs)*len(massAxis)),
		LineYs:   lineYs,
		PixelXs:  pixelXs,
		MassAxis: massAxis,
	}
}

// NumLines returns the number of raster lines in the cube.
func (c *Cube) NumLines() int { return len(c.LineYs) }

// NumPixels returns the number of pixels along x in the cube.
func (c *Cube) NumPixels() int { return len(c.PixelXs) }

// NumChannels returns the number of mass channels in the cube.
func (c *Cube) NumChannels() int { return len(c.MassAxis) }

// index converts (line, pixel, channel) to the flat data offset.
func (c *Cube) index(line, pixel, channel int) int {
	return (line*len(c.PixelXs)+pixel)*len(c.MassAxis) + channel
}

// At returns the intensity at (line, pixel, channel).
func (c *Cube) At(line, pixel, channel int) float64 {
	return c.Data[c.index(line, pixel, channel)]
}

// Set stores the intensity at (line, pixel, channel).
func (c *Cube) Set(line, pixel, channel int, v float64) {
	c.Data[c.index(line, pixel, channel)] = v
}
