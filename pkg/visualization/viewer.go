// Package visualization renders reconstructed cubes as grayscale
// images, one image per mass channel plus a total-ion-current view.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"msirecon/internal/models"
)

// Viewer renders images from a reconstructed cube.
type Viewer struct {
	cube *models.Cube
}

// NewViewer creates a viewer over the given cube.
func NewViewer(cube *models.Cube) *Viewer {
	return &Viewer{cube: cube}
}

// ChannelImage renders one mass channel as a grayscale image with
// lines as rows and pixels as columns. Intensities are normalized to
// the channel's maximum.
func (v *Viewer) ChannelImage(channel int) (image.Image, error) {
	if channel < 0 || channel >= v.cube.NumChannels() {
		return nil, fmt.Errorf("visualization: channel %d out of range [0, %d)", channel, v.cube.NumChannels())
	}

	plane := make([]float64, v.cube.NumLines()*v.cube.NumPixels())
	for l := 0; l < v.cube.NumLines(); l++ {
		for p := 0; p < v.cube.NumPixels(); p++ {
			plane[l*v.cube.NumPixels()+p] = v.cube.At(l, p, channel)
		}
	}
	return grayImage(plane, v.cube.NumPixels(), v.cube.NumLines()), nil
}

// TICImage renders the total ion current: each pixel is the sum of
// its intensities across all mass channels.
func (v *Viewer) TICImage() image.Image {
	plane := make([]float64, v.cube.NumLines()*v.cube.NumPixels())
	for l := 0; l < v.cube.NumLines(); l++ {
		for p := 0; p < v.cube.NumPixels(); p++ {
			total := 0.0
			for c := 0; c < v.cube.NumChannels(); c++ {
				total += v.cube.At(l, p, c)
			}
			plane[l*v.cube.NumPixels()+p] = total
		}
	}
	return grayImage(plane, v.cube.NumPixels(), v.cube.NumLines())
}

// SaveImage saves an image as JPEG.
func (v *Viewer) SaveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveChannelSequence renders and saves every mass channel image plus
// the TIC image into outputDir.
func (v *Viewer) SaveChannelSequence(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for c := 0; c < v.cube.NumChannels(); c++ {
		img, err := v.ChannelImage(c)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("channel_%05d_mz%.4f.jpg", c, v.cube.MassAxis[c]))
		if err := v.SaveImage(img, filename); err != nil {
			return err
		}
	}

	return v.SaveImage(v.TICImage(), filepath.Join(outputDir, "tic.jpg"))
}

// grayImage maps a row-major intensity plane onto a Gray16 image,
// normalized to the plane's maximum.
func grayImage(plane []float64, width, height int) image.Image {
	maxVal := 0.0
	for _, v := range plane {
		if v > maxVal {
			maxVal = v
		}
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	if maxVal == 0 {
		return img
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			value := uint16(plane[y*width+x] / maxVal * 65535)
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}
