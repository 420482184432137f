// Package storage persists reconstruction artifacts. Cubes are stored
// as parquet files, one row per (line, pixel, mass channel) voxel, so
// downstream analysis tools can consume them without a custom reader.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"msirecon/internal/models"
)

// ErrEmptyCube indicates a cube artifact with no rows.
var ErrEmptyCube = errors.New("storage: cube artifact contains no rows")

// CubeRow is the parquet schema of one cube voxel. Indices make the
// cube shape recoverable on load; coordinates carry the axes.
type CubeRow struct {
	// LineIndex, PixelIndex and ChannelIndex locate the voxel
	LineIndex    int32 `parquet:"line_index,snappy"`
	PixelIndex   int32 `parquet:"pixel_index,snappy"`
	ChannelIndex int32 `parquet:"channel_index,snappy"`

	// LineY and PixelX are the stage coordinates in micrometers
	LineY  float64 `parquet:"line_y,snappy"`
	PixelX float64 `parquet:"pixel_x,snappy"`

	// MZ is the mass channel value in m/z
	MZ float64 `parquet:"mz,snappy"`

	// Intensity is the reconstructed intensity at this voxel
	Intensity float64 `parquet:"intensity,snappy"`
}

// CubeWriter persists a reconstructed cube. The reconstruction
// pipeline depends only on this interface; the parquet implementation
// below is the default collaborator.
type CubeWriter interface {
	WriteCube(cube *models.Cube, path string) error
}

// ParquetStore reads and writes cube artifacts in parquet format.
type ParquetStore struct{}

var _ CubeWriter = ParquetStore{} // Compile-time check

// WriteCube writes the cube to a parquet file at path.
func (ParquetStore) WriteCube(cube *models.Cube, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("storage: creating cube file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the CubeRow struct tags.
	writer := parquet.NewGenericWriter[CubeRow](file)
	defer func() { _ = writer.Close() }()

	rows := make([]CubeRow, 0, 4096)
	for l := 0; l < cube.NumLines(); l++ {
		for p := 0; p < cube.NumPixels(); p++ {
			for c := 0; c < cube.NumChannels(); c++ {
				rows = append(rows, CubeRow{
					LineIndex:    int32(l),
					PixelIndex:   int32(p),
					ChannelIndex: int32(c),
					LineY:        cube.LineYs[l],
					PixelX:       cube.PixelXs[p],
					MZ:           cube.MassAxis[c],
					Intensity:    cube.At(l, p, c),
				})
			}
			if len(rows) >= 4096 {
				if _, err := writer.Write(rows); err != nil {
					return fmt.Errorf("storage: writing cube rows: %w", err)
				}
				rows = rows[:0]
			}
		}
	}
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("storage: writing cube rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("storage: closing cube writer: %w", err)
	}
	return nil
}

// ReadCube loads a cube artifact previously written by WriteCube.
func (ParquetStore) ReadCube(path string) (*models.Cube, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening cube file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[CubeRow](file)
	defer func() { _ = reader.Close() }()

	var rows []CubeRow
	buf := make([]CubeRow, 4096)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("storage: reading cube rows: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCube
	}

	// Recover the cube shape from the maximum indices.
	var numLines, numPixels, numChannels int32
	for _, row := range rows {
		numLines = max(numLines, row.LineIndex+1)
		numPixels = max(numPixels, row.PixelIndex+1)
		numChannels = max(numChannels, row.ChannelIndex+1)
	}

	cube := models.NewCube(
		make([]float64, numLines),
		make([]float64, numPixels),
		make([]float64, numChannels),
	)
	for _, row := range rows {
		cube.LineYs[row.LineIndex] = row.LineY
		cube.PixelXs[row.PixelIndex] = row.PixelX
		cube.MassAxis[row.ChannelIndex] = row.MZ
		cube.Set(int(row.LineIndex), int(row.PixelIndex), int(row.ChannelIndex), row.Intensity)
	}
	return cube, nil
}
