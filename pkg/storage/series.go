package storage

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"msirecon/internal/models"
)

// LoadSeries reads a spectrum series from a tab-delimited text file.
//
// Centroid form, one scan per row:
//
//	<time_s> <TAB> <mz>:<intensity> <TAB> <mz>:<intensity> ...
//
// Profile form: a header row "mz" followed by the shared mass axis,
// then one scan per row with the acquisition time and one intensity
// per axis entry:
//
//	mz <TAB> <mz1> <TAB> <mz2> ...
//	<time_s> <TAB> <i1> <TAB> <i2> ...
//
// This loader is boundary glue for the CLI; the reconstruction core
// consumes models.Series directly.
func LoadSeries(path string) (*models.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: opening spectra file: %w", err)
	}
	defer file.Close()

	series := &models.Series{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")

		if fields[0] == "mz" {
			axis, err := parseFloats(fields[1:], path, lineNo)
			if err != nil {
				return nil, err
			}
			series.MassAxis = axis
			continue
		}

		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: bad scan time: %w", path, lineNo, err)
		}

		scan := models.Scan{Time: t}
		if series.MassAxis != nil {
			scan.Profile, err = parseFloats(fields[1:], path, lineNo)
			if err != nil {
				return nil, err
			}
			if len(scan.Profile) != len(series.MassAxis) {
				return nil, fmt.Errorf("storage: %s line %d: %d intensities for %d axis entries",
					path, lineNo, len(scan.Profile), len(series.MassAxis))
			}
		} else {
			scan.Centroids, err = parsePeaks(fields[1:], path, lineNo)
			if err != nil {
				return nil, err
			}
		}
		series.Scans = append(series.Scans, scan)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("storage: reading %s: %w", path, err)
	}
	if len(series.Scans) == 0 {
		return nil, fmt.Errorf("storage: %s contains no scans", path)
	}
	return series, nil
}

func parseFloats(fields []string, path string, lineNo int) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d column %d: %w", path, lineNo, i+2, err)
		}
		out[i] = v
	}
	return out, nil
}

func parsePeaks(fields []string, path string, lineNo int) ([]models.Peak, error) {
	peaks := make([]models.Peak, 0, len(fields))
	for i, field := range fields {
		mzStr, intStr, ok := strings.Cut(strings.TrimSpace(field), ":")
		if !ok {
			return nil, fmt.Errorf("storage: %s line %d column %d: expected mz:intensity pair", path, lineNo, i+2)
		}
		mz, err := strconv.ParseFloat(mzStr, 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d column %d: %w", path, lineNo, i+2, err)
		}
		intensity, err := strconv.ParseFloat(intStr, 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d column %d: %w", path, lineNo, i+2, err)
		}
		peaks = append(peaks, models.Peak{MZ: mz, Intensity: intensity})
	}
	return peaks, nil
}
