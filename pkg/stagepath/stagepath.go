// Package stagepath models the comb raster path of the sample stage.
//
// The instrument describes its planned path in two tab-delimited text
// files: a waypoint file whose rows each contribute three (x, y) stage
// positions in micrometers, and a timing file whose rows carry the
// three elapsed times (milliseconds) taken to reach those waypoints.
// This package flattens both into a single chronological sequence of
// (x, y, cumulative-time) samples, which downstream components use to
// interpolate the stage location at each spectrum's acquisition time.
package stagepath

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	// waypointCols is the column count of a waypoint row:
	// y0 x0 y1 x1 y2 x2, three positions per path leg.
	waypointCols = 6

	// timingCols is the column count of a timing row: one elapsed time
	// per waypoint-to-waypoint transition of the leg.
	timingCols = 3
)

// Waypoint is a single planned stage position.
type Waypoint struct {
	// X and Y are the stage coordinates in micrometers
	X, Y float64
}

// Model is the flattened, time-ordered description of the comb path.
// X, Y and T are parallel: T[i] is the cumulative time in seconds at
// which the stage reaches (X[i], Y[i]).
type Model struct {
	X []float64
	Y []float64
	T []float64
}

// ParseWaypointFile reads a waypoint triples file. Each row must hold
// exactly six tab-separated numbers (y0 x0 y1 x1 y2 x2, micrometers)
// and contributes three waypoints in order.
func ParseWaypointFile(path string) ([]Waypoint, error) {
	rows, err := readNumericRows(path, waypointCols)
	if err != nil {
		return nil, err
	}

	waypoints := make([]Waypoint, 0, len(rows)*3)
	for _, row := range rows {
		// Columns come in (y, x) pairs.
		for p := 0; p < waypointCols; p += 2 {
			waypoints = append(waypoints, Waypoint{X: row[p+1], Y: row[p]})
		}
	}
	return waypoints, nil
}

// ParseTimingFile reads a timing triples file. Each row must hold
// exactly three tab-separated numbers, the elapsed milliseconds of the
// leg's three transitions, and contributes three time deltas in
// seconds.
func ParseTimingFile(path string) ([]float64, error) {
	rows, err := readNumericRows(path, timingCols)
	if err != nil {
		return nil, err
	}

	deltas := make([]float64, 0, len(rows)*3)
	for _, row := range rows {
		for _, ms := range row {
			deltas = append(deltas, ms/1000.0)
		}
	}
	return deltas, nil
}

// NewModel combines flattened waypoints and time deltas into a single
// chronological path model. The cumulative time of waypoint i is the
// running sum of deltas[0..i]. It returns a *LengthMismatchError when
// the two sequences disagree in length and ErrNonMonotonicTiming when
// any delta is not positive.
func NewModel(waypoints []Waypoint, deltas []float64) (*Model, error) {
	if len(waypoints) == 0 {
		return nil, ErrEmptyPath
	}
	if len(waypoints) != len(deltas) {
		return nil, &LengthMismatchError{Waypoints: len(waypoints), Timings: len(deltas)}
	}

	m := &Model{
		X: make([]float64, len(waypoints)),
		Y: make([]float64, len(waypoints)),
		T: make([]float64, len(waypoints)),
	}

	elapsed := 0.0
	for i, wp := range waypoints {
		if deltas[i] <= 0 {
			return nil, fmt.Errorf("%w: transition %d took %.3f s", ErrNonMonotonicTiming, i, deltas[i])
		}
		elapsed += deltas[i]
		m.X[i] = wp.X
		m.Y[i] = wp.Y
		m.T[i] = elapsed
	}
	return m, nil
}

// Load parses both path files and builds the combined model.
func Load(waypointPath, timingPath string) (*Model, error) {
	waypoints, err := ParseWaypointFile(waypointPath)
	if err != nil {
		return nil, err
	}
	deltas, err := ParseTimingFile(timingPath)
	if err != nil {
		return nil, err
	}
	return NewModel(waypoints, deltas)
}

// Len returns the number of waypoints in the model.
func (m *Model) Len() int { return len(m.X) }

// Span returns the first and last cumulative waypoint times. Positions
// are only defined for acquisition times inside this interval.
func (m *Model) Span() (start, end float64) {
	return m.T[0], m.T[len(m.T)-1]
}

// Lines returns the distinct raster line y values observed across the
// whole path, sorted ascending. One entry corresponds to one sweep of
// the comb pattern.
func (m *Model) Lines() []float64 {
	seen := make(map[float64]struct{}, len(m.Y))
	lines := make([]float64, 0, 16)
	for _, y := range m.Y {
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		lines = append(lines, y)
	}
	sort.Float64s(lines)
	return lines
}

// readNumericRows parses a tab-delimited numeric file, requiring every
// non-empty row to hold exactly wantCols values.
func readNumericRows(path string, wantCols int) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stagepath: opening %s: %w", path, err)
	}
	defer file.Close()

	var rows [][]float64
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != wantCols {
			return nil, &FormatError{Path: path, Line: lineNo, WantCols: wantCols, GotCols: len(fields)}
		}

		row := make([]float64, wantCols)
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("stagepath: %s line %d column %d: %w", path, lineNo, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stagepath: reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPath, path)
	}
	return rows, nil
}
