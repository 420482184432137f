package stagepath_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msirecon/pkg/stagepath"
)

// writeFile writes content to a file inside the test's temp directory
// and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// combWaypoints is a two-line comb path: each row sweeps out to x=100
// and back at a fixed y.
const combWaypoints = "100\t0\t100\t100\t100\t0\n90\t0\t90\t100\t90\t0\n"

// combTimings gives every transition 1000 ms.
const combTimings = "1000\t1000\t1000\n1000\t1000\t1000\n"

func TestParseWaypointFile_FlattensTriples(t *testing.T) {
	path := writeFile(t, "waypoints.txt", combWaypoints)

	waypoints, err := stagepath.ParseWaypointFile(path)
	require.NoError(t, err)
	require.Len(t, waypoints, 6)

	assert.Equal(t, stagepath.Waypoint{X: 0, Y: 100}, waypoints[0])
	assert.Equal(t, stagepath.Waypoint{X: 100, Y: 100}, waypoints[1])
	assert.Equal(t, stagepath.Waypoint{X: 0, Y: 100}, waypoints[2])
	assert.Equal(t, stagepath.Waypoint{X: 0, Y: 90}, waypoints[3])
	assert.Equal(t, stagepath.Waypoint{X: 100, Y: 90}, waypoints[4])
	assert.Equal(t, stagepath.Waypoint{X: 0, Y: 90}, waypoints[5])
}

func TestParseWaypointFile_WrongColumnCount(t *testing.T) {
	path := writeFile(t, "waypoints.txt", "100\t0\t100\t100\n")

	_, err := stagepath.ParseWaypointFile(path)

	var formatErr *stagepath.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, path, formatErr.Path)
	assert.Equal(t, 1, formatErr.Line)
	assert.Equal(t, 6, formatErr.WantCols)
	assert.Equal(t, 4, formatErr.GotCols)
}

func TestParseTimingFile_ConvertsToSeconds(t *testing.T) {
	path := writeFile(t, "timings.txt", "1000\t500\t250\n")

	deltas, err := stagepath.ParseTimingFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.5, 0.25}, deltas)
}

func TestParseTimingFile_WrongColumnCount(t *testing.T) {
	path := writeFile(t, "timings.txt", "1000\t1000\t1000\t1000\n")

	_, err := stagepath.ParseTimingFile(path)

	var formatErr *stagepath.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, 3, formatErr.WantCols)
	assert.Equal(t, 4, formatErr.GotCols)
}

func TestParseFile_NonNumericValue(t *testing.T) {
	path := writeFile(t, "timings.txt", "1000\tabc\t1000\n")

	_, err := stagepath.ParseTimingFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestNewModel_CumulativeTimes(t *testing.T) {
	waypointPath := writeFile(t, "waypoints.txt", combWaypoints)
	timingPath := writeFile(t, "timings.txt", combTimings)

	model, err := stagepath.Load(waypointPath, timingPath)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 100, 0, 0, 100, 0}, model.X)
	assert.Equal(t, []float64{100, 100, 100, 90, 90, 90}, model.Y)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, model.T)

	start, end := model.Span()
	assert.Equal(t, 1.0, start)
	assert.Equal(t, 6.0, end)
}

func TestNewModel_LengthMismatch(t *testing.T) {
	waypoints := []stagepath.Waypoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	deltas := []float64{1, 1}

	_, err := stagepath.NewModel(waypoints, deltas)

	var mismatch *stagepath.LengthMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Waypoints)
	assert.Equal(t, 2, mismatch.Timings)
}

func TestNewModel_NonMonotonicTiming(t *testing.T) {
	waypoints := []stagepath.Waypoint{{X: 0, Y: 0}, {X: 1, Y: 0}}
	deltas := []float64{1, 0}

	_, err := stagepath.NewModel(waypoints, deltas)
	assert.ErrorIs(t, err, stagepath.ErrNonMonotonicTiming)
}

func TestNewModel_Empty(t *testing.T) {
	_, err := stagepath.NewModel(nil, nil)
	assert.ErrorIs(t, err, stagepath.ErrEmptyPath)
}

// TestLines_SortedUnique checks that a comb path with K distinct rows
// yields exactly K sorted line values, regardless of visit order.
func TestLines_SortedUnique(t *testing.T) {
	model := &stagepath.Model{
		X: []float64{0, 100, 0, 0, 100, 0, 0, 100, 0},
		Y: []float64{100, 100, 100, 80, 80, 80, 90, 90, 90},
		T: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}

	assert.Equal(t, []float64{80, 90, 100}, model.Lines())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := stagepath.Load(filepath.Join(t.TempDir(), "missing.txt"), "also-missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse_EmptyFile(t *testing.T) {
	path := writeFile(t, "waypoints.txt", "\n\n")

	_, err := stagepath.ParseWaypointFile(path)
	assert.ErrorIs(t, err, stagepath.ErrEmptyPath)
}
