package stagepath

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPath indicates a waypoint or timing file with no data rows.
	ErrEmptyPath = errors.New("stagepath: path file contains no rows")
	// ErrNonMonotonicTiming indicates cumulative waypoint times that do
	// not strictly increase, which leaves the position timeline undefined.
	ErrNonMonotonicTiming = errors.New("stagepath: cumulative waypoint times must be strictly increasing")
)

// FormatError reports a waypoint or timing file row with the wrong
// number of columns. It carries enough context to diagnose a malformed
// acquisition run without opening the file.
type FormatError struct {
	// Path is the offending file
	Path string
	// Line is the 1-based row number within the file
	Line int
	// WantCols and GotCols are the expected and observed column counts
	WantCols int
	GotCols  int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("stagepath: %s line %d: expected %d columns, got %d",
		e.Path, e.Line, e.WantCols, e.GotCols)
}

// LengthMismatchError reports flattened waypoint and timing sequences
// of different lengths. The two files must describe the same number of
// (x, y, t) triples.
type LengthMismatchError struct {
	// Waypoints and Timings are the flattened sequence lengths
	Waypoints int
	Timings   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("stagepath: %d waypoints but %d timing entries; files must match 1:1",
		e.Waypoints, e.Timings)
}
