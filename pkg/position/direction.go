package position

// Direction holds the per-scan sweep labels. The two flags are
// mutually exclusive; both are false at the sequence boundaries,
// at turnaround points, and wherever y changes between neighbors.
type Direction struct {
	// LeftToRight marks scans moving in +x at constant y
	LeftToRight []bool
	// RightToLeft marks scans moving in -x at constant y
	RightToLeft []bool
}

// Classify labels every scan by its local motion direction. A scan i
// is left-to-right when x increases across its (i-1, i, i+1) triplet
// with y constant, right-to-left when x decreases with y constant,
// and unlabeled otherwise. The first and last scans are always
// unlabeled. NaN coordinates never produce a label, since every
// comparison against NaN is false.
func Classify(pos *Positions) *Direction {
	n := len(pos.X)
	d := &Direction{
		LeftToRight: make([]bool, n),
		RightToLeft: make([]bool, n),
	}

	for i := 1; i < n-1; i++ {
		sameLine := pos.Y[i-1] == pos.Y[i] && pos.Y[i] == pos.Y[i+1]
		if !sameLine {
			continue
		}
		d.LeftToRight[i] = pos.X[i] > pos.X[i-1] && pos.X[i+1] > pos.X[i]
		d.RightToLeft[i] = pos.X[i] < pos.X[i-1] && pos.X[i+1] < pos.X[i]
	}
	return d
}
