package models

// Peak is a single centroided mass peak.
type Peak struct {
	// MZ is the mass-to-charge ratio of the peak in m/z units
	MZ float64

	// Intensity is the measured ion intensity of the peak
	Intensity float64
}

// Scan represents one acquired mass spectrum with metadata.
// Exactly one of Profile and Centroids is populated: profile scans
// carry a dense intensity vector aligned to the series mass axis,
// centroid scans carry a sparse list of picked peaks.
type Scan struct {
	// Time is the acquisition time in seconds since instrument start
	Time float64

	// Profile is the dense intensity vector for profile scans.
	// Its length equals the length of the series mass axis.
	Profile []float64

	// Centroids is the sparse peak list for centroided scans.
	// Peak lists are variable-length and unique to each scan.
	Centroids []Peak
}

// Series is a time-ordered collection of scans from one acquisition run.
// The series is owned by the caller and read-only to the pipeline.
type Series struct {
	// Scans are ordered by acquisition time
	Scans []Scan

	// MassAxis is the shared dense mass axis for profile series.
	// It is nil for centroided series, whose axis is derived by the
	// rasterizer from the observed peak masses.
	MassAxis []float64
}

// IsCentroid reports whether the series carries centroided scans.
// The decision is made from shape: a series without a shared mass
// axis must be rasterized before gridding.
func (s *Series) IsCentroid() bool {
	return s.MassAxis == nil
}

// Times returns the acquisition time of every scan, in scan order.
func (s *Series) Times() []float64 {
	times := make([]float64, len(s.Scans))
	for i, scan := range s.Scans {
		times[i] = scan.Time
	}
	return times
}
