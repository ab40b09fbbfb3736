package zone

const (
	// driftThreshold drops a zone when the mean color over its region moved
	// further than this (Euclidean, 0-255 per channel) from the reference
	// sample: the product likely moved or was taken.
	driftThreshold = 45.0

	// duplicateRadius treats a fresh candidate as a re-detection of an
	// existing zone when their centroids are closer than this many pixels.
	duplicateRadius = 60.0
)

// ColorSampler computes the mean color over a frame region. The second
// return is false when the region cannot be sampled (empty or fully outside
// the frame).
type ColorSampler interface {
	MeanColor(b Box) (BGR, bool)
}

// ReconcileResult reports what a reconciliation pass did.
type ReconcileResult struct {
	Removed int
	Added   int
}

// Reconcile merges a fresh low-threshold candidate list into the previous
// zone list without discarding unrelated history.
//
// Drift pass: previous zones with a reference color are re-sampled in the
// current frame; ones that drifted beyond the threshold (or can no longer be
// sampled) are dropped, ones without a reference color are retained
// unconditionally. Addition pass: candidates whose centroid matches no
// retained zone are appended as genuinely new. Every retained or added zone
// missing a reference color gets one sampled.
//
// Retained zones keep their uid, crop path and search results; the detector
// provides no persistent object identity, so matching is geometric only.
func Reconcile(prev []Zone, candidates []Zone, sampler ColorSampler) ([]Zone, ReconcileResult) {
	var res ReconcileResult

	retained := make([]Zone, 0, len(prev))
	for _, z := range prev {
		if z.AvgColor == nil {
			retained = append(retained, z.clone())
			continue
		}
		current, ok := sampler.MeanColor(z.Box)
		if !ok {
			res.Removed++
			continue
		}
		if current.Dist(*z.AvgColor) > driftThreshold {
			res.Removed++
			continue
		}
		retained = append(retained, z.clone())
	}

	for _, cand := range candidates {
		if cand.Box.Empty() {
			continue
		}
		center := cand.Box.Centroid()
		duplicate := false
		for _, ex := range retained {
			if euclideanDistance(center, ex.Box.Centroid()) < duplicateRadius {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		retained = append(retained, cand.clone())
		res.Added++
	}

	for i := range retained {
		if retained[i].AvgColor != nil {
			continue
		}
		if c, ok := sampler.MeanColor(retained[i].Box); ok {
			color := c
			retained[i].AvgColor = &color
		}
	}

	return retained, res
}
