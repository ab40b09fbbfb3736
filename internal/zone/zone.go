// Package zone implements the shelf-monitoring core: building product zones
// from raw detector output, locating people, deciding per-zone occupancy,
// tracking dwell time and interactions, reconciling zone lists across
// detection passes, and buffering evidence frames.
package zone

import (
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PersonClassID is the detector class reserved for people. Person rows are
// never turned into product zones.
const PersonClassID = 0

// GridSize is the normalized input grid of the detector. Raw rows are in
// GridSize x GridSize coordinates regardless of the frame size.
const GridSize = 1280

// Row is one raw detection candidate: box center and size in the normalized
// grid plus per-class confidence scores.
type Row struct {
	CX     float64
	CY     float64
	W      float64
	H      float64
	Scores []float64
}

// ArgMax returns the best-scoring class and its score. A row with no scores
// returns (-1, 0).
func (r Row) ArgMax() (int, float64) {
	best := -1
	bestScore := 0.0
	for i, s := range r.Scores {
		if best == -1 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best, bestScore
}

// Labeler resolves a detector class id to a product label.
type Labeler interface {
	Label(classID int) string
}

// BGR is a mean color sample in OpenCV channel order, 0-255 per channel.
type BGR [3]float64

// Dist returns the Euclidean distance between two colors.
func (c BGR) Dist(other BGR) float64 {
	var sum float64
	for i := range c {
		d := c[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// SearchResult is one price-lookup entry merged into a zone record.
type SearchResult struct {
	Title  string `json:"title"`
	Price  string `json:"price"`
	Source string `json:"source"`
	Link   string `json:"link"`
}

// Zone is a tracked product region. The bbox is already padded outward from
// the raw detection and clipped to frame bounds; a zone with an empty bbox is
// never retained.
//
// UID is a stable identity assigned when the zone first enters the store and
// preserved across reconciliation. Analytics stay keyed by list position, so
// the uid exists for evidence records, snapshots and logs.
type Zone struct {
	UID           uuid.UUID      `json:"uid,omitempty"`
	Label         string         `json:"product"`
	Confidence    float64        `json:"confidence"`
	Box           Box            `json:"bbox"`
	AvgColor      *BGR           `json:"avg_color,omitempty"`
	CropPath      string         `json:"crop_path,omitempty"`
	SearchResults []SearchResult `json:"search_results,omitempty"`
}

// clone returns a deep copy so snapshot readers never alias store state.
func (z Zone) clone() Zone {
	out := z
	if z.AvgColor != nil {
		c := *z.AvgColor
		out.AvgColor = &c
	}
	if z.SearchResults != nil {
		out.SearchResults = make([]SearchResult, len(z.SearchResults))
		copy(out.SearchResults, z.SearchResults)
	}
	return out
}

// MarshalJSON encodes the box as a 4-integer array [x, y, w, h].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X, b.Y, b.W, b.H})
}

// UnmarshalJSON decodes a 4-integer array [x, y, w, h].
func (b *Box) UnmarshalJSON(data []byte) error {
	var arr [4]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return errors.Wrap(err, "bbox must be a 4-integer array")
	}
	b.X, b.Y, b.W, b.H = arr[0], arr[1], arr[2], arr[3]
	return nil
}
