package zone

import "sort"

const (
	// zonePadding widens a raw product box by 15% per side at build time.
	// Shoppers reach just outside the tight detector box, so the zone used
	// for occupancy reasoning must be larger than the detection itself.
	zonePadding = 0.15

	// nmsOverlap suppresses the lower-score box when two surviving boxes
	// overlap more than this, regardless of class.
	nmsOverlap = 0.30
)

type scoredBox struct {
	box   Box
	score float64
	class int
	order int
}

// BuildZones converts raw detection rows into deduplicated, padded product
// zones in frame pixel coordinates. Rows whose best class is person, or whose
// best score is at or below confThresh, are skipped. The result carries no
// uid and no reference color; the store assigns those.
func BuildZones(rows []Row, frameW, frameH int, labels Labeler, confThresh float64) []Zone {
	candidates := make([]scoredBox, 0, len(rows))

	for _, row := range rows {
		classID, score := row.ArgMax()
		if classID < 0 || score <= confThresh {
			continue
		}
		if classID == PersonClassID {
			continue
		}

		box := padToFrame(row, frameW, frameH, zonePadding)
		if box.Empty() {
			continue
		}
		candidates = append(candidates, scoredBox{
			box:   box,
			score: score,
			class: classID,
			order: len(candidates),
		})
	}

	kept := suppress(candidates)

	zones := make([]Zone, 0, len(kept))
	for _, c := range kept {
		zones = append(zones, Zone{
			Label:      labels.Label(c.class),
			Confidence: c.score,
			Box:        c.box,
		})
	}
	return zones
}

// padToFrame expands a raw grid-space row by ratio per side and maps it to
// frame pixels, clipped to frame bounds.
func padToFrame(row Row, frameW, frameH int, ratio float64) Box {
	xFactor := float64(frameW) / GridSize
	yFactor := float64(frameH) / GridSize

	newW := row.W * (1 + 2*ratio)
	newH := row.H * (1 + 2*ratio)

	box := Box{
		X: int((row.CX - newW/2) * xFactor),
		Y: int((row.CY - newH/2) * yFactor),
		W: int(newW * xFactor),
		H: int(newH * yFactor),
	}
	return box.Clip(frameW, frameH)
}

// suppress applies greedy non-max suppression across all classes: duplicate
// detections of the same physical product land on top of each other even when
// the detector disagrees about the class. Ordering is deterministic (score
// descending, input order as tie-break) so building twice from the same input
// yields the same zone set.
func suppress(candidates []scoredBox) []scoredBox {
	sorted := make([]scoredBox, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].order < sorted[j].order
	})

	kept := make([]scoredBox, 0, len(sorted))
	for _, c := range sorted {
		duplicate := false
		for _, k := range kept {
			if IoU(c.box, k.box) > nmsOverlap {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}

	// Restore input order so output is stable with respect to the raw rows.
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].order < kept[j].order })
	return kept
}
