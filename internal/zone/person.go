package zone

// PersonBoxes extracts person bounding boxes from raw detection rows.
//
// The threshold is deliberately low (0.15 by default) so distant or partially
// occluded shoppers still register for occupancy purposes. Boxes are not
// padded and not deduplicated: occupancy only needs "any overlap", so
// multiple overlapping low-confidence person boxes are harmless.
func PersonBoxes(rows []Row, frameW, frameH int, confThresh float64) []Box {
	xFactor := float64(frameW) / GridSize
	yFactor := float64(frameH) / GridSize

	var boxes []Box
	for _, row := range rows {
		classID, _ := row.ArgMax()
		if classID != PersonClassID {
			continue
		}
		if row.Scores[PersonClassID] < confThresh {
			continue
		}

		box := Box{
			X: int((row.CX - row.W/2) * xFactor),
			Y: int((row.CY - row.H/2) * yFactor),
			W: int(row.W * xFactor),
			H: int(row.H * yFactor),
		}
		box = box.Clip(frameW, frameH)
		if box.Empty() {
			continue
		}
		boxes = append(boxes, box)
	}
	return boxes
}
