package zone

const (
	// occupancyExpand enlarges a zone by 35% per side before testing person
	// presence. Independent of the build-time padding: that one covers
	// identification, this one covers interaction proximity.
	occupancyExpand = 0.35

	// overlapFraction counts a person as present when the intersection with
	// the expanded zone exceeds this fraction of the person box's own area.
	// Catches a person bending down whose centroid falls just outside.
	overlapFraction = 0.05
)

// Occupied returns the set of zone indices with at least one person inside
// or near them. A zone is occupied when any person centroid lies inside the
// expanded zone, or the person/expanded-zone overlap exceeds 5% of the
// person's area. There is no per-person attribution.
func Occupied(persons []Box, zones []Zone) map[int]struct{} {
	occupied := make(map[int]struct{})
	for i, z := range zones {
		if z.Box.Empty() {
			continue
		}
		expanded := z.Box.Rect().Expand(occupancyExpand)
		for _, p := range persons {
			if personInZone(p, expanded) {
				occupied[i] = struct{}{}
				break
			}
		}
	}
	return occupied
}

func personInZone(person Box, expandedZone Rect) bool {
	if expandedZone.Contains(person.Centroid()) {
		return true
	}
	area := float64(person.Area())
	if area <= 0 {
		return false
	}
	inter := person.Rect().IntersectArea(expandedZone)
	return inter/area > overlapFraction
}
