package zone

import (
	"math"
	"testing"
)

type fixedLabels map[int]string

func (f fixedLabels) Label(classID int) string {
	if name, ok := f[classID]; ok {
		return name
	}
	return "product"
}

// row builds a raw detection row in grid coordinates with a single dominant class.
func row(cx, cy, w, h float64, classID int, score float64, numClasses int) Row {
	scores := make([]float64, numClasses)
	scores[classID] = score
	return Row{CX: cx, CY: cy, W: w, H: h, Scores: scores}
}

func TestBuildZonesSkipsPersonRows(t *testing.T) {
	rows := []Row{
		row(640, 640, 100, 100, PersonClassID, 0.99, 3),
		row(200, 200, 80, 80, 2, 0.9, 3),
	}

	zones := BuildZones(rows, 1280, 1280, fixedLabels{2: "cola"}, 0.5)
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	if zones[0].Label != "cola" {
		t.Errorf("wrong label: %s", zones[0].Label)
	}
}

func TestBuildZonesThreshold(t *testing.T) {
	rows := []Row{
		row(300, 300, 80, 80, 1, 0.50, 3), // at threshold, excluded
		row(900, 900, 80, 80, 2, 0.51, 3), // above, kept
	}

	zones := BuildZones(rows, 1280, 1280, fixedLabels{}, 0.5)
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	if math.Abs(zones[0].Confidence-0.51) > eps {
		t.Errorf("wrong confidence: %v", zones[0].Confidence)
	}
}

func TestBuildZonesPadding(t *testing.T) {
	// 1280x1280 frame: grid coordinates map 1:1 to pixels.
	rows := []Row{row(640, 640, 100, 100, 1, 0.9, 2)}

	zones := BuildZones(rows, 1280, 1280, fixedLabels{}, 0.5)
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}

	// 15% padding per side: 100 -> 130, centered at 640.
	want := Box{X: 575, Y: 575, W: 130, H: 130}
	if zones[0].Box != want {
		t.Errorf("padded box = %+v, want %+v", zones[0].Box, want)
	}
}

func TestBuildZonesBoxesInsideFrame(t *testing.T) {
	frameW, frameH := 640, 480
	rows := []Row{
		row(10, 10, 200, 200, 1, 0.9, 2),     // pads past the top-left corner
		row(1270, 1270, 300, 300, 1, 0.8, 2), // pads past the bottom-right corner
		row(640, 640, 100, 100, 1, 0.7, 2),
	}

	zones := BuildZones(rows, frameW, frameH, fixedLabels{}, 0.5)
	for _, z := range zones {
		b := z.Box
		if b.Empty() {
			t.Errorf("empty box retained: %+v", b)
		}
		if b.X < 0 || b.Y < 0 || b.X+b.W > frameW || b.Y+b.H > frameH {
			t.Errorf("box out of frame bounds: %+v", b)
		}
	}
}

func TestBuildZonesSuppressesOverlaps(t *testing.T) {
	// Two near-identical detections of the same product under different
	// classes, plus one distinct product.
	rows := []Row{
		row(400, 400, 100, 100, 1, 0.9, 3),
		row(405, 400, 100, 100, 2, 0.7, 3),
		row(1000, 1000, 100, 100, 2, 0.8, 3),
	}

	zones := BuildZones(rows, 1280, 1280, fixedLabels{}, 0.5)
	if len(zones) != 2 {
		t.Fatalf("expected 2 zones after suppression, got %d", len(zones))
	}
	// The higher-score duplicate survives.
	if math.Abs(zones[0].Confidence-0.9) > eps {
		t.Errorf("kept the wrong duplicate: confidence %v", zones[0].Confidence)
	}
}

func TestBuildZonesNoResidualOverlap(t *testing.T) {
	rows := []Row{
		row(400, 400, 120, 120, 1, 0.9, 3),
		row(430, 400, 120, 120, 2, 0.8, 3),
		row(460, 430, 120, 120, 1, 0.7, 3),
		row(900, 900, 100, 100, 2, 0.6, 3),
	}

	zones := BuildZones(rows, 1280, 1280, fixedLabels{}, 0.5)
	for i := 0; i < len(zones); i++ {
		for j := i + 1; j < len(zones); j++ {
			if iou := IoU(zones[i].Box, zones[j].Box); iou > 0.30 {
				t.Errorf("zones %d and %d still overlap with IoU %v", i, j, iou)
			}
		}
	}
}

func TestBuildZonesDeterministic(t *testing.T) {
	rows := []Row{
		row(400, 400, 120, 120, 1, 0.8, 3),
		row(430, 400, 120, 120, 2, 0.8, 3), // score tie broken by input order
		row(900, 900, 100, 100, 2, 0.6, 3),
	}

	first := BuildZones(rows, 1280, 1280, fixedLabels{}, 0.5)
	for run := 0; run < 5; run++ {
		again := BuildZones(rows, 1280, 1280, fixedLabels{}, 0.5)
		if len(again) != len(first) {
			t.Fatalf("run %d: zone count changed from %d to %d", run, len(first), len(again))
		}
		for i := range first {
			if again[i].Box != first[i].Box || again[i].Confidence != first[i].Confidence {
				t.Errorf("run %d: zone %d differs", run, i)
			}
		}
	}
}
