package zone

import (
	"testing"

	"github.com/google/uuid"
)

func TestStoreReplaceAllAssignsUIDs(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Zone{
		{Label: "cola", Box: Box{10, 10, 50, 50}},
		{Label: "chips", Box: Box{200, 10, 50, 50}},
	})

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Len = %d, want 2", len(snap))
	}
	if snap[0].UID == uuid.Nil || snap[1].UID == uuid.Nil {
		t.Error("zones should get uids on insert")
	}
	if snap[0].UID == snap[1].UID {
		t.Error("uids must be distinct")
	}
}

func TestStoreReplaceAllKeepsExistingUID(t *testing.T) {
	s := NewStore()
	existing := uuid.New()
	s.ReplaceAll([]Zone{{UID: existing, Label: "cola", Box: Box{10, 10, 50, 50}}})

	if snap := s.Snapshot(); snap[0].UID != existing {
		t.Errorf("existing uid replaced: %s", snap[0].UID)
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := NewStore()
	color := BGR{10, 20, 30}
	s.ReplaceAll([]Zone{{Label: "cola", Box: Box{10, 10, 50, 50}, AvgColor: &color}})

	snap := s.Snapshot()
	snap[0].Label = "tampered"
	snap[0].AvgColor[0] = 99

	again := s.Snapshot()
	if again[0].Label != "cola" {
		t.Error("snapshot mutation leaked into store")
	}
	if (*again[0].AvgColor)[0] != 10 {
		t.Error("snapshot color mutation leaked into store")
	}
}

func TestStoreAt(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Zone{{Label: "cola", Box: Box{10, 10, 50, 50}}})

	if z, ok := s.At(0); !ok || z.Label != "cola" {
		t.Errorf("At(0) = %+v, %v", z, ok)
	}
	if _, ok := s.At(1); ok {
		t.Error("At past the end should report false")
	}
	if _, ok := s.At(-1); ok {
		t.Error("At(-1) should report false")
	}
}

func TestStoreSetCropPath(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Zone{{Label: "cola", Box: Box{10, 10, 50, 50}}})

	s.SetCropPath(0, "/data/products/p.jpg")
	s.SetCropPath(7, "/ignored")

	if z, _ := s.At(0); z.CropPath != "/data/products/p.jpg" {
		t.Errorf("crop path not set: %q", z.CropPath)
	}
}

func TestStoreReconcileWithAssignsUIDsToAdded(t *testing.T) {
	s := NewStore()
	color := BGR{100, 100, 100}
	s.ReplaceAll([]Zone{{Label: "cola", Box: Box{100, 100, 50, 50}, AvgColor: &color}})
	before, _ := s.At(0)

	sampler := stubSampler{color: color, ok: true}
	res := s.ReconcileWith([]Zone{{Label: "chips", Box: Box{400, 400, 50, 50}}}, sampler)
	if res.Added != 1 || res.Removed != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Len = %d, want 2", len(snap))
	}
	if snap[0].UID != before.UID {
		t.Error("retained zone lost its uid")
	}
	if snap[1].UID == uuid.Nil {
		t.Error("added zone did not get a uid")
	}
}

func TestStoreApplySearchResults(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Zone{
		{Label: "cola", Box: Box{10, 10, 50, 50}},
		{Label: "cola", Box: Box{200, 10, 50, 50}},
		{Label: "chips", Box: Box{400, 10, 50, 50}, SearchResults: []SearchResult{{Title: "old", Price: "$1"}}},
	})

	s.ApplySearchResults(map[string][]SearchResult{
		"cola": {{Title: "Cola 1.5L", Price: "$2.49", Source: "shop"}},
	})

	snap := s.Snapshot()
	for i := 0; i < 2; i++ {
		if len(snap[i].SearchResults) != 1 || snap[i].SearchResults[0].Price != "$2.49" {
			t.Errorf("zone %d missing shared results: %+v", i, snap[i].SearchResults)
		}
	}
	// A label absent from the map keeps its previous results.
	if len(snap[2].SearchResults) != 1 || snap[2].SearchResults[0].Title != "old" {
		t.Errorf("untouched label lost its results: %+v", snap[2].SearchResults)
	}
}
