package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/suyash-modi/Product-Detection/internal/repository"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewFailsOnUnusablePath(t *testing.T) {
	// A directory is not a database file; New must fail cleanly.
	if _, err := New(t.TempDir()); err == nil {
		t.Error("expected an error for an unusable database path")
	}
}

func TestInsertAndListClips(t *testing.T) {
	repo := NewEvidenceRepository(setupTestDB(t))
	now := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		id, err := repo.InsertClip(&repository.Clip{
			ZoneIndex:   i,
			ZoneUID:     "uid-" + string(rune('a'+i)),
			Label:       "cola",
			Path:        "/data/clips/zone0_cola.avi",
			FrameCount:  90,
			DurationSec: 3.0,
			CreatedAt:   now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("InsertClip failed: %v", err)
		}
		if id <= 0 {
			t.Errorf("InsertClip returned id %d", id)
		}
	}

	clips, err := repo.ListClips(10)
	if err != nil {
		t.Fatalf("ListClips failed: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("listed %d clips, want 3", len(clips))
	}
	// Newest first.
	if clips[0].ZoneIndex != 2 {
		t.Errorf("first clip zone index = %d, want 2", clips[0].ZoneIndex)
	}
	if clips[0].FrameCount != 90 || clips[0].DurationSec != 3.0 {
		t.Errorf("clip fields lost: %+v", clips[0])
	}
}

func TestInsertClipsWithSamePath(t *testing.T) {
	repo := NewEvidenceRepository(setupTestDB(t))
	now := time.Now().UTC()

	// A leave/re-enter/leave flicker within one second yields two clips whose
	// names collide at 1-second timestamp granularity. Both must index.
	clip := repository.Clip{
		ZoneIndex: 0,
		Label:     "cola",
		Path:      "/data/clips/zone0_cola_2024-05-04_10-30-00.avi",
		CreatedAt: now,
	}
	if _, err := repo.InsertClip(&clip); err != nil {
		t.Fatalf("first InsertClip failed: %v", err)
	}
	if _, err := repo.InsertClip(&clip); err != nil {
		t.Fatalf("second InsertClip with the same path failed: %v", err)
	}

	clips, err := repo.ListClips(10)
	if err != nil {
		t.Fatalf("ListClips failed: %v", err)
	}
	if len(clips) != 2 {
		t.Errorf("listed %d clips, want 2", len(clips))
	}
}

func TestListClipsLimit(t *testing.T) {
	repo := NewEvidenceRepository(setupTestDB(t))
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		if _, err := repo.InsertClip(&repository.Clip{
			Label:     "cola",
			Path:      "/clip.avi",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("InsertClip failed: %v", err)
		}
	}

	clips, err := repo.ListClips(2)
	if err != nil {
		t.Fatalf("ListClips failed: %v", err)
	}
	if len(clips) != 2 {
		t.Errorf("listed %d clips, want 2", len(clips))
	}
}

func TestInsertAndListCrops(t *testing.T) {
	repo := NewEvidenceRepository(setupTestDB(t))

	id, err := repo.InsertCrop(&repository.Crop{
		ZoneIndex: 1,
		ZoneUID:   "uid-x",
		Label:     "chips",
		Path:      "/data/products/product_chips_1_10_10.jpg",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("InsertCrop failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("InsertCrop returned id %d", id)
	}

	crops, err := repo.ListCrops(10)
	if err != nil {
		t.Fatalf("ListCrops failed: %v", err)
	}
	if len(crops) != 1 {
		t.Fatalf("listed %d crops, want 1", len(crops))
	}
	if crops[0].Label != "chips" || crops[0].ZoneUID != "uid-x" {
		t.Errorf("crop fields lost: %+v", crops[0])
	}
}

func TestListEmptyTables(t *testing.T) {
	repo := NewEvidenceRepository(setupTestDB(t))

	clips, err := repo.ListClips(10)
	if err != nil {
		t.Fatalf("ListClips failed: %v", err)
	}
	if len(clips) != 0 {
		t.Errorf("expected no clips, got %d", len(clips))
	}

	crops, err := repo.ListCrops(10)
	if err != nil {
		t.Fatalf("ListCrops failed: %v", err)
	}
	if len(crops) != 0 {
		t.Errorf("expected no crops, got %d", len(crops))
	}
}
