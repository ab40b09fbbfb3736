// Package repository defines the persistence contracts for evidence
// artifacts produced during the current run.
package repository

import "time"

// Clip is one recorded evidence clip covering a single occupancy interval.
type Clip struct {
	ID          int64     `json:"id"`
	ZoneIndex   int       `json:"zone_index"`
	ZoneUID     string    `json:"zone_uid"`
	Label       string    `json:"label"`
	Path        string    `json:"path"`
	FrameCount  int       `json:"frame_count"`
	DurationSec float64   `json:"duration_sec"`
	CreatedAt   time.Time `json:"created_at"`
}

// Crop is one saved product crop image.
type Crop struct {
	ID        int64     `json:"id"`
	ZoneIndex int       `json:"zone_index"`
	ZoneUID   string    `json:"zone_uid"`
	Label     string    `json:"label"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// EvidenceRepository indexes clips and crops written to disk.
type EvidenceRepository interface {
	InsertClip(clip *Clip) (int64, error)
	ListClips(limit int) ([]Clip, error)

	InsertCrop(crop *Crop) (int64, error)
	ListCrops(limit int) ([]Crop, error)
}
