package sqlite

import (
	"github.com/pkg/errors"

	"github.com/suyash-modi/Product-Detection/internal/repository"
)

// EvidenceRepository implements repository.EvidenceRepository for SQLite.
type EvidenceRepository struct {
	db *DB
}

// NewEvidenceRepository creates a new SQLite evidence repository.
func NewEvidenceRepository(db *DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// InsertClip adds a clip record to the index.
func (r *EvidenceRepository) InsertClip(clip *repository.Clip) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO clips (zone_index, zone_uid, label, path, frame_count, duration_sec, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, clip.ZoneIndex, clip.ZoneUID, clip.Label, clip.Path, clip.FrameCount, clip.DurationSec, clip.CreatedAt)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert clip")
	}

	return result.LastInsertId()
}

// ListClips returns the most recent clips, newest first.
func (r *EvidenceRepository) ListClips(limit int) ([]repository.Clip, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Conn().Query(`
		SELECT id, zone_index, zone_uid, label, path, frame_count, duration_sec, created_at
		FROM clips ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query clips")
	}
	defer rows.Close()

	var clips []repository.Clip
	for rows.Next() {
		var c repository.Clip
		if err := rows.Scan(&c.ID, &c.ZoneIndex, &c.ZoneUID, &c.Label, &c.Path, &c.FrameCount, &c.DurationSec, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan clip")
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

// InsertCrop adds a crop record to the index.
func (r *EvidenceRepository) InsertCrop(crop *repository.Crop) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO crops (zone_index, zone_uid, label, path, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, crop.ZoneIndex, crop.ZoneUID, crop.Label, crop.Path, crop.CreatedAt)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert crop")
	}

	return result.LastInsertId()
}

// ListCrops returns the most recent crops, newest first.
func (r *EvidenceRepository) ListCrops(limit int) ([]repository.Crop, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Conn().Query(`
		SELECT id, zone_index, zone_uid, label, path, created_at
		FROM crops ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query crops")
	}
	defer rows.Close()

	var crops []repository.Crop
	for rows.Next() {
		var c repository.Crop
		if err := rows.Scan(&c.ID, &c.ZoneIndex, &c.ZoneUID, &c.Label, &c.Path, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan crop")
		}
		crops = append(crops, c)
	}
	return crops, rows.Err()
}
