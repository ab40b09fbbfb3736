package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/suyash-modi/Product-Detection/internal/logger"
	"github.com/suyash-modi/Product-Detection/internal/repository"
	"github.com/suyash-modi/Product-Detection/internal/services"
)

func writeJSON(w http.ResponseWriter, log *logger.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response: %v", err)
	}
}

// GetZonesHandler returns the current zone snapshot, the same schema as the
// persisted zones file.
func GetZonesHandler(pipeline *services.Pipeline, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, pipeline.Zones())
	}
}

// GetStatsHandler returns per-zone dwell/occupancy statistics.
func GetStatsHandler(pipeline *services.Pipeline, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, pipeline.ZoneStats())
	}
}

// GetStatusHandler reports pipeline health and the last operation status.
func GetStatusHandler(pipeline *services.Pipeline, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, map[string]interface{}{
			"status":         pipeline.Status(),
			"detector_ready": pipeline.DetectorReady(),
			"camera_ready":   pipeline.CameraReady(),
			"zones":          len(pipeline.Zones()),
		})
	}
}

// GetClipsHandler lists recorded evidence clips, newest first. Accepts an
// optional ?limit= query parameter.
func GetClipsHandler(repo repository.EvidenceRepository, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			http.Error(w, "Evidence database unavailable", http.StatusServiceUnavailable)
			return
		}
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v > 0 {
				limit = v
			}
		}

		clips, err := repo.ListClips(limit)
		if err != nil {
			log.Error("Failed to list clips: %v", err)
			http.Error(w, "Failed to list clips", http.StatusInternalServerError)
			return
		}
		if clips == nil {
			clips = []repository.Clip{}
		}
		writeJSON(w, log, clips)
	}
}
