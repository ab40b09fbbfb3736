package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/suyash-modi/Product-Detection/internal/logger"
	"github.com/suyash-modi/Product-Detection/internal/services"
)

// actionHandler queues one user-triggered operation. The capture loop is
// never blocked: the handler returns immediately and the client polls
// /api/status for the outcome.
func actionHandler(log *logger.Logger, enqueue func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := enqueue(); err != nil {
			log.Warning("Could not queue task: %v", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "queued"}); err != nil {
			log.Error("Failed to encode response: %v", err)
		}
	}
}

// DetectHandler triggers a full detection scan.
func DetectHandler(pipeline *services.Pipeline, log *logger.Logger) http.HandlerFunc {
	return actionHandler(log, pipeline.EnqueueDetect)
}

// RetryHandler triggers a reconcile pass (add missed items, remove moved ones).
func RetryHandler(pipeline *services.Pipeline, log *logger.Logger) http.HandlerFunc {
	return actionHandler(log, pipeline.EnqueueRetry)
}

// SearchHandler triggers a price lookup over all zones.
func SearchHandler(pipeline *services.Pipeline, log *logger.Logger) http.HandlerFunc {
	return actionHandler(log, pipeline.EnqueueSearch)
}
