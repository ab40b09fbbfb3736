package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/suyash-modi/Product-Detection/internal/config"
	"github.com/suyash-modi/Product-Detection/internal/handlers"
	"github.com/suyash-modi/Product-Detection/internal/logger"
	"github.com/suyash-modi/Product-Detection/internal/middleware"
	"github.com/suyash-modi/Product-Detection/internal/repository"
	"github.com/suyash-modi/Product-Detection/internal/services"
)

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join("static", path+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers the API endpoints, static file serving and log
// endpoints, and wraps the mux with the authentication middleware.
func SetupRoutes(pipeline *services.Pipeline, repo repository.EvidenceRepository, cfg *config.Config, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Live stream
	mux.HandleFunc("/api/view", handlers.ViewWebsocketHandler(pipeline, log))

	// Zone endpoints
	mux.HandleFunc("/api/zones", handlers.GetZonesHandler(pipeline, log))
	mux.HandleFunc("/api/zones/stats", handlers.GetStatsHandler(pipeline, log))
	mux.HandleFunc("/api/status", handlers.GetStatusHandler(pipeline, log))
	mux.HandleFunc("/api/clips", handlers.GetClipsHandler(repo, log))

	// Task endpoints
	mux.HandleFunc("/api/detect", handlers.DetectHandler(pipeline, log))
	mux.HandleFunc("/api/retry", handlers.RetryHandler(pipeline, log))
	mux.HandleFunc("/api/search", handlers.SearchHandler(pipeline, log))

	// Log endpoints
	mux.HandleFunc("/logs/info", handlers.ShowInfoLogsHandler(cfg))
	mux.HandleFunc("/logs/warning", handlers.ShowWarningLogsHandler(cfg))
	mux.HandleFunc("/logs/error", handlers.ShowErrorLogsHandler(cfg))

	mux.HandleFunc("/logs/info/clear", handlers.ClearInfoLogsHandler(log))
	mux.HandleFunc("/logs/warning/clear", handlers.ClearWarningLogsHandler(log))
	mux.HandleFunc("/logs/error/clear", handlers.ClearErrorLogsHandler(log))

	// Automatic HTML handler mapping for example: /settings -> /static/settings.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	return middleware.AuthMiddleware(cfg, mux)
}
