package app

import (
	"fmt"
	"net/http"
	"os"

	"github.com/suyash-modi/Product-Detection/internal/config"
	"github.com/suyash-modi/Product-Detection/internal/detect"
	"github.com/suyash-modi/Product-Detection/internal/logger"
	"github.com/suyash-modi/Product-Detection/internal/repository"
	"github.com/suyash-modi/Product-Detection/internal/repository/sqlite"
	"github.com/suyash-modi/Product-Detection/internal/routes"
	"github.com/suyash-modi/Product-Detection/internal/search"
	"github.com/suyash-modi/Product-Detection/internal/services"
	"github.com/suyash-modi/Product-Detection/internal/services/websocket"
	"github.com/suyash-modi/Product-Detection/internal/storage"
	"github.com/suyash-modi/Product-Detection/internal/video"
	"github.com/suyash-modi/Product-Detection/internal/zone"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	hubService *websocket.HubService
	pipeline   *services.Pipeline
	db         *sqlite.DB
	repo       repository.EvidenceRepository
}

// NewApp builds the full service graph. Missing camera, model, labels or
// database degrade the relevant feature and are logged; the server itself
// always starts.
func NewApp() *App {
	cfg := config.Load()
	log := logger.New(cfg.LogDirectory)

	for _, dir := range []string{cfg.DataDir, cfg.ProductsDir, cfg.ClipsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warning("Could not create directory %s: %v", dir, err)
		}
	}

	detector := detect.NewDetector(cfg.ModelPath, cfg.ModelConfigPath, log)

	labels, err := detect.LoadLabels(cfg.LabelsPath)
	if err != nil {
		log.Warning("Could not load labels from %s: %v (using default label)", cfg.LabelsPath, err)
		labels = nil
	}

	store := zone.NewStore()
	if _, statErr := os.Stat(cfg.ZonesFile); statErr == nil {
		if zones, err := storage.LoadZones(cfg.ZonesFile); err != nil {
			log.Warning("Could not load saved zones: %v", err)
		} else {
			store.ReplaceAll(zones)
			log.Info("Restored %d zones from %s", len(zones), cfg.ZonesFile)
		}
	}

	tracker := zone.NewDwellTracker(store.Len())
	hub := websocket.NewHubService(log)

	var db *sqlite.DB
	var repo repository.EvidenceRepository
	if db, err = sqlite.New(cfg.DBPath); err != nil {
		log.Warning("Evidence database unavailable: %v", err)
		db = nil
	} else {
		repo = sqlite.NewEvidenceRepository(db)
	}

	searcher := search.NewClient(cfg.SearchURL, cfg.SearchTimeout)

	capture, err := video.OpenSource(cfg.VideoSource)
	if err != nil {
		log.Warning("Could not open video source %q: %v", cfg.VideoSource, err)
		capture = nil
	}

	pipeline := services.NewPipeline(cfg, log, detector, labels, store, tracker, hub, repo, searcher, capture)

	return &App{
		config:     cfg,
		logger:     log,
		hubService: hub,
		pipeline:   pipeline,
		db:         db,
		repo:       repo,
	}
}

func (a *App) Run() error {
	go a.hubService.Run()
	a.pipeline.Start()

	router := routes.SetupRoutes(a.pipeline, a.repo, a.config, a.logger)

	a.logger.Info("Shelf monitor listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Video source: %s", a.config.VideoSource)
	a.logger.Info("Model: %s", a.config.ModelPath)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), router)
}
