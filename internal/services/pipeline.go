package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/suyash-modi/Product-Detection/internal/config"
	"github.com/suyash-modi/Product-Detection/internal/detect"
	"github.com/suyash-modi/Product-Detection/internal/logger"
	"github.com/suyash-modi/Product-Detection/internal/repository"
	"github.com/suyash-modi/Product-Detection/internal/search"
	"github.com/suyash-modi/Product-Detection/internal/services/websocket"
	"github.com/suyash-modi/Product-Detection/internal/storage"
	"github.com/suyash-modi/Product-Detection/internal/video"
	"github.com/suyash-modi/Product-Detection/internal/zone"
)

// TaskKind identifies a user-triggered operation.
type TaskKind int

const (
	TaskDetect TaskKind = iota // full detection, replaces all zones
	TaskRetry                  // reconcile pass, preserves history
	TaskSearch                 // price lookup for all zones
)

// Task is one queued user-triggered operation.
type Task struct {
	Kind TaskKind
}

// ZoneStat is the dashboard view of one zone: the zone record joined with
// its live dwell statistics.
type ZoneStat struct {
	Index      int      `json:"index"`
	UID        string   `json:"uid"`
	Product    string   `json:"product"`
	Confidence float64  `json:"confidence"`
	Bbox       zone.Box `json:"bbox"`
	zone.DwellStats
	Recording bool `json:"recording"`
}

// Pipeline runs the three concurrent activities of the system: the fast
// frame-capture loop, the slower analytics tick, and the worker executing
// user-triggered detection/retry/search tasks. All shared state lives behind
// owned containers (zone store, dwell tracker, evidence recorder) with short
// critical sections; the inference handle is serialized inside the detector.
type Pipeline struct {
	cfg      *config.Config
	logger   *logger.Logger
	detector *detect.Detector
	labels   *detect.LabelTable
	store    *zone.Store
	tracker  *zone.DwellTracker
	recorder *zone.Recorder[gocv.Mat]
	hub      *websocket.HubService
	repo     repository.EvidenceRepository
	searcher *search.Client
	capture  *gocv.VideoCapture

	frameMu    sync.Mutex
	frame      gocv.Mat
	hasFrame   bool
	frameCount int

	statusMu sync.Mutex
	status   string

	tasks chan Task
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewPipeline wires the pipeline. capture may be nil when the camera failed
// to open; the loops then idle and the status reports the degraded state.
func NewPipeline(
	cfg *config.Config,
	log *logger.Logger,
	detector *detect.Detector,
	labels *detect.LabelTable,
	store *zone.Store,
	tracker *zone.DwellTracker,
	hub *websocket.HubService,
	repo repository.EvidenceRepository,
	searcher *search.Client,
	capture *gocv.VideoCapture,
) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		logger:   log,
		detector: detector,
		labels:   labels,
		store:    store,
		tracker:  tracker,
		hub:      hub,
		repo:     repo,
		searcher: searcher,
		capture:  capture,
		tasks:    make(chan Task, cfg.TaskQueueSize),
		stop:     make(chan struct{}),
		status:   "System online.",
	}
	p.recorder = zone.NewRecorder[gocv.Mat](cfg.EvidenceMaxFrames(), p.flushClip, func(m gocv.Mat) { m.Close() })

	if capture == nil {
		p.setStatus("Camera unavailable: live analytics disabled.")
	}
	if !detector.Ready() {
		p.setStatus("Detection model unavailable: detection disabled.")
	}
	return p
}

// Start launches the capture loop, the analytics loop and the task workers.
func (p *Pipeline) Start() {
	for i := 0; i < p.cfg.TaskWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.taskWorker(id)
		}(i)
	}

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		p.captureLoop()
	}()
	go func() {
		defer p.wg.Done()
		p.analyticsLoop()
	}()

	p.logger.Info("Pipeline started (capture %d fps, analytics every %s)", p.cfg.CaptureFPS, p.cfg.AnalyticsInterval)
}

// Stop shuts the loops and workers down and releases the held frame. The
// tasks channel stays open so a handler racing shutdown can never panic on a
// closed channel; enqueue refuses once stop is closed.
func (p *Pipeline) Stop() {
	close(p.stop)
	p.wg.Wait()

	p.frameMu.Lock()
	if p.hasFrame {
		p.frame.Close()
		p.hasFrame = false
	}
	p.frameMu.Unlock()

	p.recorder.Reset()
	p.logger.Info("Pipeline stopped")
}

// --- capture loop -----------------------------------------------------------

func (p *Pipeline) captureLoop() {
	fps := p.cfg.CaptureFPS
	if fps < 1 {
		fps = 1
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}
		if p.capture == nil {
			continue
		}
		// Frame not ready is transient: skip the tick, keep prior state.
		if ok := p.capture.Read(&img); !ok || img.Empty() {
			continue
		}

		p.setFrame(img)
		p.appendEvidence(img)

		p.frameCount++
		if p.cfg.BroadcastEveryNth > 0 && p.frameCount%p.cfg.BroadcastEveryNth == 0 {
			p.broadcastFrame(img)
		}
	}
}

func (p *Pipeline) setFrame(img gocv.Mat) {
	clone := img.Clone()
	p.frameMu.Lock()
	if p.hasFrame {
		p.frame.Close()
	}
	p.frame = clone
	p.hasFrame = true
	p.frameMu.Unlock()
}

// frameClone returns a copy of the latest captured frame. Copies keep the
// analytics tick and the capture loop from tearing each other's Mats.
func (p *Pipeline) frameClone() (gocv.Mat, bool) {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()
	if !p.hasFrame || p.frame.Empty() {
		return gocv.Mat{}, false
	}
	return p.frame.Clone(), true
}

// appendEvidence adds an overlaid copy of the frame to every open evidence
// buffer. Full buffers are skipped inside the recorder (bounded memory).
func (p *Pipeline) appendEvidence(frame gocv.Mat) {
	if len(p.recorder.OpenZones()) == 0 {
		return
	}
	zones := p.store.Snapshot()
	red := color.RGBA{R: 255, G: 0, B: 0, A: 0}

	p.recorder.AppendAll(func(idx int) gocv.Mat {
		clone := frame.Clone()
		if idx >= 0 && idx < len(zones) {
			b := zones[idx].Box
			_ = gocv.Rectangle(&clone, image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H), red, 2)
			label := fmt.Sprintf("REC zone %d", idx)
			_ = gocv.PutText(&clone, label, image.Pt(b.X, maxInt(12, b.Y-10)), gocv.FontHersheySimplex, 0.6, red, 2)
		}
		return clone
	})
}

func (p *Pipeline) broadcastFrame(frame gocv.Mat) {
	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		p.logger.Error("Failed to encode frame: %v", err)
		return
	}
	encoded := base64.StdEncoding.EncodeToString(buf.GetBytes())
	buf.Close()

	p.hub.BroadcastJSON(map[string]string{
		"type":  "frame",
		"image": encoded,
	})
}

// --- analytics loop ---------------------------------------------------------

func (p *Pipeline) analyticsLoop() {
	ticker := time.NewTicker(p.cfg.AnalyticsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.analyticsTick()
		}
	}
}

// analyticsTick computes occupancy from one consistent frame and one
// consistent zone snapshot, feeds the dwell tracker, and opens/closes
// evidence buffers from the entered/left deltas.
func (p *Pipeline) analyticsTick() {
	frame, ok := p.frameClone()
	if !ok {
		return
	}
	defer frame.Close()

	zones := p.store.Snapshot()
	now := time.Now()

	occupied := map[int]struct{}{}
	if len(zones) > 0 {
		rows, ok := p.detector.TryInfer(frame)
		if !ok {
			// Net busy with a user-triggered scan, or inference failed:
			// skip the tick and retain prior state.
			return
		}
		persons := zone.PersonBoxes(rows, frame.Cols(), frame.Rows(), p.cfg.PersonThreshold)
		occupied = zone.Occupied(persons, zones)
	}

	entered, left := p.tracker.Update(occupied, now)

	for _, idx := range entered {
		p.recorder.Open(idx)
		p.logger.Info("Zone %d (%s): person entered", idx, labelAt(zones, idx))
	}
	for _, idx := range left {
		p.logger.Info("Zone %d (%s): person left", idx, labelAt(zones, idx))
		p.recorder.CloseZone(idx, labelAt(zones, idx))
	}

	p.hub.BroadcastJSON(map[string]interface{}{
		"type":  "stats",
		"zones": p.zoneStats(zones, now),
	})
}

func labelAt(zones []zone.Zone, idx int) string {
	if idx < 0 || idx >= len(zones) {
		return detect.DefaultLabel
	}
	return zones[idx].Label
}

func (p *Pipeline) zoneStats(zones []zone.Zone, now time.Time) []ZoneStat {
	stats := p.tracker.Stats(now)
	n := len(zones)
	if len(stats) < n {
		n = len(stats)
	}

	out := make([]ZoneStat, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ZoneStat{
			Index:      i,
			UID:        zones[i].UID.String(),
			Product:    zones[i].Label,
			Confidence: zones[i].Confidence,
			Bbox:       zones[i].Box,
			DwellStats: stats[i],
			Recording:  p.recorder.Recording(i),
		})
	}
	return out
}

// ZoneStats returns the current dashboard view.
func (p *Pipeline) ZoneStats() []ZoneStat {
	return p.zoneStats(p.store.Snapshot(), time.Now())
}

// Zones returns a snapshot of the zone list.
func (p *Pipeline) Zones() []zone.Zone {
	return p.store.Snapshot()
}

// --- evidence flush ---------------------------------------------------------

// flushClip encodes a closed evidence buffer to a clip and indexes it.
// Runs on its own goroutine; failures are logged, never raised.
func (p *Pipeline) flushClip(zoneIdx int, label string, frames []gocv.Mat) {
	defer func() {
		for i := range frames {
			frames[i].Close()
		}
	}()

	now := time.Now()
	name := zone.ClipName(zoneIdx, label, now, video.ClipExt)
	path := filepath.Join(p.cfg.ClipsDir, name)

	if err := video.WriteClip(path, frames, float64(p.cfg.CaptureFPS)); err != nil {
		p.logger.Error("Failed to write evidence clip %s: %v", name, err)
		return
	}

	uid := ""
	if z, ok := p.store.At(zoneIdx); ok {
		uid = z.UID.String()
	}
	if p.repo != nil {
		_, err := p.repo.InsertClip(&repository.Clip{
			ZoneIndex:   zoneIdx,
			ZoneUID:     uid,
			Label:       label,
			Path:        path,
			FrameCount:  len(frames),
			DurationSec: float64(len(frames)) / float64(p.cfg.CaptureFPS),
			CreatedAt:   now,
		})
		if err != nil {
			p.logger.Error("Failed to index evidence clip %s: %v", name, err)
		}
	}

	p.logger.Info("Saved evidence clip %s (%d frames)", name, len(frames))
}

// --- user-triggered tasks ---------------------------------------------------

// EnqueueDetect queues a full detection scan.
func (p *Pipeline) EnqueueDetect() error {
	return p.enqueue(Task{Kind: TaskDetect}, "Scanning... (video continues)")
}

// EnqueueRetry queues a reconcile pass.
func (p *Pipeline) EnqueueRetry() error {
	return p.enqueue(Task{Kind: TaskRetry}, "Refinement scan... (video continues)")
}

// EnqueueSearch queues a price lookup over all zones.
func (p *Pipeline) EnqueueSearch() error {
	return p.enqueue(Task{Kind: TaskSearch}, "Searching prices... (video continues)")
}

func (p *Pipeline) enqueue(t Task, status string) error {
	select {
	case <-p.stop:
		return errors.New("pipeline stopped")
	default:
	}
	select {
	case p.tasks <- t:
		p.setStatus(status)
		return nil
	default:
		return errors.New("task queue full")
	}
}

func (p *Pipeline) taskWorker(id int) {
	p.logger.Info("Task worker %d started", id)
	for {
		select {
		case <-p.stop:
			p.logger.Info("Task worker %d stopped", id)
			return
		case task := <-p.tasks:
			var err error
			switch task.Kind {
			case TaskDetect:
				err = p.runDetect()
			case TaskRetry:
				err = p.runRetry()
			case TaskSearch:
				err = p.runSearch()
			}
			// Failures leave the previous zone list intact; every commit
			// below is a single atomic swap after all preparation succeeded.
			if err != nil {
				p.logger.Error("Task failed: %v", err)
				p.setStatus("Error: " + err.Error())
			}
		}
	}
}

// runDetect wipes everything and starts fresh: new zones, reset dwell
// history, discarded evidence buffers.
func (p *Pipeline) runDetect() error {
	frame, ok := p.frameClone()
	if !ok {
		return errors.New("no frame available yet")
	}
	defer frame.Close()

	rows, err := p.detector.Infer(frame)
	if err != nil {
		return errors.Wrap(err, "detection failed")
	}

	zones := zone.BuildZones(rows, frame.Cols(), frame.Rows(), p.labels, p.cfg.ConfThreshold)
	sampler := video.Sampler{Frame: frame}
	for i := range zones {
		if c, ok := sampler.MeanColor(zones[i].Box); ok {
			col := c
			zones[i].AvgColor = &col
		}
	}

	zones, err = storage.ExtractCrops(frame, zones, p.cfg.ProductsDir)
	if err != nil {
		p.logger.Warning("Crop extraction incomplete: %v", err)
	}

	p.store.ReplaceAll(zones)
	p.tracker.Reset(len(zones))
	p.recorder.Reset()

	committed := p.store.Snapshot()
	p.indexCrops(committed)
	if err := storage.SaveZones(committed, p.cfg.ZonesFile); err != nil {
		p.logger.Warning("Could not save zone snapshot: %v", err)
	}

	p.setStatus(fmt.Sprintf("Detected %d products.", len(committed)))
	p.logger.Info("Full detection: %d zones", len(committed))
	return nil
}

// runRetry adds missed items and removes drifted ones, preserving
// index-aligned dwell history for retained positions.
func (p *Pipeline) runRetry() error {
	frame, ok := p.frameClone()
	if !ok {
		return errors.New("no frame available yet")
	}
	defer frame.Close()

	rows, err := p.detector.Infer(frame)
	if err != nil {
		return errors.Wrap(err, "detection failed")
	}

	candidates := zone.BuildZones(rows, frame.Cols(), frame.Rows(), p.labels, p.cfg.RetryThreshold)
	sampler := video.Sampler{Frame: frame}

	res := p.store.ReconcileWith(candidates, sampler)
	p.tracker.Resize(p.store.Len())

	merged := p.store.Snapshot()
	updated, err := storage.ExtractCrops(frame, merged, p.cfg.ProductsDir)
	if err != nil {
		p.logger.Warning("Crop extraction incomplete: %v", err)
	}
	for i := range updated {
		if updated[i].CropPath != "" && updated[i].CropPath != merged[i].CropPath {
			p.store.SetCropPath(i, updated[i].CropPath)
			p.indexCrop(i, updated[i])
		}
	}

	committed := p.store.Snapshot()
	if err := storage.SaveZones(committed, p.cfg.ZonesFile); err != nil {
		p.logger.Warning("Could not save zone snapshot: %v", err)
	}

	msg := ""
	if res.Added > 0 {
		msg += fmt.Sprintf("Added %d new. ", res.Added)
	}
	if res.Removed > 0 {
		msg += fmt.Sprintf("Removed %d moved. ", res.Removed)
	}
	if msg == "" {
		msg = "No changes found."
	}
	p.setStatus(msg)
	p.logger.Info("Reconcile: added %d, removed %d, total %d", res.Added, res.Removed, len(committed))
	return nil
}

// runSearch looks up price/title per unique product label and merges results
// into every zone sharing that label.
func (p *Pipeline) runSearch() error {
	if !p.searcher.Enabled() {
		p.setStatus("Search not configured.")
		return nil
	}
	zones := p.store.Snapshot()
	if len(zones) == 0 {
		p.setStatus("No products detected yet.")
		return nil
	}

	byLabel := make(map[string][]zone.SearchResult)
	for _, z := range zones {
		if _, done := byLabel[z.Label]; done {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.SearchTimeout)
		result, err := p.searcher.Lookup(ctx, z.CropPath, z.Label)
		cancel()
		if err != nil {
			p.logger.Warning("Price lookup for %q failed: %v", z.Label, err)
			continue
		}
		if result != nil {
			byLabel[z.Label] = []zone.SearchResult{*result}
		}
	}

	p.store.ApplySearchResults(byLabel)
	if err := storage.SaveZones(p.store.Snapshot(), p.cfg.ZonesFile); err != nil {
		p.logger.Warning("Could not save zone snapshot: %v", err)
	}

	anyPrice := false
	for _, results := range byLabel {
		for _, r := range results {
			if r.Price != "" {
				anyPrice = true
			}
		}
	}
	if anyPrice {
		p.setStatus("Prices found.")
	} else if len(byLabel) > 0 {
		p.setStatus("Done. (No prices in results.)")
	} else {
		p.setStatus("Done.")
	}
	return nil
}

// indexCrops records saved crop files in the evidence index.
func (p *Pipeline) indexCrops(zones []zone.Zone) {
	for i, z := range zones {
		p.indexCrop(i, z)
	}
}

func (p *Pipeline) indexCrop(idx int, z zone.Zone) {
	if p.repo == nil || z.CropPath == "" {
		return
	}
	_, err := p.repo.InsertCrop(&repository.Crop{
		ZoneIndex: idx,
		ZoneUID:   z.UID.String(),
		Label:     z.Label,
		Path:      z.CropPath,
		CreatedAt: time.Now(),
	})
	if err != nil {
		p.logger.Warning("Failed to index crop %s: %v", z.CropPath, err)
	}
}

// --- status -----------------------------------------------------------------

func (p *Pipeline) setStatus(s string) {
	p.statusMu.Lock()
	p.status = s
	p.statusMu.Unlock()
}

// Status returns the last operation status message.
func (p *Pipeline) Status() string {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	return p.status
}

// DetectorReady reports whether the detection network loaded.
func (p *Pipeline) DetectorReady() bool {
	return p.detector.Ready()
}

// CameraReady reports whether the video source opened.
func (p *Pipeline) CameraReady() bool {
	return p.capture != nil
}

// Hub exposes the websocket hub so handlers can register viewers.
func (p *Pipeline) Hub() *websocket.HubService {
	return p.hub
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
