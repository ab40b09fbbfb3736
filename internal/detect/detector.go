// Package detect wraps the external inference engine behind a
// mutual-exclusion guard. The net handle must never run two forward passes
// concurrently: the analytics tick and user-triggered scans both go through
// the same lock, and the tick uses a bounded acquire so a slow scan stalls
// only itself.
package detect

import (
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/suyash-modi/Product-Detection/internal/logger"
	"github.com/suyash-modi/Product-Detection/internal/zone"
)

// Detector runs the object-detection network on frames and decodes its raw
// per-anchor output into rows for the zone builder and person locator.
type Detector struct {
	mu     sync.Mutex
	net    gocv.Net
	ready  bool
	logger *logger.Logger
}

// NewDetector loads the network. Load failure is reported once and leaves
// the detector disabled rather than crashing: dependent features stay off.
func NewDetector(modelPath, configPath string, log *logger.Logger) *Detector {
	d := &Detector{logger: log}

	if err := d.initializeNet(modelPath, configPath); err != nil {
		log.Warning("Could not initialize detection network: %v", err)
		return d
	}

	log.Info("Detection network initialized successfully")
	return d
}

func (d *Detector) initializeNet(modelPath, configPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return errors.Errorf("model file not found: %s", modelPath)
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return errors.New("failed to load network")
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		return errors.Wrap(err, "failed to set preferable backend")
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		return errors.Wrap(err, "failed to set preferable target")
	}

	d.net = net
	d.ready = true
	return nil
}

// Ready reports whether the network loaded.
func (d *Detector) Ready() bool {
	return d.ready
}

// Infer runs a forward pass, blocking until the net is free. Used by
// user-triggered scans where waiting is acceptable.
func (d *Detector) Infer(frame gocv.Mat) ([]zone.Row, error) {
	if !d.ready {
		return nil, errors.New("detection network not initialized")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.forward(frame)
}

// TryInfer runs a forward pass only if the net is immediately available.
// The analytics tick uses this to skip rather than queue behind a
// user-triggered scan.
func (d *Detector) TryInfer(frame gocv.Mat) ([]zone.Row, bool) {
	if !d.ready {
		return nil, false
	}
	if !d.mu.TryLock() {
		return nil, false
	}
	defer d.mu.Unlock()

	rows, err := d.forward(frame)
	if err != nil {
		d.logger.Warning("Inference failed, skipping tick: %v", err)
		return nil, false
	}
	return rows, true
}

// forward resizes the frame to the 1280x1280 input grid and decodes the
// output tensor [1 x (4+numClasses) x anchors] into per-anchor rows.
// Caller must hold d.mu.
func (d *Detector) forward(frame gocv.Mat) ([]zone.Row, error) {
	if frame.Empty() {
		return nil, errors.New("frame is empty")
	}

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(zone.GridSize, zone.GridSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	dims := output.Size()
	if len(dims) != 3 || dims[1] < 5 {
		return nil, errors.Errorf("unexpected output shape %v", dims)
	}
	channels := dims[1]
	anchors := dims[2]

	flat := output.Reshape(1, channels)
	defer flat.Close()

	rows := make([]zone.Row, anchors)
	for a := 0; a < anchors; a++ {
		scores := make([]float64, channels-4)
		for c := 4; c < channels; c++ {
			scores[c-4] = float64(flat.GetFloatAt(c, a))
		}
		rows[a] = zone.Row{
			CX:     float64(flat.GetFloatAt(0, a)),
			CY:     float64(flat.GetFloatAt(1, a)),
			W:      float64(flat.GetFloatAt(2, a)),
			H:      float64(flat.GetFloatAt(3, a)),
			Scores: scores,
		}
	}
	return rows, nil
}

// Close releases the network.
func (d *Detector) Close() {
	if d.ready {
		d.net.Close()
		d.ready = false
	}
}
