// Package video holds the thin I/O wrappers around camera capture, frame
// color sampling and evidence clip encoding.
package video

import (
	"image"
	"strconv"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/suyash-modi/Product-Detection/internal/zone"
)

// OpenSource opens a video source: a numeric string selects a webcam index,
// anything else is treated as a file path or stream URL.
func OpenSource(source string) (*gocv.VideoCapture, error) {
	var (
		cap *gocv.VideoCapture
		err error
	)
	if idx, convErr := strconv.Atoi(source); convErr == nil {
		cap, err = gocv.OpenVideoCapture(idx)
	} else {
		cap, err = gocv.OpenVideoCapture(source)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open video source %q", source)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, errors.Errorf("video source %q did not open", source)
	}
	return cap, nil
}

// Sampler computes mean colors over regions of one frame. It implements
// zone.ColorSampler for the reconciler's drift pass.
type Sampler struct {
	Frame gocv.Mat
}

// MeanColor returns the mean BGR color over the box region, clamped to the
// frame. Returns false when the region has no pixels.
func (s Sampler) MeanColor(b zone.Box) (zone.BGR, bool) {
	clipped := b.Clip(s.Frame.Cols(), s.Frame.Rows())
	if clipped.Empty() {
		return zone.BGR{}, false
	}

	region := s.Frame.Region(image.Rect(clipped.X, clipped.Y, clipped.X+clipped.W, clipped.Y+clipped.H))
	defer region.Close()

	mean := region.Mean()
	return zone.BGR{mean.Val1, mean.Val2, mean.Val3}, true
}
