package video

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ClipExt is the container extension for evidence clips.
const ClipExt = ".avi"

// WriteClip encodes buffered evidence frames to an MJPG clip at the capture
// frame rate. Frames are not closed; the caller owns them.
func WriteClip(path string, frames []gocv.Mat, fps float64) error {
	if len(frames) == 0 {
		return errors.New("no frames to write")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create clip directory")
	}

	first := frames[0]
	writer, err := gocv.VideoWriterFile(path, "MJPG", fps, first.Cols(), first.Rows(), true)
	if err != nil {
		return errors.Wrap(err, "failed to open clip writer")
	}
	defer writer.Close()

	for i := range frames {
		if frames[i].Empty() {
			continue
		}
		if err := writer.Write(frames[i]); err != nil {
			return errors.Wrapf(err, "failed to write frame %d", i)
		}
	}
	return nil
}
