package storage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/suyash-modi/Product-Detection/internal/zone"
)

// ExtractCrops saves the frame region of every zone as a JPEG and records
// the path on the zone. Zones whose region cannot be cropped keep an empty
// crop path; extraction never fails the whole batch for one bad box.
func ExtractCrops(frame gocv.Mat, zones []zone.Zone, outputDir string) ([]zone.Zone, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return zones, errors.Wrap(err, "failed to create crops directory")
	}

	frameW := frame.Cols()
	frameH := frame.Rows()

	for i := range zones {
		box := zones[i].Box.Clip(frameW, frameH)
		if box.Empty() {
			zones[i].CropPath = ""
			continue
		}

		crop := frame.Region(image.Rect(box.X, box.Y, box.X+box.W, box.Y+box.H))
		filename := fmt.Sprintf("product_%s_%d_%d_%d.jpg", productSlug(zones[i].Label), i, box.Y, box.X)
		path := filepath.Join(outputDir, filename)
		ok := gocv.IMWrite(path, crop)
		crop.Close()

		if !ok {
			zones[i].CropPath = ""
			continue
		}
		zones[i].CropPath = path
	}
	return zones, nil
}

// productSlug lowercases a label and keeps only filesystem-safe characters.
func productSlug(label string) string {
	slug := strings.ToLower(strings.ReplaceAll(label, " ", "_"))
	var b strings.Builder
	for _, c := range slug {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return "item"
	}
	return b.String()
}
