// Package storage persists zone snapshots and product crops.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/suyash-modi/Product-Detection/internal/zone"
)

// SaveZones writes the zone list as a pretty-printed JSON array. Reloading
// the file reproduces identical bbox/label/confidence values.
func SaveZones(zones []zone.Zone, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create zones directory")
	}

	data, err := json.MarshalIndent(zones, "", "    ")
	if err != nil {
		return errors.Wrap(err, "failed to encode zones")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write zones file")
	}
	return nil
}

// LoadZones reads a zone snapshot written by SaveZones.
func LoadZones(path string) ([]zone.Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read zones file")
	}

	var zones []zone.Zone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, errors.Wrap(err, "failed to parse zones file")
	}
	return zones, nil
}
