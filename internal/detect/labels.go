package detect

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// DefaultLabel is used for class ids missing from the label table.
const DefaultLabel = "product"

// LabelTable resolves detector class ids to product names. It implements
// zone.Labeler.
type LabelTable struct {
	names map[int]string
}

// LoadLabels reads a JSON object mapping class-id strings to names, e.g.
// {"0": "person", "39": "bottle"}.
func LoadLabels(path string) (*LabelTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read label file")
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse label file")
	}

	names := make(map[int]string, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid class id %q", k)
		}
		names[id] = v
	}
	return &LabelTable{names: names}, nil
}

// Label returns the name for a class id, or DefaultLabel when unknown.
// Safe on a nil table so a failed label load degrades to generic names.
func (t *LabelTable) Label(classID int) string {
	if t == nil {
		return DefaultLabel
	}
	if name, ok := t.names[classID]; ok {
		return name
	}
	return DefaultLabel
}
