package bboxlabel

// The project JSON format, used to save and reload projects.

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ExportProjectJSON serialises the whole project. Both the pixel and the normalized box
// rectangles are written as they are.
func ExportProjectJSON(p *Project) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil project", ErrInvalidProject)
	}

	enc, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(enc, '\n'), nil
}

// ImportProjectJSON parses a project serialised by ExportProjectJSON. Stored values are trusted:
// normalized rectangles are not recomputed from the pixel rectangles.
func ImportProjectJSON(data []byte) (*Project, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidProject)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}

	// Absent lists decode as nil; the in-memory project always has non-nil lists.
	if p.Classes == nil {
		p.Classes = []string{}
	}
	if p.Annotations == nil {
		p.Annotations = []*ImageAnnotation{}
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	for _, a := range p.Annotations {
		if a.Boxes == nil {
			a.Boxes = []BoundingBox{}
		}
	}

	return &p, nil
}
