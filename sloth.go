package bboxlabel

// Sloth specific functionality.

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
)

// SlothAnnotation is a single annotation within a Sloth file.
type SlothAnnotation struct {
	Class  string  `json:"class,omitempty"`
	Type   string  `json:"type,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// SlothAnnotatedFile defines the Sloth annotation structure for a single file.
type SlothAnnotatedFile struct {
	Annotations []SlothAnnotation `json:"annotations"`
	Class       string            `json:"class,omitempty"`
	FilePath    string            `json:"filename,omitempty"`
}

// ImportSloth reads the Sloth label file at path and adds its rectangles to p. Relative image
// file names are resolved against the directory of path.
func (im *Importer) ImportSloth(p *Project, path string) error {
	enc, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	var slothData []SlothAnnotatedFile
	err = json.Unmarshal(enc, &slothData)
	if err != nil {
		return fmt.Errorf("failed to parse Sloth input from %q: %v", path, err)
	}

	imagesBefore, boxesBefore := len(p.Annotations), countBoxes(p)
	baseDir := filepath.Dir(path)
	for _, slothFile := range slothData {
		a, err := im.annotationFor(p, resolveImagePath(baseDir, slothFile.FilePath))
		if err != nil {
			im.logger.Printf("Error while parsing, skipping %q: %v", slothFile.FilePath, err)
			continue
		}

		for _, s := range slothFile.Annotations {
			if s.Type != "" && s.Type != "rect" {
				im.logger.Printf("Skipping a %q annotation of %q", s.Type, slothFile.FilePath)
				continue
			}
			if err := im.addBox(p, a, s.Class, s.X, s.Y, s.X+s.Width, s.Y+s.Height); err != nil {
				im.logger.Printf("Skipping an annotation of %q: %v", slothFile.FilePath, err)
			}
		}
	}

	im.importSummary(p, "Sloth", imagesBefore, boxesBefore)
	return nil
}

// toSloth converts the project to the Sloth format.
func toSloth(p *Project) []SlothAnnotatedFile {
	slothData := make([]SlothAnnotatedFile, 0, len(p.Annotations))
	for _, a := range p.Annotations {
		slothFile := SlothAnnotatedFile{
			Annotations: make([]SlothAnnotation, len(a.Boxes)),
			Class:       "image",
			FilePath:    a.ImagePath,
		}
		for i, b := range a.Boxes {
			slothFile.Annotations[i] = SlothAnnotation{
				Class:  p.Classes[b.ClassID],
				Type:   "rect",
				X:      float64(b.X),
				Y:      float64(b.Y),
				Width:  float64(b.Width),
				Height: float64(b.Height),
			}
		}
		slothData = append(slothData, slothFile)
	}

	return slothData
}

// ExportSloth writes the project as a Sloth label file to outFile.
func (e *Exporter) ExportSloth(p *Project, outFile string) error {
	if err := e.checkExportable(p); err != nil {
		return err
	}

	enc, err := json.MarshalIndent(toSloth(p), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := writeFileAtomic(outFile, enc, 0644); err != nil {
		return exportErr(outFile, err)
	}

	e.logger.Printf("Wrote Sloth labels for %d images to %s", len(p.Annotations), outFile)
	return nil
}
