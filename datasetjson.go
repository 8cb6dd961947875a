package bboxlabel

// The flat dataset JSON format.

import (
	"encoding/json"
	"fmt"
	"time"
)

type datasetBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type datasetNormBox struct {
	X      float64 `json:"x"` // Centre.
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type datasetAnnotation struct {
	ClassName  string         `json:"class_name"`
	ClassID    int            `json:"class_id"`
	BBox       datasetBox     `json:"bbox"`
	Normalized datasetNormBox `json:"normalized"`
}

type datasetImage struct {
	FilePath    string              `json:"file_path"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Annotations []datasetAnnotation `json:"annotations"`
}

type dataset struct {
	ProjectName  string         `json:"project_name"`
	Classes      []string       `json:"classes"`
	CreatedAt    time.Time      `json:"created_at"`
	LastModified time.Time      `json:"last_modified"`
	Images       []datasetImage `json:"images"`
}

// toDataset converts the project to the flat dataset structure.
func toDataset(p *Project) dataset {
	d := dataset{
		ProjectName:  p.Name,
		Classes:      append([]string{}, p.Classes...),
		CreatedAt:    p.CreatedAt,
		LastModified: p.LastModified,
		Images:       make([]datasetImage, 0, len(p.Annotations)),
	}
	for _, a := range p.Annotations {
		img := datasetImage{
			FilePath:    a.ImagePath,
			Width:       a.ImageWidth,
			Height:      a.ImageHeight,
			Annotations: make([]datasetAnnotation, len(a.Boxes)),
		}
		for i, b := range a.Boxes {
			img.Annotations[i] = datasetAnnotation{
				ClassName: p.Classes[b.ClassID],
				ClassID:   b.ClassID,
				BBox:      datasetBox{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height},
				Normalized: datasetNormBox{
					X:      b.NormalizedX,
					Y:      b.NormalizedY,
					Width:  b.NormalizedWidth,
					Height: b.NormalizedHeight,
				},
			}
		}
		d.Images = append(d.Images, img)
	}
	return d
}

// ExportDatasetJSON writes the project as a flat JSON dataset with one entry per image to
// outputFile. Unlike the project format it carries no editor state such as defect flags.
func (e *Exporter) ExportDatasetJSON(p *Project, outputFile string) error {
	if err := e.checkExportable(p); err != nil {
		return err
	}

	enc, err := json.MarshalIndent(toDataset(p), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := writeFileAtomic(outputFile, enc, 0644); err != nil {
		return exportErr(outputFile, err)
	}

	e.logger.Printf("Wrote the dataset for %d images to %s", len(p.Annotations), outputFile)
	return nil
}
