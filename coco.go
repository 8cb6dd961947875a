package bboxlabel

// COCO specific functionality.

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// COCOInfo describes the dataset.
type COCOInfo struct {
	Description string `json:"description"`
	DateCreated string `json:"date_created"` // yyyy-mm-dd
}

// COCOCategory is an object class. Ids are the project's class ids.
type COCOCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// COCOImage describes a single image. Ids start at 1.
type COCOImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// COCOAnnotation is a single box. Ids start at 1.
type COCOAnnotation struct {
	ID         int    `json:"id"`
	ImageID    int    `json:"image_id"`
	CategoryID int    `json:"category_id"`
	BBox       [4]int `json:"bbox"` // x, y, width, height in pixels.
	Area       int    `json:"area"`
	IsCrowd    int    `json:"iscrowd"`
}

// COCODataset is the COCO detection document.
type COCODataset struct {
	Info        COCOInfo         `json:"info"`
	Categories  []COCOCategory   `json:"categories"`
	Images      []COCOImage      `json:"images"`
	Annotations []COCOAnnotation `json:"annotations"`
}

// toCOCO converts the project to a COCO dataset created at now.
func toCOCO(p *Project, now time.Time) COCODataset {
	d := COCODataset{
		Info: COCOInfo{
			Description: fmt.Sprintf("%s dataset", p.Name),
			DateCreated: now.Format("2006-01-02"),
		},
		Categories:  make([]COCOCategory, len(p.Classes)),
		Images:      make([]COCOImage, 0, len(p.Annotations)),
		Annotations: []COCOAnnotation{},
	}
	for i, c := range p.Classes {
		d.Categories[i] = COCOCategory{ID: i, Name: c}
	}

	for _, a := range p.Annotations {
		imageID := len(d.Images) + 1
		d.Images = append(d.Images, COCOImage{
			ID:       imageID,
			FileName: filepath.Base(a.ImagePath),
			Width:    a.ImageWidth,
			Height:   a.ImageHeight,
		})
		for _, b := range a.Boxes {
			d.Annotations = append(d.Annotations, COCOAnnotation{
				ID:         len(d.Annotations) + 1,
				ImageID:    imageID,
				CategoryID: b.ClassID,
				BBox:       [4]int{b.X, b.Y, b.Width, b.Height},
				Area:       b.Width * b.Height,
				IsCrowd:    0,
			})
		}
	}

	return d
}

// ExportCoco writes the project as a single COCO JSON document to outputFile.
func (e *Exporter) ExportCoco(p *Project, outputFile string) error {
	if err := e.checkExportable(p); err != nil {
		return err
	}

	enc, err := json.MarshalIndent(toCOCO(p, time.Now()), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := writeFileAtomic(outputFile, enc, 0644); err != nil {
		return exportErr(outputFile, err)
	}

	e.logger.Printf("Wrote COCO annotations for %d images to %s", len(p.Annotations), outputFile)
	return nil
}
