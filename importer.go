package bboxlabel

// Common import plumbing.

import (
	"fmt"
	"strings"
	"time"
)

// Importer reads annotations in foreign label formats into a project. Classes are added to the
// project in the order they are first seen; existing classes keep their ids.
type Importer struct {
	logger Logger
	now    func() time.Time
}

// NewImporter creates an importer. A nil logger discards all messages.
func NewImporter(logger Logger) *Importer {
	return &Importer{logger: loggerOrDiscard(logger), now: time.Now}
}

// annotationFor returns the annotation for imagePath in p. An image that is new to the project
// gets its size from the image file header.
func (im *Importer) annotationFor(p *Project, imagePath string) (*ImageAnnotation, error) {
	if a := p.Annotation(imagePath); a != nil {
		return a, nil
	}

	cfg, _, err := decodeImageConfig(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the image metadata of %q: %v", imagePath, err)
	}
	return p.GetOrCreateAnnotation(imagePath, cfg.Width, cfg.Height, im.now()), nil
}

// addBox adds a box of class className with the corners (x1, y1) and (x2, y2), in image pixels,
// to a. The corners are rounded and the rectangle is clipped to the image.
func (im *Importer) addBox(p *Project, a *ImageAnnotation, className string,
		x1, y1, x2, y2 float64) error {

	className = strings.TrimSpace(className)
	if className == "" {
		return fmt.Errorf("missing class name")
	}

	r := NormalizeRect(Point{X: x1, Y: y1}, Point{X: x2, Y: y2})
	r = ClipRect(r, a.ImageWidth, a.ImageHeight)
	if r.Empty() {
		return fmt.Errorf("box (%g,%g)(%g,%g) of class %q is outside the %dx%d image",
			x1, y1, x2, y2, className, a.ImageWidth, a.ImageHeight)
	}

	id := p.ClassIndex(className)
	if id < 0 {
		id, _ = p.AddClass(className)
	}
	b, err := a.NewBox(className, id, r)
	if err != nil {
		return err
	}
	a.Boxes = append(a.Boxes, b)
	return nil
}

// importSummary logs the number of images and boxes the project gained during an import.
func (im *Importer) importSummary(p *Project, format string, imagesBefore, boxesBefore int) {
	im.logger.Printf("Imported %d boxes for %d new images from %s labels",
		countBoxes(p)-boxesBefore, len(p.Annotations)-imagesBefore, format)
}

// countBoxes returns the number of boxes in p.
func countBoxes(p *Project) int {
	n := 0
	for _, a := range p.Annotations {
		n += len(a.Boxes)
	}
	return n
}
