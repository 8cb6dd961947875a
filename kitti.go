package bboxlabel

// KITTI specific functionality.

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// KITTIAnnotation is a single annotation within a KITTI file.
type KITTIAnnotation struct {
	Coords [4]float64 // x1, y1, x2, y2
	Label  string
	Score  float64 // Optional, linear confidence value. No fixed range.
}

// ImportKitti reads KITTI label files from labelDir, matches them by file name to the images in
// imageDir and adds their boxes to p. Label files without an image, unreadable images and
// malformed lines are skipped with a warning.
func (im *Importer) ImportKitti(p *Project, labelDir, imageDir string) error {
	imagesBefore, boxesBefore := len(p.Annotations), countBoxes(p)
	err := parseLabelsWithOneToOneImages(p, labelDir, ".txt", imageDir, im.parseKittiFile, im.logger)
	if err != nil {
		return err
	}
	im.importSummary(p, "KITTI", imagesBefore, boxesBefore)
	return nil
}

// parseKittiFile adds the annotations of the KITTI file at labelPath for the image at imagePath.
func (im *Importer) parseKittiFile(p *Project, labelPath, imagePath string) error {
	// Parse the file.
	lines, err := readLines(labelPath)
	if err != nil {
		return err
	}

	a, err := im.annotationFor(p, imagePath)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		k, err := parseKittiAnnotation(line)
		if err == nil {
			err = im.addBox(p, a, k.Label, k.Coords[0], k.Coords[1], k.Coords[2], k.Coords[3])
		}
		if err != nil {
			im.logger.Printf("Skipping a line of %q: %v", labelPath, err)
		}
	}

	return nil
}

// parseKittiAnnotation parses the line of values for a single annotation.
func parseKittiAnnotation(line string) (KITTIAnnotation, error) {
	a := KITTIAnnotation{}

	tokens := strings.Fields(line)
	if len(tokens) < 8 {
		return a, fmt.Errorf("insufficient tokens in %q", line)
	}

	a.Label = tokens[0]
	var err error
	for i := 4; i < 8 && err == nil; i++ {
		a.Coords[i-4], err = strconv.ParseFloat(tokens[i], 64)
	}
	if err != nil {
		return a, fmt.Errorf("unexpected values in %q: %v", line, err)
	}

	// Parse the optional confidence score.
	if len(tokens) >= 16 {
		a.Score, err = strconv.ParseFloat(tokens[15], 64)
	}
	if err != nil {
		return a, fmt.Errorf("unexpected score format in %q: %v", line, err)
	}

	return a, nil
}

// kittiLabel returns className in a form that survives the whitespace separated KITTI format.
func kittiLabel(className string) string {
	return strings.Join(strings.Fields(className), "_")
}

// ExportKitti writes one KITTI label file per image of p to dirPath, named after the image with a
// .txt extension. Class names are written with inner whitespace replaced by underscores.
func (e *Exporter) ExportKitti(p *Project, dirPath string) error {
	if err := e.checkExportable(p); err != nil {
		return err
	}
	if err := ensureDir(dirPath); err != nil {
		return err
	}

	names := e.labelFileNames(p, ".txt")
	for i, a := range p.Annotations {
		filePath := filepath.Join(dirPath, names[i])
		err := writeAtomic(filePath, 0644, func(w io.Writer) error {
			// Write annotations to file.
			for _, b := range a.Boxes {
				r := b.Rect()
				_, err := fmt.Fprintf(w,
					"%s 0.0 0 0.0 %.2f %.2f %.2f %.2f 0.0 0.0 0.0 0.0 0.0 0.0 0.0 %f\n",
					kittiLabel(p.Classes[b.ClassID]), float64(r.X), float64(r.Y),
					float64(r.Right()), float64(r.Bottom()), 0.0)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return exportErr(filePath, err)
		}
	}

	e.logger.Printf("Wrote KITTI labels for %d images to %s", len(p.Annotations), dirPath)
	return nil
}
