package bboxlabel

// YOLO specific functionality.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ExportYolo writes the project as a YOLO dataset to outputDir:
//
//	classes.txt          one class name per line, in class id order
//	labels/<image>.txt   one "classId cx cy w h" line per box, in box order
//	images/<image>.<ext> copies of the images, if enabled in the export settings
//
// Label values are normalized and written with the configured number of decimal places.
func (e *Exporter) ExportYolo(p *Project, outputDir string) error {
	if err := e.checkExportable(p); err != nil {
		return err
	}
	labelDir := filepath.Join(outputDir, "labels")
	if err := ensureDir(labelDir); err != nil {
		return err
	}

	// Write the class list.
	classesPath := filepath.Join(outputDir, "classes.txt")
	if err := writeFileAtomic(classesPath, []byte(yoloClassList(p.Classes)), 0644); err != nil {
		return exportErr(classesPath, err)
	}

	// Write the labels.
	names := e.labelFileNames(p, ".txt")
	for i, a := range p.Annotations {
		labelPath := filepath.Join(labelDir, names[i])
		err := writeAtomic(labelPath, 0644, func(w io.Writer) error {
			return e.writeYoloLabels(w, a)
		})
		if err != nil {
			return exportErr(labelPath, err)
		}
	}

	if e.cfg.CopyImages {
		if err := e.copyYoloImages(p, filepath.Join(outputDir, "images"), names); err != nil {
			return err
		}
	}

	e.logger.Printf("Wrote YOLO labels for %d images and %d classes to %s",
		len(p.Annotations), len(p.Classes), outputDir)
	return nil
}

// yoloClassList returns the content of classes.txt.
func yoloClassList(classes []string) string {
	var sb strings.Builder
	for _, c := range classes {
		sb.WriteString(c)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// writeYoloLabels writes one label line per box of a to w.
func (e *Exporter) writeYoloLabels(w io.Writer, a *ImageAnnotation) error {
	prec := e.cfg.YoloPrecision
	for _, b := range a.Boxes {
		_, err := fmt.Fprintf(w, "%d %.*f %.*f %.*f %.*f\n", b.ClassID,
			prec, b.NormalizedX, prec, b.NormalizedY, prec, b.NormalizedWidth, prec, b.NormalizedHeight)
		if err != nil {
			return err
		}
	}
	return nil
}

// copyYoloImages copies the images of p to imageDir, naming each after its label file. Images are
// down-scaled to the configured maximum side length if necessary. As the labels are normalized
// they stay valid for the resized images.
func (e *Exporter) copyYoloImages(p *Project, imageDir string, labelNames []string) error {
	if err := ensureDir(imageDir); err != nil {
		return err
	}

	// Limit the number of goroutines in flight, as they load potentially large images into
	// memory.
	numTasks := minInt(2*runtime.NumCPU(), len(p.Annotations))
	workQueue := make(chan int, 2*numTasks)
	errors := make(chan error, 1)
	var wg sync.WaitGroup

	trySendError := func(err error) {
		select {
		case errors <- err:
		default:
		}
	}

	// Process images concurrently from a work queue.
	wg.Add(numTasks)
	for i := 0; i < numTasks; i++ {
		go func() {
			defer wg.Done()
			for idx := range workQueue {
				a := p.Annotations[idx]
				base := strings.TrimSuffix(labelNames[idx], ".txt")
				if err := e.copyImage(a.ImagePath, imageDir, base); err != nil {
					trySendError(err)
				}
			}
		}()
	}

	// Feed the work queue.
	for i := range p.Annotations {
		workQueue <- i
	}
	close(workQueue)
	wg.Wait()

	close(errors)
	if len(errors) > 0 {
		return <-errors
	}
	return nil
}

// copyImage copies the image at srcPath into dir as base plus the source extension. If the image
// has to be resized it is re-encoded, as PNG for PNG sources and as JPEG otherwise.
func (e *Exporter) copyImage(srcPath, dir, base string) error {
	ext := strings.ToLower(filepath.Ext(srcPath))
	if e.cfg.ImageMaxSide > 0 {
		cfg, _, err := decodeImageConfig(srcPath)
		if err != nil {
			return fmt.Errorf("%w: cannot read image %q: %v", ErrExportFailed, srcPath, err)
		}
		if cfg.Width > e.cfg.ImageMaxSide || cfg.Height > e.cfg.ImageMaxSide {
			img, err := loadImage(srcPath)
			if err != nil {
				return fmt.Errorf("%w: cannot read image %q: %v", ErrExportFailed, srcPath, err)
			}
			img, _, _ = fitLongerSide(img, e.cfg.ImageMaxSide)
			if ext != ".png" {
				ext = ".jpg"
			}
			outPath := filepath.Join(dir, base+ext)
			if err := saveImage(outPath, img, e.cfg.JPEGQuality); err != nil {
				return exportErr(outPath, err)
			}
			return nil
		}
	}

	// Copy the file as is.
	outPath := filepath.Join(dir, base+ext)
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("%w: cannot read image %q: %v", ErrExportFailed, srcPath, err)
	}
	defer src.Close()
	err = writeAtomic(outPath, 0644, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return exportErr(outPath, err)
	}
	return nil
}
