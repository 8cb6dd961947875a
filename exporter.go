package bboxlabel

// Common export plumbing.

import (
	"fmt"
	"os"
)

// Exporter writes projects in the supported output formats. It holds no state besides its
// settings, so one Exporter may be shared by several goroutines as long as every call gets its
// own project snapshot.
type Exporter struct {
	cfg    ExportConfig
	logger Logger
}

// NewExporter creates an exporter. A nil logger discards all messages.
func NewExporter(cfg ExportConfig, logger Logger) *Exporter {
	def := DefaultConfig().Export
	if cfg.YoloPrecision <= 0 {
		cfg.YoloPrecision = def.YoloPrecision
	}
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = def.JPEGQuality
	}
	if cfg.ThumbnailSize <= 0 {
		cfg.ThumbnailSize = def.ThumbnailSize
	}
	return &Exporter{cfg: cfg, logger: loggerOrDiscard(logger)}
}

// Background snapshots the project on the calling goroutine and runs export on the snapshot in a
// new goroutine. The returned channel receives the single result and is then closed.
//
// The caller may keep editing the live project while the export runs.
func (e *Exporter) Background(p *Project, export func(snapshot *Project) error) <-chan error {
	snapshot := p.Clone()
	result := make(chan error, 1)
	go func() {
		defer close(result)
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("%w: %v", ErrExportFailed, r)
			}
		}()
		result <- export(snapshot)
	}()
	return result
}

// checkExportable verifies the class ids of p and warns about boxes whose class name no longer
// matches the class list entry of their id.
func (e *Exporter) checkExportable(p *Project) error {
	if p == nil {
		return fmt.Errorf("%w: nil project", ErrExportFailed)
	}
	if err := p.CheckClassIDs(); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if n := p.staleClassNames(); n > 0 {
		e.logger.Printf("Warning: %d boxes carry a class name that differs from the class list"+
			" entry of their class id; exporting by id", n)
	}
	return nil
}

// exportErr wraps an I/O error of an export to target.
func exportErr(target string, err error) error {
	return fmt.Errorf("%w: cannot write %q: %w", ErrExportFailed, target, err)
}

// ensureDir creates dirPath and its parents if needed.
func ensureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return exportErr(dirPath, err)
	}
	return nil
}

// labelFileNames returns a label file name, the image base name plus ext, for each annotation of
// p. Images in different directories may share a base name; later ones get a "_<n>" suffix and a
// warning is logged.
func (e *Exporter) labelFileNames(p *Project, ext string) []string {
	names := make([]string, len(p.Annotations))
	seen := make(map[string]int, len(p.Annotations))
	for i, a := range p.Annotations {
		base := baseNameNoExt(a.ImagePath)
		seen[base]++
		if n := seen[base]; n > 1 {
			renamed := fmt.Sprintf("%s_%d", base, n)
			e.logger.Printf("Warning: image base name %q is not unique, writing labels of %q as %q",
				base, a.ImagePath, renamed+ext)
			base = renamed
		}
		names[i] = base + ext
	}
	return names
}
