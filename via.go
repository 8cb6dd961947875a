package bboxlabel

// VGG Image Annotator (VIA) specific functionality.

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"sort"
)

// VIAShape describes the shape of an annotation.
type VIAShape struct {
	Name   string `json:"name"`
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
}

// VIARegionAnnotation is a single region annotation for a particular image in a VIA file.
type VIARegionAnnotation struct {
	Attributes map[string]string `json:"region_attributes"`
	Shape      VIAShape          `json:"shape_attributes"`
}

// VIAAnnotatedFile defines the VIA annotation structure for a single file.
type VIAAnnotatedFile struct {
	Annotations []VIARegionAnnotation `json:"regions"`
	Attributes  map[string]string     `json:"file_attributes"`
	FilePath    string                `json:"filename"`
	Size        int64                 `json:"size"`
}

// VIAOptionsAttribute defines attributes of type "radio" or "dropdown".
type VIAOptionsAttribute struct {
	Type           string            `json:"type"` // "radio" or "dropdown"
	Description    string            `json:"description"`
	Options        map[string]string `json:"options"`
	DefaultOptions map[string]bool   `json:"default_options"`
}

// VIAAttributes defines the VIA attribute metadata.
type VIAAttributes struct {
	Region map[string]interface{} `json:"region"`
	File   map[string]interface{} `json:"file"`
}

// VIAProject defines the VIA project structure.
type VIAProject struct {
	Attributes    VIAAttributes               `json:"_via_attributes"`
	ImageMetadata map[string]VIAAnnotatedFile `json:"_via_img_metadata"`
	// Must exist for VIA to load the project. Default values will be used.
	Settings struct{} `json:"_via_settings"`
}

const viaLabelAttribute = "Label" // The attribute key used for labels.

// ImportVIA reads the VIA project at path and adds its rectangle regions to p. Relative image
// file names are resolved against the directory of path. Images are added in file name order;
// images that cannot be read and regions that are not rectangles are skipped with a warning.
func (im *Importer) ImportVIA(p *Project, path string) error {
	enc, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}

	var viaData VIAProject
	err = json.Unmarshal(enc, &viaData)
	if err != nil {
		return fmt.Errorf("failed to parse VIA input from %q: %v", path, err)
	}

	keys := make([]string, 0, len(viaData.ImageMetadata))
	for k := range viaData.ImageMetadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	imagesBefore, boxesBefore := len(p.Annotations), countBoxes(p)
	baseDir := filepath.Dir(path)
	for _, k := range keys {
		viaFile := viaData.ImageMetadata[k]
		imagePath := resolveImagePath(baseDir, viaFile.FilePath)
		a, err := im.annotationFor(p, imagePath)
		if err != nil {
			im.logger.Printf("Error while parsing, skipping %q: %v", k, err)
			continue
		}

		for _, r := range viaFile.Annotations {
			if r.Shape.Name != "rect" {
				im.logger.Printf("Skipping a %q region of %q", r.Shape.Name, viaFile.FilePath)
				continue
			}
			s := r.Shape
			err := im.addBox(p, a, r.Attributes[viaLabelAttribute], float64(s.X), float64(s.Y),
				float64(s.X+s.Width), float64(s.Y+s.Height))
			if err != nil {
				im.logger.Printf("Skipping a region of %q: %v", viaFile.FilePath, err)
			}
		}
	}

	im.importSummary(p, "VIA", imagesBefore, boxesBefore)
	return nil
}

// resolveImagePath joins a relative image path to baseDir.
func resolveImagePath(baseDir, imagePath string) string {
	if imagePath == "" || filepath.IsAbs(imagePath) {
		return imagePath
	}
	return filepath.Join(baseDir, imagePath)
}

// toVIA converts the project to the VIA project structure. The class list becomes the options of
// the radio attribute "Label".
func toVIA(p *Project) VIAProject {
	labelAttr := VIAOptionsAttribute{
		Type:           "radio",
		Options:        make(map[string]string, len(p.Classes)),
		DefaultOptions: make(map[string]bool),
	}
	for _, c := range p.Classes {
		labelAttr.Options[c] = ""
	}

	viaData := VIAProject{
		Attributes: VIAAttributes{
			Region: map[string]interface{}{viaLabelAttribute: labelAttr},
			File:   make(map[string]interface{}),
		},
		ImageMetadata: make(map[string]VIAAnnotatedFile, len(p.Annotations)),
	}

	for _, a := range p.Annotations {
		viaFile := VIAAnnotatedFile{
			Annotations: make([]VIARegionAnnotation, 0, len(a.Boxes)),
			Attributes:  make(map[string]string), // Must not be nil as that becomes JSON null.
			FilePath:    a.ImagePath,
		}
		for _, b := range a.Boxes {
			viaFile.Annotations = append(viaFile.Annotations, VIARegionAnnotation{
				Attributes: map[string]string{viaLabelAttribute: p.Classes[b.ClassID]},
				Shape: VIAShape{
					Name:   "rect",
					X:      int32(b.X),
					Y:      int32(b.Y),
					Width:  int32(b.Width),
					Height: int32(b.Height),
				},
			})
		}
		viaData.ImageMetadata[viaFile.FilePath] = viaFile
	}

	return viaData
}

// ExportVIA writes the project as a VIA project file to outFile.
func (e *Exporter) ExportVIA(p *Project, outFile string) error {
	if err := e.checkExportable(p); err != nil {
		return err
	}

	enc, err := json.MarshalIndent(toVIA(p), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	if err := writeFileAtomic(outFile, enc, 0644); err != nil {
		return exportErr(outFile, err)
	}

	e.logger.Printf("Wrote VIA labels for %d images to %s", len(p.Annotations), outFile)
	return nil
}
