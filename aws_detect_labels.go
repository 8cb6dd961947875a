package bboxlabel

// AWS Rekognition detect-labels specific functionality.

import (
	"encoding/json"
	"io/ioutil"
)

// AWSBoundingBox defines an axis-aligned rectangle with the dimensions given as normalised ratios
// of the image size.
type AWSBoundingBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// AWSInstance is an object instance in an AWS label.
type AWSInstance struct {
	BoundingBox AWSBoundingBox
	Confidence  float64 // Range [0, 100].
}

// AWSLabel is a single annotation within an AWS labels file.
type AWSLabel struct {
	Confidence float64 // Range [0, 100].
	Instances  []AWSInstance
	Name       string
	Parents    []struct {
		Name string
	}
}

// AWSDLAnnotatedFile defines the AWS detect-labels annotation structure for a single file.
type AWSDLAnnotatedFile struct {
	Annotations  []AWSLabel `json:"Labels"`
	ModelVersion string     `json:"LabelModelVersion"`
}

// ImportAWSDetectLabels reads AWS detect-labels responses from labelDir, matches them by file
// name to the images in imageDir and adds one box per label instance to p. Instances with a
// confidence below minConfidence (range [0, 100]) are dropped.
func (im *Importer) ImportAWSDetectLabels(p *Project, labelDir, imageDir string,
		minConfidence float64) error {

	parse := func(p *Project, labelPath, imagePath string) error {
		return im.parseAWSDetectLabelsFile(p, labelPath, imagePath, minConfidence)
	}

	imagesBefore, boxesBefore := len(p.Annotations), countBoxes(p)
	if err := parseLabelsWithOneToOneImages(p, labelDir, ".json", imageDir, parse, im.logger); err != nil {
		return err
	}
	im.importSummary(p, "AWS detect-labels", imagesBefore, boxesBefore)
	return nil
}

// parseAWSDetectLabelsFile parses the label file at labelPath and adds its object instances to
// the annotation of the image at imagePath.
func (im *Importer) parseAWSDetectLabelsFile(p *Project, labelPath, imagePath string,
		minConfidence float64) error {

	// Unmarshal JSON.
	enc, err := ioutil.ReadFile(labelPath)
	if err != nil {
		return err
	}

	var awsFileData AWSDLAnnotatedFile
	err = json.Unmarshal(enc, &awsFileData)
	if err != nil {
		return err
	}

	a, err := im.annotationFor(p, imagePath)
	if err != nil {
		return err
	}

	// Only keep annotations for objects, i.e. labels with instances. These are unrolled.
	w, h := float64(a.ImageWidth), float64(a.ImageHeight)
	for _, l := range awsFileData.Annotations {
		for _, i := range l.Instances {
			if i.Confidence < minConfidence {
				continue
			}
			// Scale normalised coordinates to image coordinates.
			bb := i.BoundingBox
			err := im.addBox(p, a, l.Name, bb.Left*w, bb.Top*h, (bb.Left+bb.Width)*w,
				(bb.Top+bb.Height)*h)
			if err != nil {
				im.logger.Printf("Skipping an instance in %q: %v", labelPath, err)
			}
		}
	}

	return nil
}
