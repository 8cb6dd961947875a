package bboxlabel

// Region of interest previews.

import (
	"image"

	"github.com/disintegration/imaging"
)

// ROIPreview is the thumbnail of a single box.
type ROIPreview struct {
	BoxIndex  int // Index in the box list the preview was made from.
	ClassName string
	IsDefect  bool
	Image     *image.NRGBA // size x size, stretched from the box content.
}

// CropBoxes returns a size x size thumbnail of the content of each box in img. Boxes are clipped
// to the image first and boxes without any pixels in the image are skipped. Box coordinates are
// relative to the top-left corner of img.
func CropBoxes(img image.Image, boxes []BoundingBox, size int) []ROIPreview {
	if size <= 0 || len(boxes) == 0 {
		return nil
	}

	bounds := img.Bounds()
	previews := make([]ROIPreview, 0, len(boxes))
	for i, b := range boxes {
		// Clip the box to the image bounds.
		r := ClipRect(b.Rect(), bounds.Dx(), bounds.Dy())
		if r.Empty() {
			continue
		}

		crop := imaging.Crop(img, image.Rect(r.X, r.Y, r.Right(), r.Bottom()).Add(bounds.Min))
		previews = append(previews, ROIPreview{
			BoxIndex:  i,
			ClassName: b.ClassName,
			IsDefect:  b.IsDefect,
			Image:     imaging.Resize(crop, size, size, imaging.CatmullRom),
		})
	}

	return previews
}

// Previews returns the ROI thumbnails of the current image's boxes, using the configured
// thumbnail size.
func (e *Exporter) Previews(img image.Image, a *ImageAnnotation) []ROIPreview {
	if a == nil {
		return nil
	}
	return CropBoxes(img, a.Boxes, e.cfg.ThumbnailSize)
}
