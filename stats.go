package bboxlabel

// Stats summarizes the annotation progress of a project.
type Stats struct {
	TotalImages     int // Images in the image list.
	CheckedImages   int // Images that have an annotation, i.e. were visited.
	AnnotatedImages int // Images with at least one box.
	Boxes           int
	DefectBoxes     int
	ClassBoxes      []int // Boxes per class id. Boxes with an invalid id are not counted here.
}

// Stats computes the statistics of p for an image list of totalImages images. A negative
// totalImages counts the images of the project.
func (p *Project) Stats(totalImages int) Stats {
	if totalImages < 0 {
		totalImages = len(p.Annotations)
	}
	s := Stats{
		TotalImages:   totalImages,
		CheckedImages: len(p.Annotations),
		ClassBoxes:    make([]int, len(p.Classes)),
	}
	for _, a := range p.Annotations {
		if len(a.Boxes) > 0 {
			s.AnnotatedImages++
		}
		for _, b := range a.Boxes {
			s.Boxes++
			if b.IsDefect {
				s.DefectBoxes++
			}
			if b.ClassID >= 0 && b.ClassID < len(s.ClassBoxes) {
				s.ClassBoxes[b.ClassID]++
			}
		}
	}
	return s
}

// Progress returns the fraction of images with at least one box, in [0, 1].
func (s Stats) Progress() float64 {
	if s.TotalImages <= 0 {
		return 0
	}
	return float64(s.AnnotatedImages) / float64(s.TotalImages)
}
