package bboxlabel

// The annotation data model: a project owns per-image annotations, which own their boxes.

import (
	"fmt"
	"strings"
	"time"
)

// defectMarkers are the class name substrings that mark a class as a defect class.
var defectMarkers = []string{"ng", "defect", "bad", "fail", "error"}

// IsDefectClass reports whether className denotes a defect, i.e. whether it contains any of "ng",
// "defect", "bad", "fail" or "error", ignoring case.
func IsDefectClass(className string) bool {
	lower := strings.ToLower(className)
	for _, m := range defectMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// BoundingBox is a single rectangular region annotation.
//
// The pixel rectangle and the normalized rectangle are kept in sync by NewBoundingBox and SetRect.
// Code that assigns the coordinate fields directly is responsible for that itself.
type BoundingBox struct {
	ClassName string `json:"class_name"`
	ClassID   int    `json:"class_id"` // Index into Project.Classes at creation time.
	IsDefect  bool   `json:"is_defect"`

	// Pixel rectangle in image space.
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	// Normalized centre-form rectangle, relative to the image size.
	NormalizedX      float64 `json:"normalized_x"`
	NormalizedY      float64 `json:"normalized_y"`
	NormalizedWidth  float64 `json:"normalized_width"`
	NormalizedHeight float64 `json:"normalized_height"`
}

// NewBoundingBox creates a box of class className / classID covering r in an imageW x imageH
// image. The defect flag is derived from the class name.
func NewBoundingBox(className string, classID int, r Rect, imageW, imageH int) (BoundingBox, error) {
	b := BoundingBox{
		ClassName: className,
		ClassID:   classID,
		IsDefect:  IsDefectClass(className),
	}
	if err := b.SetRect(r, imageW, imageH); err != nil {
		return BoundingBox{}, err
	}
	return b, nil
}

// Rect returns the pixel rectangle.
func (b BoundingBox) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Norm returns the normalized rectangle.
func (b BoundingBox) Norm() NormRect {
	return NormRect{
		CenterX: b.NormalizedX,
		CenterY: b.NormalizedY,
		Width:   b.NormalizedWidth,
		Height:  b.NormalizedHeight,
	}
}

// SetRect replaces the pixel rectangle and recomputes the normalized rectangle. The box is left
// unchanged on error.
func (b *BoundingBox) SetRect(r Rect, imageW, imageH int) error {
	n, err := ToNormalized(r, imageW, imageH)
	if err != nil {
		return err
	}

	b.X, b.Y, b.Width, b.Height = r.X, r.Y, r.Width, r.Height
	b.NormalizedX = n.CenterX
	b.NormalizedY = n.CenterY
	b.NormalizedWidth = n.Width
	b.NormalizedHeight = n.Height
	return nil
}

// ImageAnnotation holds the boxes of a single image. Box order is creation order, which is also
// the z-order: later boxes are on top.
type ImageAnnotation struct {
	ImagePath   string        `json:"image_path"`
	ImageWidth  int           `json:"image_width"`
	ImageHeight int           `json:"image_height"`
	CreatedAt   time.Time     `json:"created_at"`
	Boxes       []BoundingBox `json:"boxes"`
}

// NewBox creates a box for this image without adding it.
func (a *ImageAnnotation) NewBox(className string, classID int, r Rect) (BoundingBox, error) {
	return NewBoundingBox(className, classID, r, a.ImageWidth, a.ImageHeight)
}

// RemoveBox deletes the box at index i. It reports whether a box was removed.
func (a *ImageAnnotation) RemoveBox(i int) bool {
	if i < 0 || i >= len(a.Boxes) {
		return false
	}
	a.Boxes = append(a.Boxes[:i], a.Boxes[i+1:]...)
	return true
}

// Project is the aggregate of the class list and all image annotations.
type Project struct {
	Name         string             `json:"project_name"`
	Path         string             `json:"project_path"` // Empty if never saved.
	CreatedAt    time.Time          `json:"created_at"`
	LastModified time.Time          `json:"last_modified"`
	Classes      []string           `json:"classes"` // The index is the class id.
	Annotations  []*ImageAnnotation `json:"annotations"`
}

// NewProject creates an empty project.
func NewProject(name string, now time.Time) *Project {
	return &Project{
		Name:         name,
		CreatedAt:    now,
		LastModified: now,
		Classes:      []string{},
		Annotations:  []*ImageAnnotation{},
	}
}

// ClassIndex returns the id of the class called name, or -1.
func (p *Project) ClassIndex(name string) int {
	for i, c := range p.Classes {
		if c == name {
			return i
		}
	}
	return -1
}

// AddClass appends a class and returns its id. Surrounding whitespace is trimmed. Adding a name
// that already exists returns its id and ErrDuplicateClassName, leaving the list unchanged.
func (p *Project) AddClass(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, fmt.Errorf("empty class name")
	}
	if i := p.ClassIndex(name); i >= 0 {
		return i, fmt.Errorf("%w: %q", ErrDuplicateClassName, name)
	}

	p.Classes = append(p.Classes, name)
	return len(p.Classes) - 1, nil
}

// RenameClass renames a class in the class list and in every box that carries it. Class ids and
// defect flags are not changed.
func (p *Project) RenameClass(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	i := p.ClassIndex(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownClass, oldName)
	}
	if newName == "" {
		return fmt.Errorf("empty class name")
	}
	if newName == oldName {
		return nil
	}
	if p.ClassIndex(newName) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateClassName, newName)
	}

	p.Classes[i] = newName
	for _, a := range p.Annotations {
		for j := range a.Boxes {
			if a.Boxes[j].ClassName == oldName {
				a.Boxes[j].ClassName = newName
			}
		}
	}
	return nil
}

// Annotation returns the annotation for imagePath, or nil.
func (p *Project) Annotation(imagePath string) *ImageAnnotation {
	for _, a := range p.Annotations {
		if a.ImagePath == imagePath {
			return a
		}
	}
	return nil
}

// GetOrCreateAnnotation returns the annotation for imagePath, creating and appending an empty one
// with the given image size if there is none. An existing annotation keeps the size it was
// created with.
func (p *Project) GetOrCreateAnnotation(imagePath string, width, height int, now time.Time) *ImageAnnotation {
	if a := p.Annotation(imagePath); a != nil {
		return a
	}

	a := &ImageAnnotation{
		ImagePath:   imagePath,
		ImageWidth:  width,
		ImageHeight: height,
		CreatedAt:   now,
		Boxes:       []BoundingBox{},
	}
	p.Annotations = append(p.Annotations, a)
	return a
}

// CheckClassIDs verifies that every box references a valid class id.
func (p *Project) CheckClassIDs() error {
	for _, a := range p.Annotations {
		for i, b := range a.Boxes {
			if b.ClassID < 0 || b.ClassID >= len(p.Classes) {
				return fmt.Errorf("%w: box #%d of %q has class id %d (%d classes)",
					ErrInvalidClassID, i+1, a.ImagePath, b.ClassID, len(p.Classes))
			}
		}
	}
	return nil
}

// staleClassNames returns the number of boxes whose class name differs from the class list entry
// at their class id. Boxes with an out of range id are not counted.
func (p *Project) staleClassNames() int {
	n := 0
	for _, a := range p.Annotations {
		for _, b := range a.Boxes {
			if b.ClassID >= 0 && b.ClassID < len(p.Classes) && p.Classes[b.ClassID] != b.ClassName {
				n++
			}
		}
	}
	return n
}

// ResolveClassIDs re-assigns every box's class id from its class name. It returns the number of
// boxes whose id changed. Boxes whose class name is not in the class list keep their id; the first
// of them is reported as an ErrUnknownClass error after all others have been resolved.
func (p *Project) ResolveClassIDs() (int, error) {
	changed := 0
	var err error
	for _, a := range p.Annotations {
		for i := range a.Boxes {
			b := &a.Boxes[i]
			id := p.ClassIndex(b.ClassName)
			if id < 0 {
				if err == nil {
					err = fmt.Errorf("%w: %q in %q", ErrUnknownClass, b.ClassName, a.ImagePath)
				}
				continue
			}
			if b.ClassID != id {
				b.ClassID = id
				changed++
			}
		}
	}
	return changed, err
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.Classes = append([]string{}, p.Classes...)
	c.Annotations = make([]*ImageAnnotation, len(p.Annotations))
	for i, a := range p.Annotations {
		ac := *a
		ac.Boxes = append([]BoundingBox{}, a.Boxes...)
		c.Annotations[i] = &ac
	}
	return &c
}

// validate checks the structural invariants of a decoded project.
func (p *Project) validate() error {
	classes := make(map[string]bool, len(p.Classes))
	for _, c := range p.Classes {
		if classes[c] {
			return fmt.Errorf("%w: duplicate class %q", ErrInvalidProject, c)
		}
		classes[c] = true
	}

	paths := make(map[string]bool, len(p.Annotations))
	for i, a := range p.Annotations {
		if a == nil {
			return fmt.Errorf("%w: annotation #%d is null", ErrInvalidProject, i+1)
		}
		if a.ImagePath == "" {
			return fmt.Errorf("%w: annotation #%d has no image path", ErrInvalidProject, i+1)
		}
		if paths[a.ImagePath] {
			return fmt.Errorf("%w: duplicate image path %q", ErrInvalidProject, a.ImagePath)
		}
		paths[a.ImagePath] = true
		if a.ImageWidth <= 0 || a.ImageHeight <= 0 {
			return fmt.Errorf("%w: image %q has size %dx%d",
				ErrInvalidProject, a.ImagePath, a.ImageWidth, a.ImageHeight)
		}
	}
	return nil
}
