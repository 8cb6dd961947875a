package bboxlabel

// Conversions between pixel rectangles, normalized centre-form rectangles, and the two-point
// rectangles produced by pointer gestures.

import (
	"fmt"
	"math"
)

// Point is a 2D point. It is used both for image space (pixels) and display space.
type Point struct {
	X float64
	Y float64
}

// Round returns p with both coordinates rounded half away from zero.
func (p Point) Round() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// Rect is an integer pixel rectangle in image space with its origin at the top-left corner.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right is the x coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom is the y coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r. The left and top edges are inclusive, the right and
// bottom edges exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= float64(r.X) && p.X < float64(r.Right()) &&
		p.Y >= float64(r.Y) && p.Y < float64(r.Bottom())
}

// RectF is a floating point rectangle, used for display space.
type RectF struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NormRect is a centre-form rectangle with all values relative to the image size, as used by
// YOLO-style training labels.
type NormRect struct {
	CenterX float64
	CenterY float64
	Width   float64
	Height  float64
}

// ToNormalized converts a pixel rectangle to a normalized centre-form rectangle for an image of
// imageW x imageH pixels.
func ToNormalized(r Rect, imageW, imageH int) (NormRect, error) {
	if imageW <= 0 || imageH <= 0 {
		return NormRect{}, fmt.Errorf("%w: image size %dx%d", ErrInvalidGeometry, imageW, imageH)
	}

	w := float64(imageW)
	h := float64(imageH)
	return NormRect{
		CenterX: (float64(r.X) + float64(r.Width)/2) / w,
		CenterY: (float64(r.Y) + float64(r.Height)/2) / h,
		Width:   float64(r.Width) / w,
		Height:  float64(r.Height) / h,
	}, nil
}

// ToPixel is the inverse of ToNormalized. All values are rounded half away from zero.
func ToPixel(n NormRect, imageW, imageH int) (Rect, error) {
	if imageW <= 0 || imageH <= 0 {
		return Rect{}, fmt.Errorf("%w: image size %dx%d", ErrInvalidGeometry, imageW, imageH)
	}

	w := float64(imageW)
	h := float64(imageH)
	return Rect{
		X:      int(math.Round((n.CenterX - n.Width/2) * w)),
		Y:      int(math.Round((n.CenterY - n.Height/2) * h)),
		Width:  int(math.Round(n.Width * w)),
		Height: int(math.Round(n.Height * h)),
	}, nil
}

// NormalizeRect returns the rectangle spanned by two arbitrary corner points, with a non-negative
// width and height. The points are rounded to whole pixels first.
func NormalizeRect(p1, p2 Point) Rect {
	p1 = p1.Round()
	p2 = p2.Round()
	return Rect{
		X:      int(math.Min(p1.X, p2.X)),
		Y:      int(math.Min(p1.Y, p2.Y)),
		Width:  int(math.Abs(p2.X - p1.X)),
		Height: int(math.Abs(p2.Y - p1.Y)),
	}
}

// ClampRect enforces a minimum width and height on a rectangle that was resized through handle h.
// The rectangle grows away from the edges that h leaves fixed, so the opposite edge never moves.
// Moves (HandleMove) and unknown handles only have negative sizes raised to minSize.
func ClampRect(r Rect, h Handle, minSize int) Rect {
	if minSize < 0 {
		minSize = 0
	}

	if r.Width < minSize {
		if h.movesLeft() {
			// The right edge is fixed.
			right := r.Right()
			r.Width = minSize
			r.X = right - minSize
		} else {
			r.Width = minSize
		}
	}
	if r.Height < minSize {
		if h.movesTop() {
			// The bottom edge is fixed.
			bottom := r.Bottom()
			r.Height = minSize
			r.Y = bottom - minSize
		} else {
			r.Height = minSize
		}
	}

	return r
}

// ClipRect returns the intersection of r with the image area [0, imageW) x [0, imageH).
func ClipRect(r Rect, imageW, imageH int) Rect {
	x1 := maxInt(r.X, 0)
	y1 := maxInt(r.Y, 0)
	x2 := minInt(r.Right(), imageW)
	y2 := minInt(r.Bottom(), imageH)
	if x2 <= x1 || y2 <= y1 {
		return Rect{X: x1, Y: y1}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// keepInside translates r so that it lies within the image, without changing its size unless it
// is larger than the image.
func keepInside(r Rect, imageW, imageH int) Rect {
	if r.Width > imageW {
		r.Width = imageW
	}
	if r.Height > imageH {
		r.Height = imageH
	}
	r.X = minInt(maxInt(r.X, 0), imageW-r.Width)
	r.Y = minInt(maxInt(r.Y, 0), imageH-r.Height)
	return r
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
