package bboxlabel

// The zoom and pan state of one displayed image, and the transforms between image and display
// space.

import "math"

// Default viewport limits.
const (
	DefaultMaxZoom      = 10.0
	DefaultZoomStep     = 0.1
	DefaultFitTolerance = 0.01
)

// ComputeFitZoom returns the largest zoom at which an imageW x imageH image fits entirely into an
// availW x availH display area. It returns 1 for a display area or image that has no size yet.
func ComputeFitZoom(imageW, imageH int, availW, availH float64) float64 {
	if availW <= 0 || availH <= 0 || imageW <= 0 || imageH <= 0 {
		return 1
	}
	return math.Min(availW/float64(imageW), availH/float64(imageH))
}

// Viewport maps between image space and display space for a single image:
//
//	display = image*zoom + pan
//
// The zoom is kept in [fit zoom, max zoom], where the fit zoom makes the image exactly fill the
// available display area.
type Viewport struct {
	zoom    float64
	fitZoom float64
	maxZoom float64
	fitTol  float64
	pan     Point

	imageW int
	imageH int
	availW float64
	availH float64
}

// NewViewport creates a viewport for an imageW x imageH image in an availW x availH display area,
// zoomed to fit and centred.
func NewViewport(cfg ViewportConfig, imageW, imageH int, availW, availH float64) *Viewport {
	if cfg.MaxZoom <= 0 {
		cfg.MaxZoom = DefaultMaxZoom
	}
	if cfg.FitTolerance <= 0 {
		cfg.FitTolerance = DefaultFitTolerance
	}

	v := &Viewport{
		maxZoom: cfg.MaxZoom,
		fitTol:  cfg.FitTolerance,
		imageW:  imageW,
		imageH:  imageH,
		availW:  availW,
		availH:  availH,
	}
	v.ResetToFit()
	return v
}

// Zoom is the current zoom factor.
func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// FitZoom is the zoom factor at which the whole image fits the display area. It is the lower zoom
// limit.
func (v *Viewport) FitZoom() float64 {
	return v.fitZoom
}

// Pan is the display space position of the image origin.
func (v *Viewport) Pan() Point {
	return v.pan
}

// ImageSize returns the bound image dimensions.
func (v *Viewport) ImageSize() (int, int) {
	return v.imageW, v.imageH
}

// DisplaySize returns the bound display area dimensions.
func (v *Viewport) DisplaySize() (float64, float64) {
	return v.availW, v.availH
}

// ImageToDisplay maps an image space point to display space.
func (v *Viewport) ImageToDisplay(p Point) Point {
	return Point{X: p.X*v.zoom + v.pan.X, Y: p.Y*v.zoom + v.pan.Y}
}

// DisplayToImage maps a display space point to image space.
func (v *Viewport) DisplayToImage(p Point) Point {
	return Point{X: (p.X - v.pan.X) / v.zoom, Y: (p.Y - v.pan.Y) / v.zoom}
}

// ImageRectToDisplay maps an image space rectangle to display space.
func (v *Viewport) ImageRectToDisplay(r Rect) RectF {
	o := v.ImageToDisplay(Point{X: float64(r.X), Y: float64(r.Y)})
	return RectF{X: o.X, Y: o.Y, Width: float64(r.Width) * v.zoom, Height: float64(r.Height) * v.zoom}
}

// DisplayRectToImage maps a display space rectangle to image space, rounding to whole pixels.
func (v *Viewport) DisplayRectToImage(r RectF) Rect {
	o := v.DisplayToImage(Point{X: r.X, Y: r.Y}).Round()
	return Rect{
		X:      int(o.X),
		Y:      int(o.Y),
		Width:  int(math.Round(r.Width / v.zoom)),
		Height: int(math.Round(r.Height / v.zoom)),
	}
}

// clampZoom limits z to [fit zoom, max zoom].
func (v *Viewport) clampZoom(z float64) float64 {
	upper := math.Max(v.maxZoom, v.fitZoom)
	if z < v.fitZoom {
		return v.fitZoom
	}
	if z > upper {
		return upper
	}
	return z
}

// AdjustZoom changes the zoom by delta and keeps the image point under the display point pivot in
// place.
func (v *Viewport) AdjustZoom(delta float64, pivot Point) {
	v.SetZoom(v.zoom+delta, pivot)
}

// SetZoom sets the zoom (clamped to the valid range) and keeps the image point under the display
// point pivot in place.
func (v *Viewport) SetZoom(zoom float64, pivot Point) {
	// The image point under the pivot before the change.
	anchor := v.DisplayToImage(pivot)

	v.zoom = v.clampZoom(zoom)

	// Solve pivot = anchor*zoom + pan for the new pan.
	v.pan = Point{X: pivot.X - anchor.X*v.zoom, Y: pivot.Y - anchor.Y*v.zoom}
}

// ZoomAroundCenter changes the zoom by delta, pivoting on the centre of the display area.
func (v *Viewport) ZoomAroundCenter(delta float64) {
	v.AdjustZoom(delta, Point{X: v.availW / 2, Y: v.availH / 2})
}

// Translate moves the pan offset by a display space delta.
func (v *Viewport) Translate(dx, dy float64) {
	v.pan.X += dx
	v.pan.Y += dy
}

// CenterInViewport centres the scaled image within the display area. On an axis where the scaled
// image is larger than the display area the image origin is placed at the display origin.
func (v *Viewport) CenterInViewport() {
	v.pan = Point{
		X: math.Max(0, (v.availW-float64(v.imageW)*v.zoom)/2),
		Y: math.Max(0, (v.availH-float64(v.imageH)*v.zoom)/2),
	}
}

// ResetToFit zooms to the fit zoom and centres the image.
func (v *Viewport) ResetToFit() {
	v.fitZoom = ComputeFitZoom(v.imageW, v.imageH, v.availW, v.availH)
	v.zoom = v.fitZoom
	v.CenterInViewport()
}

// IsFit reports whether the current zoom equals the fit zoom within the configured tolerance.
func (v *Viewport) IsFit() bool {
	return math.Abs(v.zoom-v.fitZoom) < v.fitTol
}

// Resize binds a new display area size. A viewport that was showing the image at fit zoom is
// refitted; otherwise the user's zoom is kept and only the fit zoom floor is updated.
func (v *Viewport) Resize(availW, availH float64) {
	wasFit := v.IsFit()
	v.availW = availW
	v.availH = availH

	if wasFit {
		v.ResetToFit()
		return
	}
	v.fitZoom = ComputeFitZoom(v.imageW, v.imageH, v.availW, v.availH)
	if v.zoom < v.fitZoom {
		v.SetZoom(v.fitZoom, Point{X: v.availW / 2, Y: v.availH / 2})
	}
}
