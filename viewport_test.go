package bboxlabel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFitZoom(t *testing.T) {
	assert.InDelta(t, 0.5, ComputeFitZoom(2000, 1000, 1000, 800), 1e-12)
	assert.InDelta(t, 2.0, ComputeFitZoom(100, 200, 1000, 400), 1e-12)
	assert.Equal(t, 1.0, ComputeFitZoom(100, 100, 0, 400))
	assert.Equal(t, 1.0, ComputeFitZoom(0, 100, 100, 400))
}

func TestFitZoomFitsAndTouches(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		w, h := 1+rng.Intn(5000), 1+rng.Intn(5000)
		aw, ah := 1+rng.Float64()*3000, 1+rng.Float64()*3000
		z := ComputeFitZoom(w, h, aw, ah)

		assert.LessOrEqual(t, float64(w)*z, aw+1e-9)
		assert.LessOrEqual(t, float64(h)*z, ah+1e-9)
		touchesW := aw-float64(w)*z < 1e-6
		touchesH := ah-float64(h)*z < 1e-6
		assert.True(t, touchesW || touchesH, "image %dx%d in %.2fx%.2f", w, h, aw, ah)
	}
}

func TestNewViewportCentres(t *testing.T) {
	v := NewViewport(ViewportConfig{}, 1000, 500, 1000, 1000)
	assert.Equal(t, 1.0, v.Zoom())
	assert.Equal(t, Point{X: 0, Y: 250}, v.Pan())
	assert.True(t, v.IsFit())
}

func TestDisplayImageInverse(t *testing.T) {
	v := NewViewport(ViewportConfig{}, 640, 480, 800, 600)
	v.AdjustZoom(1.7, Point{X: 123, Y: 456})
	v.Translate(-31, 17)

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		p := Point{X: rng.Float64() * 640, Y: rng.Float64() * 480}
		got := v.DisplayToImage(v.ImageToDisplay(p))
		assert.InDelta(t, p.X, got.X, 1e-9)
		assert.InDelta(t, p.Y, got.Y, 1e-9)
	}
}

func TestZoomKeepsPivot(t *testing.T) {
	v := NewViewport(ViewportConfig{}, 100, 100, 100, 100)
	v.Translate(25, 25)
	pivot := Point{X: 50, Y: 50}
	assert.Equal(t, Point{X: 25, Y: 25}, v.DisplayToImage(pivot))

	v.AdjustZoom(1.0, pivot)
	assert.Equal(t, 2.0, v.Zoom())
	got := v.DisplayToImage(pivot)
	assert.InDelta(t, 25, got.X, 1e-9)
	assert.InDelta(t, 25, got.Y, 1e-9)
}

func TestZoomLimits(t *testing.T) {
	v := NewViewport(ViewportConfig{MaxZoom: 4}, 200, 100, 100, 100)
	assert.InDelta(t, 0.5, v.FitZoom(), 1e-12)

	v.AdjustZoom(-1, Point{})
	assert.InDelta(t, 0.5, v.Zoom(), 1e-12)

	v.AdjustZoom(100, Point{X: 50, Y: 50})
	assert.InDelta(t, 4, v.Zoom(), 1e-12)
}

func TestResize(t *testing.T) {
	// At fit zoom the image is refitted.
	v := NewViewport(ViewportConfig{}, 100, 100, 100, 100)
	v.Resize(200, 300)
	assert.InDelta(t, 2, v.Zoom(), 1e-12)
	assert.Equal(t, Point{X: 0, Y: 50}, v.Pan())

	// A user zoom is kept, only the floor changes.
	v = NewViewport(ViewportConfig{}, 100, 100, 100, 100)
	v.AdjustZoom(2, Point{X: 50, Y: 50})
	v.Resize(200, 200)
	assert.InDelta(t, 3, v.Zoom(), 1e-12)
	assert.InDelta(t, 2, v.FitZoom(), 1e-12)
	assert.False(t, v.IsFit())
}

func TestRectMapping(t *testing.T) {
	v := NewViewport(ViewportConfig{}, 100, 100, 200, 200)
	d := v.ImageRectToDisplay(Rect{X: 10, Y: 20, Width: 30, Height: 40})
	assert.Equal(t, RectF{X: 20, Y: 40, Width: 60, Height: 80}, d)
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 30, Height: 40}, v.DisplayRectToImage(d))
}
