package bboxlabel

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropBoxes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 50 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	boxes := []BoundingBox{
		{ClassName: "good", X: 60, Y: 10, Width: 20, Height: 20},
		{ClassName: "ng", IsDefect: true, X: 200, Y: 200, Width: 5, Height: 5},
		{ClassName: "ng", IsDefect: true, X: -10, Y: -10, Width: 30, Height: 30},
	}
	previews := CropBoxes(img, boxes, 16)
	require.Len(t, previews, 2)

	assert.Equal(t, 0, previews[0].BoxIndex)
	assert.Equal(t, "good", previews[0].ClassName)
	assert.Equal(t, image.Rect(0, 0, 16, 16), previews[0].Image.Bounds())
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, previews[0].Image.NRGBAAt(8, 8))

	assert.Equal(t, 2, previews[1].BoxIndex)
	assert.True(t, previews[1].IsDefect)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, previews[1].Image.NRGBAAt(8, 8))
}

func TestCropBoxesOffsetBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 30, 30))
	img.SetNRGBA(10, 10, color.NRGBA{G: 255, A: 255})

	previews := CropBoxes(img, []BoundingBox{{X: 0, Y: 0, Width: 1, Height: 1}}, 4)
	require.Len(t, previews, 1)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, previews[0].Image.NRGBAAt(2, 2))
}

func TestPreviews(t *testing.T) {
	e := NewExporter(DefaultConfig().Export, nil)
	img := image.NewNRGBA(image.Rect(0, 0, 1000, 500))
	p := newTestProject(t, []string{"good"}, mustBox(t, "good", 0, Rect{X: 1, Y: 1, Width: 10, Height: 10}))

	previews := e.Previews(img, p.Annotations[0])
	require.Len(t, previews, 1)
	assert.Equal(t, 100, previews[0].Image.Bounds().Dx())
	assert.Nil(t, e.Previews(img, nil))
	assert.Nil(t, CropBoxes(img, nil, 10))
}
