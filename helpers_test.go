package bboxlabel

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// writeTestImage writes a w x h PNG with a horizontal gradient to dir/name and returns its path.
func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 80, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

// newTestProject returns a project with the given classes and one annotation of a 1000x500 image
// holding the given boxes.
func newTestProject(t *testing.T, classes []string, boxes ...BoundingBox) *Project {
	t.Helper()
	p := NewProject("test", testTime)
	for _, c := range classes {
		_, err := p.AddClass(c)
		require.NoError(t, err)
	}
	a := p.GetOrCreateAnnotation("/data/img_001.png", 1000, 500, testTime)
	a.Boxes = append(a.Boxes, boxes...)
	return p
}

// mustBox creates a box in a 1000x500 image.
func mustBox(t *testing.T, class string, id int, r Rect) BoundingBox {
	t.Helper()
	b, err := NewBoundingBox(class, id, r, 1000, 500)
	require.NoError(t, err)
	return b
}

// testLogger collects log messages.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

// contains reports whether any message contains substr.
func (l *testLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
