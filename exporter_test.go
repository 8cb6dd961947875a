package bboxlabel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundExportUsesSnapshot(t *testing.T) {
	p := newTestProject(t, []string{"good"}, mustBox(t, "good", 0, Rect{X: 1, Y: 1, Width: 10, Height: 10}))
	e := NewExporter(ExportConfig{}, nil)

	started := make(chan struct{})
	proceed := make(chan struct{})
	var boxes int
	done := e.Background(p, func(snapshot *Project) error {
		close(started)
		<-proceed
		boxes = len(snapshot.Annotations[0].Boxes)
		return nil
	})

	<-started
	p.Annotations[0].Boxes = nil
	_, _ = p.AddClass("ng")
	close(proceed)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("export did not finish")
	}
	assert.Equal(t, 1, boxes)

	_, open := <-done
	assert.False(t, open)
}

func TestBackgroundExportErrors(t *testing.T) {
	e := NewExporter(ExportConfig{}, nil)
	p := NewProject("p", testTime)

	errBoom := errors.New("boom")
	assert.ErrorIs(t, <-e.Background(p, func(*Project) error { return errBoom }), errBoom)
	assert.ErrorIs(t, <-e.Background(p, func(*Project) error { panic("bad") }), ErrExportFailed)
}

func TestNewExporterDefaults(t *testing.T) {
	e := NewExporter(ExportConfig{}, nil)
	def := DefaultConfig().Export
	assert.Equal(t, def.YoloPrecision, e.cfg.YoloPrecision)
	assert.Equal(t, def.JPEGQuality, e.cfg.JPEGQuality)
	assert.Equal(t, def.ThumbnailSize, e.cfg.ThumbnailSize)
}

func TestCheckExportableWarnsAboutStaleNames(t *testing.T) {
	p := newTestProject(t, []string{"good"}, mustBox(t, "old name", 0, Rect{Width: 10, Height: 10}))
	logger := &testLogger{}

	require.NoError(t, NewExporter(ExportConfig{}, logger).checkExportable(p))
	assert.True(t, logger.contains("exporting by id"))
	assert.ErrorIs(t, NewExporter(ExportConfig{}, nil).checkExportable(nil), ErrExportFailed)
}
