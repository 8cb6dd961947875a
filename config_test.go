package bboxlabel

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Editor.MinDrawSize)
	assert.Equal(t, 10, cfg.Editor.MinBoxSize)
	assert.Equal(t, 10.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 0.1, cfg.Viewport.ZoomStep)
	assert.Equal(t, 6, cfg.Export.YoloPrecision)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
editor:
  min_box_size: 16
viewport:
  max_zoom: 4
export:
  copy_images: true
  image_max_side: 1280
store:
  image_extensions: [".png"]
  auto_save: false
`
	require.NoError(t, ioutil.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Editor.MinBoxSize)
	assert.Equal(t, 5, cfg.Editor.MinDrawSize)
	assert.Equal(t, 4.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 0.1, cfg.Viewport.ZoomStep)
	assert.True(t, cfg.Export.CopyImages)
	assert.Equal(t, 1280, cfg.Export.ImageMaxSide)
	assert.Equal(t, 90, cfg.Export.JPEGQuality)
	assert.Equal(t, []string{".png"}, cfg.Store.ImageExtensions)
	assert.False(t, cfg.Store.AutoSave)
	assert.Equal(t, "Untitled Project", cfg.Store.DefaultProjectName)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, ioutil.WriteFile(bad, []byte("editor: [1, 2"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, ioutil.WriteFile(invalid, []byte("export:\n  jpeg_quality: 101\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "jpeg_quality")

	zeroDraw := filepath.Join(dir, "zero-draw.yaml")
	require.NoError(t, ioutil.WriteFile(zeroDraw, []byte("editor:\n  min_draw_size: 0\n"), 0644))
	_, err = LoadConfig(zeroDraw)
	assert.ErrorContains(t, err, "min_draw_size")
}
