package bboxlabel

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(logger Logger) *Store {
	s := NewStore(DefaultConfig().Store, logger)
	s.now = func() time.Time { return testTime }
	return s
}

func TestLoadMissingFile(t *testing.T) {
	logger := &testLogger{}
	s := newTestStore(logger)

	p, warning := s.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NotNil(t, p)
	assert.ErrorIs(t, warning, ErrProjectLoadFailed)
	assert.ErrorIs(t, warning, os.ErrNotExist)
	assert.NotNil(t, p.Classes)
	assert.Empty(t, p.Classes)
	assert.NotNil(t, p.Annotations)
	assert.Empty(t, p.Annotations)
	assert.Equal(t, "Untitled Project", p.Name)
	assert.True(t, logger.contains("Warning"))
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"classes": [`), 0644))

	p, warning := newTestStore(nil).Load(path)
	require.NotNil(t, p)
	assert.ErrorIs(t, warning, ErrProjectLoadFailed)
	assert.ErrorIs(t, warning, ErrInvalidProject)
	assert.Empty(t, p.Annotations)
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(nil)
	p := newTestProject(t, []string{"good"}, mustBox(t, "good", 0, Rect{X: 1, Y: 2, Width: 30, Height: 40}))
	path := filepath.Join(t.TempDir(), "project.json")

	require.NoError(t, s.Save(p, path))
	assert.Equal(t, path, p.Path)
	assert.Equal(t, testTime, p.LastModified)

	got, warning := s.Load(path)
	require.NoError(t, warning)
	assert.Equal(t, p, got)

	// No temporary files are left behind.
	entries, err := ioutil.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveRetargetsPath(t *testing.T) {
	s := newTestStore(nil)
	dir := t.TempDir()
	first, second := filepath.Join(dir, "first.json"), filepath.Join(dir, "second.json")
	p := NewProject("p", testTime)

	require.NoError(t, s.Save(p, first))
	assert.Equal(t, first, p.Path)
	require.NoError(t, s.Save(p, second))
	assert.Equal(t, second, p.Path)

	// The file written under the new name names itself.
	loaded, warning := s.Load(second)
	require.NoError(t, warning)
	assert.Equal(t, second, loaded.Path)
}

func TestFailedSaveLeavesProjectUnchanged(t *testing.T) {
	s := newTestStore(nil)
	before := testTime.Add(-time.Hour)
	p := NewProject("p", before)
	path := filepath.Join(t.TempDir(), "no-such-dir", "project.json")

	err := s.Save(p, path)
	assert.ErrorIs(t, err, ErrProjectSaveFailed)
	assert.Equal(t, "", p.Path)
	assert.Equal(t, before, p.LastModified)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveReplacesAtomically(t *testing.T) {
	s := newTestStore(nil)
	path := filepath.Join(t.TempDir(), "project.json")
	p := NewProject("first", testTime)
	require.NoError(t, s.Save(p, path))

	p.Name = "second"
	require.NoError(t, s.Save(p, path))
	got, warning := s.Load(path)
	require.NoError(t, warning)
	assert.Equal(t, "second", got.Name)
}
