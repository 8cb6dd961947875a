package bboxlabel

import (
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesByExtInDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.JPG", "a.jpg", "b.png", "notes.txt"} {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0755))

	files, err := filesByExtInDir(dir, []string{".jpg", ".PNG"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.JPG"),
	}, files)

	all, err := filesByExtInDir(dir, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = filesByExtInDir(filepath.Join(dir, "a.jpg"), nil)
	assert.Error(t, err)
}

func TestSplitPath(t *testing.T) {
	dir, base, ext, err := splitPath(filepath.Join("data", "images", "img.01.png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "images"), dir)
	assert.Equal(t, "img.01", base)
	assert.Equal(t, "png", ext)

	_, _, _, err = splitPath("noext")
	assert.Error(t, err)
	assert.Equal(t, "noext", baseNameNoExt("/x/noext"))
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, writeFileAtomic(path, []byte("first"), 0644))

	errWrite := errors.New("write failed")
	err := writeAtomic(path, 0644, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errWrite
	})
	assert.ErrorIs(t, err, errWrite)

	enc, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(enc))

	entries, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, ioutil.WriteFile(path, []byte("a\nb c\n\nd"), 0644))

	lines, err := readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c", "", "d"}, lines)

	_, err = readLines(path + ".missing")
	assert.Error(t, err)
}
