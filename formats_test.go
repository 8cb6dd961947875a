package bboxlabel

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boxSummary struct {
	Class string
	Rect  Rect
}

func summarize(p *Project) map[string][]boxSummary {
	m := make(map[string][]boxSummary, len(p.Annotations))
	for _, a := range p.Annotations {
		boxes := make([]boxSummary, 0, len(a.Boxes))
		for _, b := range a.Boxes {
			boxes = append(boxes, boxSummary{Class: p.Classes[b.ClassID], Rect: b.Rect()})
		}
		m[filepath.Base(a.ImagePath)] = boxes
	}
	return m
}

// newImageProject writes two images to imageDir and returns a project annotating them.
func newImageProject(t *testing.T, imageDir string) *Project {
	t.Helper()
	p := NewProject("formats", testTime)
	first := writeTestImage(t, imageDir, "first.png", 120, 80)
	second := writeTestImage(t, imageDir, "second.png", 64, 64)

	add := func(path string, w, h int, class string, r Rect) {
		a := p.GetOrCreateAnnotation(path, w, h, testTime)
		id := p.ClassIndex(class)
		if id < 0 {
			id, _ = p.AddClass(class)
		}
		b, err := a.NewBox(class, id, r)
		require.NoError(t, err)
		a.Boxes = append(a.Boxes, b)
	}
	add(first, 120, 80, "good", Rect{X: 10, Y: 20, Width: 30, Height: 40})
	add(first, 120, 80, "ng_scratch", Rect{X: 0, Y: 0, Width: 120, Height: 80})
	add(second, 64, 64, "good", Rect{X: 1, Y: 2, Width: 3, Height: 4})
	return p
}

func TestKittiRoundTrip(t *testing.T) {
	imageDir, labelDir := t.TempDir(), t.TempDir()
	p := newImageProject(t, imageDir)

	require.NoError(t, NewExporter(DefaultConfig().Export, nil).ExportKitti(p, labelDir))
	enc, err := ioutil.ReadFile(filepath.Join(labelDir, "second.txt"))
	require.NoError(t, err)
	assert.Equal(t, "good 0.0 0 0.0 1.00 2.00 4.00 6.00 0.0 0.0 0.0 0.0 0.0 0.0 0.0 0.000000\n", string(enc))

	imported := NewProject("imported", testTime)
	require.NoError(t, NewImporter(nil).ImportKitti(imported, labelDir, imageDir))
	assert.Equal(t, p.Classes, imported.Classes)
	assert.Equal(t, summarize(p), summarize(imported))
}

func TestImportKittiSkipsBadLines(t *testing.T) {
	imageDir, labelDir := t.TempDir(), t.TempDir()
	writeTestImage(t, imageDir, "img.png", 100, 100)
	writeTestImage(t, imageDir, "unlabelled.png", 10, 10)
	content := "car 0 0 0 10 10 50 60 0 0 0 0 0 0 0\n" +
		"short 1 2\n" +
		"bad 0 0 0 x 10 50 60\n" +
		"\n" +
		"outside 0 0 0 200 200 300 300\n" +
		"edge 0 0 0 90 90 150 150\n"
	require.NoError(t, ioutil.WriteFile(filepath.Join(labelDir, "img.txt"), []byte(content), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(labelDir, "orphan.txt"), []byte(content), 0644))

	p := NewProject("p", testTime)
	logger := &testLogger{}
	require.NoError(t, NewImporter(logger).ImportKitti(p, labelDir, imageDir))

	assert.Equal(t, []string{"car", "edge"}, p.Classes)
	require.Len(t, p.Annotations, 1)
	assert.Equal(t, map[string][]boxSummary{"img.png": {
		{Class: "car", Rect: Rect{X: 10, Y: 10, Width: 40, Height: 50}},
		{Class: "edge", Rect: Rect{X: 90, Y: 90, Width: 10, Height: 10}},
	}}, summarize(p))
	assert.True(t, logger.contains("No corresponding image file"))
	assert.True(t, logger.contains("insufficient tokens"))
}

func TestImportKeepsExistingClassIDs(t *testing.T) {
	imageDir, labelDir := t.TempDir(), t.TempDir()
	path := writeTestImage(t, imageDir, "img.png", 100, 100)
	require.NoError(t, ioutil.WriteFile(filepath.Join(labelDir, "img.txt"),
		[]byte("new 0 0 0 0 0 10 10\nold 0 0 0 5 5 20 20\n"), 0644))

	p := NewProject("p", testTime)
	_, _ = p.AddClass("old")
	a := p.GetOrCreateAnnotation(path, 100, 100, testTime)
	b, err := a.NewBox("old", 0, Rect{X: 50, Y: 50, Width: 10, Height: 10})
	require.NoError(t, err)
	a.Boxes = append(a.Boxes, b)

	require.NoError(t, NewImporter(nil).ImportKitti(p, labelDir, imageDir))
	assert.Equal(t, []string{"old", "new"}, p.Classes)
	require.Len(t, p.Annotations, 1)
	require.Len(t, a.Boxes, 3)
	assert.Equal(t, 1, a.Boxes[1].ClassID)
	assert.Equal(t, 0, a.Boxes[2].ClassID)
}

func TestVIARoundTrip(t *testing.T) {
	imageDir := t.TempDir()
	p := newImageProject(t, imageDir)
	out := filepath.Join(t.TempDir(), "via.json")

	require.NoError(t, NewExporter(DefaultConfig().Export, nil).ExportVIA(p, out))
	imported := NewProject("imported", testTime)
	require.NoError(t, NewImporter(nil).ImportVIA(imported, out))

	assert.Equal(t, p.Classes, imported.Classes)
	assert.Equal(t, summarize(p), summarize(imported))
}

func TestImportVIARelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "img.png", 50, 50)
	via := `{
		"_via_img_metadata": {
			"img.png12345": {
				"filename": "img.png",
				"regions": [
					{"shape_attributes": {"name": "rect", "x": 5, "y": 5, "width": 10, "height": 20},
					 "region_attributes": {"Label": "good"}},
					{"shape_attributes": {"name": "circle", "cx": 5, "cy": 5, "r": 3},
					 "region_attributes": {"Label": "good"}}
				]
			},
			"missing.png1": {"filename": "missing.png", "regions": []}
		}
	}`
	path := filepath.Join(dir, "via.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(via), 0644))

	p := NewProject("p", testTime)
	require.NoError(t, NewImporter(nil).ImportVIA(p, path))
	require.Len(t, p.Annotations, 1)
	assert.Equal(t, filepath.Join(dir, "img.png"), p.Annotations[0].ImagePath)
	assert.Equal(t, map[string][]boxSummary{"img.png": {
		{Class: "good", Rect: Rect{X: 5, Y: 5, Width: 10, Height: 20}},
	}}, summarize(p))
}

func TestSlothRoundTrip(t *testing.T) {
	imageDir := t.TempDir()
	p := newImageProject(t, imageDir)
	out := filepath.Join(t.TempDir(), "sloth.json")

	require.NoError(t, NewExporter(DefaultConfig().Export, nil).ExportSloth(p, out))
	imported := NewProject("imported", testTime)
	require.NoError(t, NewImporter(nil).ImportSloth(imported, out))

	assert.Equal(t, p.Classes, imported.Classes)
	assert.Equal(t, summarize(p), summarize(imported))
}

func TestImportParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, ioutil.WriteFile(path, []byte("{"), 0644))
	im := NewImporter(nil)

	assert.Error(t, im.ImportVIA(NewProject("p", testTime), path))
	assert.Error(t, im.ImportSloth(NewProject("p", testTime), path))
	assert.Error(t, im.ImportSloth(NewProject("p", testTime), filepath.Join(t.TempDir(), "none.json")))
	assert.Error(t, im.ImportKitti(NewProject("p", testTime), filepath.Join(t.TempDir(), "none"), t.TempDir()))
}

func TestImportAWSDetectLabels(t *testing.T) {
	imageDir, labelDir := t.TempDir(), t.TempDir()
	writeTestImage(t, imageDir, "street.png", 200, 100)
	labels := `{
		"LabelModelVersion": "2.0",
		"Labels": [
			{"Name": "Car", "Confidence": 99, "Instances": [
				{"BoundingBox": {"Left": 0.1, "Top": 0.2, "Width": 0.25, "Height": 0.5}, "Confidence": 98},
				{"BoundingBox": {"Left": 0.5, "Top": 0.5, "Width": 0.1, "Height": 0.1}, "Confidence": 40}
			]},
			{"Name": "Road", "Confidence": 90, "Instances": []}
		]
	}`
	require.NoError(t, ioutil.WriteFile(filepath.Join(labelDir, "street.json"), []byte(labels), 0644))

	p := NewProject("p", testTime)
	require.NoError(t, NewImporter(nil).ImportAWSDetectLabels(p, labelDir, imageDir, 50))
	assert.Equal(t, []string{"Car"}, p.Classes)
	assert.Equal(t, map[string][]boxSummary{"street.png": {
		{Class: "Car", Rect: Rect{X: 20, Y: 20, Width: 50, Height: 50}},
	}}, summarize(p))
}

func TestExportDatasetJSON(t *testing.T) {
	p := newTestProject(t, []string{"good", "ng"}, mustBox(t, "ng", 1, Rect{X: 100, Y: 100, Width: 200, Height: 100}))
	out := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, NewExporter(DefaultConfig().Export, nil).ExportDatasetJSON(p, out))

	d := toDataset(p)
	assert.Equal(t, "test", d.ProjectName)
	require.Len(t, d.Images, 1)
	assert.Equal(t, "/data/img_001.png", d.Images[0].FilePath)
	assert.Equal(t, []datasetAnnotation{{
		ClassName:  "ng",
		ClassID:    1,
		BBox:       datasetBox{X: 100, Y: 100, Width: 200, Height: 100},
		Normalized: datasetNormBox{X: 0.2, Y: 0.3, Width: 0.2, Height: 0.2},
	}}, d.Images[0].Annotations)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
