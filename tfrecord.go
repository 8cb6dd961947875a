package bboxlabel

// TFRecord object detection specific functionality.

import (
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"strconv"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be convertible to
// tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// tfRecordLabel returns the TFRecord class label for a class id. Label 0 is reserved for the
// background class.
func tfRecordLabel(classID int) int64 {
	return int64(classID) + 1
}

// toTFFeatureMap converts the annotation of a single image to the object detection feature map.
// The encoded image is read from the image file.
func toTFFeatureMap(p *Project, a *ImageAnnotation) (TFFeatureMap, error) {
	// Get the image format.
	_, format, err := decodeImageConfig(a.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode the image metadata: %v", err)
	}

	// Read the image data.
	imgData, err := ioutil.ReadFile(a.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %v", err)
	}

	// Prepare the feature map for the per file data.
	f := make(TFFeatureMap, 16)
	f["image/height"] = a.ImageHeight
	f["image/width"] = a.ImageWidth
	f["image/filename"] = a.ImagePath
	f["image/source_id"] = a.ImagePath
	f["image/encoded"] = imgData
	f["image/format"] = format

	// Prepare the per box data.
	numBoxes := len(a.Boxes)
	xmins := make([]float32, numBoxes)
	ymins := make([]float32, numBoxes)
	xmaxs := make([]float32, numBoxes)
	ymaxs := make([]float32, numBoxes)
	classes := make([]string, numBoxes)
	classIDs := make([]int64, numBoxes)
	w, h := float32(a.ImageWidth), float32(a.ImageHeight)
	for i, b := range a.Boxes {
		r := b.Rect()
		xmins[i] = float32(r.X) / w
		ymins[i] = float32(r.Y) / h
		xmaxs[i] = float32(r.Right()) / w
		ymaxs[i] = float32(r.Bottom()) / h
		classes[i] = p.Classes[b.ClassID]
		classIDs[i] = tfRecordLabel(b.ClassID)
	}
	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/text"] = classes
	f["image/object/class/label"] = classIDs

	return f, nil
}

// toTFExample creates the example for the annotation of a single image. example.New panics on
// values it cannot convert, which is reported as an error instead.
func toTFExample(p *Project, a *ImageAnnotation) (e *tensorflow.Example, err error) {
	f, err := toTFFeatureMap(p, a)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", r)
		}
	}()
	return example.New(f), nil
}

// tfRecordShardPath returns the path of shard idx. A single shard is written to recordFilePath
// itself.
func tfRecordShardPath(recordFilePath string, idx, numShards int) string {
	if numShards <= 1 {
		return recordFilePath
	}
	return recordFilePath + fmt.Sprintf("-%05d-of-%05d", idx, numShards)
}

// ExportTFRecord does a streaming conversion, serialisation and file write of the project to
// numShards TFRecord files under recordFilePath (with shard suffixes when numShards > 1). Images
// that cannot be read are skipped with a warning.
//
// The label map for the class list is written to labelMapPath in prototxt format.
func (e *Exporter) ExportTFRecord(p *Project, recordFilePath, labelMapPath string,
		numShards int) error {

	if err := e.checkExportable(p); err != nil {
		return err
	}
	if numShards <= 0 {
		numShards = 1
	}

	n := len(p.Annotations)
	shardSize := int(math.Ceil(float64(n) / float64(numShards)))
	written := 0
	for shardIdx := 0; shardIdx < numShards; shardIdx++ {
		start := minInt(shardIdx*shardSize, n)
		end := minInt(start+shardSize, n)
		shardPath := tfRecordShardPath(recordFilePath, shardIdx, numShards)

		// Convert and serialise one image at a time.
		err := writeAtomic(shardPath, 0644, func(w io.Writer) error {
			for _, a := range p.Annotations[start:end] {
				tfExample, err := toTFExample(p, a)
				if err != nil {
					e.logger.Printf("Failed to convert %q, skipping: %v", a.ImagePath, err)
					continue
				}
				if err := writeTFRecordExample(w, tfExample); err != nil {
					return err
				}
				written++
			}
			return nil
		})
		if err != nil {
			return exportErr(shardPath, err)
		}
	}

	if err := e.saveTFRecordLabelMap(labelMapPath, p.Classes); err != nil {
		return err
	}

	e.logger.Printf("Wrote %d TFRecord examples in %d shards to %s", written, numShards,
		recordFilePath)
	return nil
}

// writeTFRecordExample serialises the example and writes it as a TFRecord to w.
func writeTFRecordExample(w io.Writer, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}

// saveTFRecordLabelMap writes the class list as a StringIntLabelMap in prototxt format to path.
func (e *Exporter) saveTFRecordLabelMap(path string, classes []string) error {
	err := writeAtomic(path, 0644, func(w io.Writer) error {
		for i, c := range classes {
			_, err := fmt.Fprintf(w, "item {\n  name: %s\n  id: %d\n}\n", strconv.Quote(c),
				tfRecordLabel(i))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return exportErr(path, err)
	}
	return nil
}
