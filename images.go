package bboxlabel

// Image decoding, encoding and resampling.

import (
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // Register the BMP decoder.
	_ "golang.org/x/image/webp"
)

// fitLongerSide resamples img so that its longer side has length maxSide, keeping the aspect
// ratio. Images that already fit are returned unchanged. It returns the resized image along with
// the width and height scale factors.
func fitLongerSide(img image.Image, maxSide int) (resized image.Image, scaleWidth, scaleHeight float64) {
	bounds := img.Bounds()
	imgWidth, imgHeight := bounds.Dx(), bounds.Dy()
	if maxSide <= 0 || (imgWidth <= maxSide && imgHeight <= maxSide) {
		return img, 1, 1
	}

	// Calculate the target dimensions.
	w, h := maxSide, int(math.Round(float64(maxSide)*float64(imgHeight)/float64(imgWidth)))
	if imgHeight > imgWidth {
		w, h = int(math.Round(float64(maxSide)*float64(imgWidth)/float64(imgHeight))), maxSide
	}
	w, h = maxInt(w, 1), maxInt(h, 1)

	// Always downsampling here, so the box filter is good enough.
	resized = imaging.Resize(img, w, h, imaging.Box)
	return resized, float64(w) / float64(imgWidth), float64(h) / float64(imgHeight)
}

// decodeImageConfig opens the file at path and returns the results of image.DecodeConfig.
func decodeImageConfig(path string) (config image.Config, format string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close()

	return image.DecodeConfig(file)
}

// loadImage reads and decodes the image at path. EXIF orientation is not applied, so the result
// has the dimensions reported by decodeImageConfig.
func loadImage(path string) (image.Image, error) {
	return imaging.Open(path)
}

// saveImage writes the image to path atomically, encoding it as PNG or JPG depending on the file
// extension of path.
func saveImage(path string, img image.Image, jpegQuality int) error {
	return writeAtomic(path, 0644, func(w io.Writer) error {
		if strings.ToLower(filepath.Ext(path)) == ".png" {
			return imaging.Encode(w, img, imaging.PNG)
		}
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	})
}
