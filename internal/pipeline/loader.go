package pipeline

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"

	"gocv.io/x/gocv"
)

// loadImageFile decodes the image at path. The standard library path
// handles png, jpeg, and 16-bit tiff; anything it rejects goes through
// the OpenCV decoder, which covers the remaining camera formats.
func loadImageFile(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image file: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, format, nil
	}

	mat, cvErr := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if cvErr != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, "", fmt.Errorf("failed to decode image: empty frame")
	}
	img, cvErr = mat.ToImage()
	if cvErr != nil {
		return nil, "", fmt.Errorf("failed to convert decoded frame: %w", cvErr)
	}
	return img, "opencv", nil
}
