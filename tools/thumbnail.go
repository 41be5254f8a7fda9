package tools

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// Thumbnail scales the image down by ratio and re-encodes it as JPEG.
// WEBP needs its own decoder; imaging only registers png/jpeg/gif/bmp/tiff.
func Thumbnail(data []byte, ratio float64) ([]byte, error) {
	var img image.Image
	var err error
	if DetectImageType(data) == ImageTypeWEBP {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	width := int(float64(b.Dx()) * ratio)
	height := int(float64(b.Dy()) * ratio)
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("thumbnail ratio %v collapses %dx%d to zero", ratio, b.Dx(), b.Dy())
	}
	thumbnail := imaging.Thumbnail(img, width, height, imaging.Lanczos)
	var buf bytes.Buffer
	err = imaging.Encode(&buf, thumbnail, imaging.JPEG, imaging.JPEGQuality(85))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
