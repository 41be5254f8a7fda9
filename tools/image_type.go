package tools

import "bytes"

type ImageType string

const (
	ImageTypePNG     ImageType = "png"
	ImageTypeJPEG    ImageType = "jpeg"
	ImageTypeWEBP    ImageType = "webp"
	ImageTypeGIF     ImageType = "gif"
	ImageTypeBMP     ImageType = "bmp"
	ImageTypeUnknown ImageType = "unknown"
)

func (t ImageType) String() string {
	return string(t)
}

func (t ImageType) Mime() string {
	switch t {
	case ImageTypePNG:
		return "image/png"
	case ImageTypeJPEG:
		return "image/jpeg"
	case ImageTypeWEBP:
		return "image/webp"
	case ImageTypeGIF:
		return "image/gif"
	case ImageTypeBMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}

// DetectImageType sniffs the magic bytes of the payload.
func DetectImageType(data []byte) ImageType {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return ImageTypePNG
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xFF, 0xD8, 0xFF}):
		return ImageTypeJPEG
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return ImageTypeWEBP
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return ImageTypeGIF
	case len(data) >= 2 && bytes.Equal(data[:2], []byte("BM")):
		return ImageTypeBMP
	}
	return ImageTypeUnknown
}
