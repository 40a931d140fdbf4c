// Package image provides the raster sources composited into poster circles:
// decoded layers, fetch and decode errors, layer blending and cover scaling.
package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"starmap/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Layer is a decoded raster ready for compositing. Layers are never mutated
// after decoding; renders share them read-only.
type Layer struct {
	Source  string      // where the raster came from: a URL, path or generator name
	Format  string      // decoder name reported by image.Decode
	Image   image.Image // decoded pixels
	Visible bool
	Opacity float64 // 0.0 - 1.0
}

// NewLayer wraps an already decoded image.
func NewLayer(source string, img image.Image) *Layer {
	return &Layer{
		Source:  source,
		Image:   img,
		Visible: true,
		Opacity: 1.0,
	}
}

// Decode reads an encoded raster. Any failure, including an empty body, is
// reported as a *DecodeError.
func Decode(source string, r io.Reader) (*Layer, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("image has no pixels")}
	}
	layer := NewLayer(source, img)
	layer.Format = format
	return layer, nil
}

// DecodeBytes is Decode over an in-memory body.
func DecodeBytes(source string, data []byte) (*Layer, error) {
	return Decode(source, bytes.NewReader(data))
}

// Load decodes an image file from disk.
func Load(path string) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()
	return Decode(path, file)
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the natural image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.NewSize(float64(l.Width()), float64(l.Height()))
}

// SupportedFormats returns the file extensions Load can decode.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
