// Package source turns configuration nodes into normalized source bitmaps.
//
// # Pipeline
//
// For each node the [Loader]:
//
//  1. Joins FilePath and FileName and expands environment placeholders
//     (%VAR%, $VAR and ${VAR}).
//  2. Applies hardware-variant substitution (see [settings.Variant]).
//  3. Decodes the file through an [ImageSource].
//  4. Crops to (XOffsetStart,YOffsetStart)-(XOffsetFinish,YOffsetFinish).
//     An empty rectangle selects the whole image.
//  5. Stretches the crop to Width x Height, falling back to the crop size.
//  6. Flattens to 24-bit color and multiplies alpha by Opacity.
//
// Source alpha is discarded on purpose: every output pixel has alpha equal
// to round(255*opacity), matching the panel images rendered by earlier
// tools.
package source

import (
	"image"
	"os"

	"github.com/disintegration/imaging"
	// Panel exports are frequently BMP or TIFF.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageSource resolves file paths to decoded images.
type ImageSource interface {
	// Exists reports whether path names a readable file.
	Exists(path string) bool

	// Decode reads and decodes the image at path.
	Decode(path string) (image.Image, error)
}

// FileSource reads images from the local file system.
type FileSource struct{}

// Exists implements ImageSource.
func (FileSource) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Decode implements ImageSource.
func (FileSource) Decode(path string) (image.Image, error) {
	return imaging.Open(path)
}

// MapSource serves pre-decoded images keyed by path. It is useful in tests
// and for presentation layers that already hold decoded bitmaps.
type MapSource map[string]image.Image

// Exists implements ImageSource.
func (m MapSource) Exists(path string) bool {
	_, ok := m[path]
	return ok
}

// Decode implements ImageSource.
func (m MapSource) Decode(path string) (image.Image, error) {
	img, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return img, nil
}

var (
	_ ImageSource = FileSource{}
	_ ImageSource = MapSource(nil)
)
