// Package assets loads texture images from disk or memory and exposes their
// raw RGBA8 pixels for GPU upload. Decoding supports PNG, JPEG, BMP and TIFF.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrNoRGBABytes is returned when a texture cannot yield RGBA8 pixel data,
// typically because it has not been decoded yet or decoding produced no
// pixels. Queue texture writes require raw RGBA8 bytes.
var ErrNoRGBABytes = errors.New("texture has no rgba8 bytes")

// Texture is a decoded image asset: raw RGBA8 pixels plus dimensions.
// Immutable once loaded.
type Texture struct {
	path   string
	pixels []byte
	width  uint32
	height uint32
}

// Load reads and decodes an image file into a Texture.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - *Texture: the decoded texture
//   - error: an error if the file cannot be read or decoded
func Load(path string) (*Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture file %s: %w", path, err)
	}
	return fromImage(path, img), nil
}

// Decode decodes an in-memory image payload into a Texture.
//
// Parameters:
//   - name: an identifier used in error messages and GPU labels
//   - data: the encoded image bytes
//
// Returns:
//   - *Texture: the decoded texture
//   - error: an error if the payload cannot be decoded
func Decode(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded image %s: %w", name, err)
	}
	return fromImage(name, img), nil
}

// FromRGBA wraps pre-decoded RGBA8 pixel data in a Texture without copying.
// The pixel slice length must equal width*height*4.
//
// Parameters:
//   - name: an identifier used in error messages and GPU labels
//   - pixels: raw RGBA8 pixel data, 4 bytes per pixel, row-major
//   - width, height: the image dimensions in pixels
//
// Returns:
//   - *Texture: the wrapped texture
//   - error: an error if the pixel slice does not match the dimensions
func FromRGBA(name string, pixels []byte, width, height uint32) (*Texture, error) {
	if uint32(len(pixels)) != width*height*4 {
		return nil, fmt.Errorf("texture %s: pixel data length %d does not match %dx%d rgba8", name, len(pixels), width, height)
	}
	return &Texture{path: name, pixels: pixels, width: width, height: height}, nil
}

func fromImage(path string, img image.Image) *Texture {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return &Texture{
		path:   path,
		pixels: rgba.Pix,
		width:  uint32(bounds.Dx()),
		height: uint32(bounds.Dy()),
	}
}

// Path returns the file path or identifier the texture was loaded from.
func (t *Texture) Path() string {
	return t.path
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 {
	return t.width
}

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 {
	return t.height
}

// RGBA8Bytes returns the raw RGBA8 pixel data for GPU upload.
//
// Returns:
//   - []byte: raw RGBA8 pixel data (4 bytes per pixel, row-major order)
//   - error: ErrNoRGBABytes if the texture holds no pixel data
func (t *Texture) RGBA8Bytes() ([]byte, error) {
	if len(t.pixels) == 0 {
		return nil, fmt.Errorf("texture %s: %w", t.path, ErrNoRGBABytes)
	}
	return t.pixels, nil
}
