package assets

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

// LoadTexturePixels decodes a PNG, JPEG or BMP file into tightly packed
// RGBA8 pixels.
func LoadTexturePixels(path string) (*metadata.TexturePixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &metadata.TexturePixels{
		Name:   name,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: rgba.Pix,
	}, nil
}

// DefaultTexturePixels builds the magenta/black checkerboard used when a
// mesh part has no texture of its own.
func DefaultTexturePixels() *metadata.TexturePixels {
	const dim = 256
	const cell = 32
	pixels := make([]byte, dim*dim*4)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			i := (y*dim + x) * 4
			if ((x/cell)+(y/cell))%2 == 0 {
				pixels[i] = 255
				pixels[i+2] = 255
			}
			pixels[i+3] = 255
		}
	}
	return &metadata.TexturePixels{
		Name:   metadata.DEFAULT_TEXTURE_NAME,
		Width:  dim,
		Height: dim,
		Pixels: pixels,
	}
}
