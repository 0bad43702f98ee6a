package metadata

// The texture bound when a mesh part names none.
const DEFAULT_TEXTURE_NAME string = "default"

// TexturePixels is decoded image data in RGBA8 order, ready for upload to a
// staging buffer.
type TexturePixels struct {
	Name   string
	Width  uint32
	Height uint32
	Pixels []byte
}

// Size returns the byte size of the pixel payload.
func (t *TexturePixels) Size() uint64 {
	return uint64(t.Width) * uint64(t.Height) * 4
}
