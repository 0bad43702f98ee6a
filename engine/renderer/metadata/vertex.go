package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved vertex format consumed by the graphics pipeline:
// position, color, texture coordinates.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	UV       mgl32.Vec2
}

const VertexSize = uint32(unsafe.Sizeof(Vertex{}))

var (
	VertexOffsetPosition = uint32(unsafe.Offsetof(Vertex{}.Position))
	VertexOffsetColor    = uint32(unsafe.Offsetof(Vertex{}.Color))
	VertexOffsetUV       = uint32(unsafe.Offsetof(Vertex{}.UV))
)

// VerticesBytes exposes the slice's backing memory for upload to a mapped
// staging buffer. The view is only valid while the slice is alive.
func VerticesBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexSize))
}

// IndicesBytes exposes the index slice's backing memory for upload.
func IndicesBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}
