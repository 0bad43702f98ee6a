package metadata

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

func TestVertexLayout(t *testing.T) {
	if VertexSize != 32 {
		t.Errorf("vertex stride = %d, want 32", VertexSize)
	}
	if VertexOffsetPosition != 0 {
		t.Errorf("position offset = %d, want 0", VertexOffsetPosition)
	}
	if VertexOffsetColor != 12 {
		t.Errorf("color offset = %d, want 12", VertexOffsetColor)
	}
	if VertexOffsetUV != 24 {
		t.Errorf("uv offset = %d, want 24", VertexOffsetUV)
	}
}

func TestVerticesBytesRoundTrip(t *testing.T) {
	vertices := []Vertex{
		{Position: mgl32.Vec3{1, 2, 3}, Color: mgl32.Vec3{0.5, 0.25, 0.125}, UV: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec3{-1, -2, -3}, Color: mgl32.Vec3{1, 1, 1}, UV: mgl32.Vec2{0.5, 0.5}},
	}

	raw := VerticesBytes(vertices)
	if len(raw) != 2*int(VertexSize) {
		t.Fatalf("byte view length = %d, want %d", len(raw), 2*int(VertexSize))
	}

	decoded := unsafe.Slice((*Vertex)(unsafe.Pointer(&raw[0])), 2)
	for i := range vertices {
		if decoded[i] != vertices[i] {
			t.Errorf("vertex %d not bit-identical after round trip: %+v != %+v", i, decoded[i], vertices[i])
		}
	}
}

func TestUBOBytesBitIdentical(t *testing.T) {
	ubo := GlobalUBO{
		View:       mgl32.LookAtV(mgl32.Vec3{0, 2, 2}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1}),
		Projection: mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 1000.0),
	}

	raw := ubo.Bytes()
	if len(raw) != int(GlobalUBOSize) {
		t.Fatalf("byte view length = %d, want %d", len(raw), GlobalUBOSize)
	}
	back := *(*GlobalUBO)(unsafe.Pointer(&raw[0]))
	if back != ubo {
		t.Error("GlobalUBO not bit-identical after round trip")
	}

	inst := InstanceUBO{Model: mgl32.Ident4()}
	if got := *(*InstanceUBO)(unsafe.Pointer(&inst.Bytes()[0])); got != inst {
		t.Error("InstanceUBO not bit-identical after round trip")
	}
}

func TestMeshCounts(t *testing.T) {
	m := NewMesh("crate")
	m.Parts = []*MeshPart{
		{Vertices: make([]Vertex, 8), Indices: make([]uint32, 36)},
		{Vertices: make([]Vertex, 4), Indices: make([]uint32, 6)},
	}
	if m.VertexCount() != 12 {
		t.Errorf("VertexCount = %d, want 12", m.VertexCount())
	}
	if m.IndexCount() != 42 {
		t.Errorf("IndexCount = %d, want 42", m.IndexCount())
	}
}
