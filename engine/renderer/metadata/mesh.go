package metadata

import (
	"github.com/google/uuid"
)

// MeshPart is one drawable span of a mesh: its own geometry and texture.
// Vertices and Indices hold the CPU-side data; the upload step records the
// part's placement in the coalesced buffers and keeps the CPU copies, since
// every later ingest re-merges all known parts into fresh buffers.
type MeshPart struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32

	// Placement inside the renderer's coalesced geometry buffers,
	// assigned when the part is merged in.
	VertexOffset uint32
	IndexOffset  uint32
	IndexCount   uint32

	// Texture slot the part samples from.
	TextureIndex uint32
}

// Mesh is an imported model: one or more parts sharing a transform.
type Mesh struct {
	ID    uuid.UUID
	Name  string
	Parts []*MeshPart
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		ID:   uuid.New(),
		Name: name,
	}
}

// VertexCount sums the CPU-side vertex counts of all parts.
func (m *Mesh) VertexCount() uint32 {
	total := uint32(0)
	for _, p := range m.Parts {
		total += uint32(len(p.Vertices))
	}
	return total
}

// IndexCount sums the CPU-side index counts of all parts.
func (m *Mesh) IndexCount() uint32 {
	total := uint32(0)
	for _, p := range m.Parts {
		total += uint32(len(p.Indices))
	}
	return total
}
