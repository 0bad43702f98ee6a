package vulkan

import (
	"testing"

	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

func partWithCounts(vertices, indices int) *metadata.MeshPart {
	p := &metadata.MeshPart{
		Vertices: make([]metadata.Vertex, vertices),
		Indices:  make([]uint32, indices),
	}
	for i := range p.Indices {
		p.Indices[i] = uint32(i)
	}
	return p
}

func TestAssignMergeOffsets(t *testing.T) {
	meshA := metadata.NewMesh("a")
	meshA.Parts = []*metadata.MeshPart{
		partWithCounts(4, 6),
		partWithCounts(3, 3),
	}
	meshB := metadata.NewMesh("b")
	meshB.Parts = []*metadata.MeshPart{
		partWithCounts(8, 12),
	}

	vertexTotal, indexTotal := assignMergeOffsets([]*metadata.Mesh{meshA, meshB})

	if vertexTotal != 15 {
		t.Errorf("vertex total = %d, want 15", vertexTotal)
	}
	if indexTotal != 21 {
		t.Errorf("index total = %d, want 21", indexTotal)
	}

	wantOffsets := []struct {
		vertexOffset, indexOffset, indexCount uint32
	}{
		{0, 0, 6},
		{4, 6, 3},
		{7, 9, 12},
	}
	parts := append(append([]*metadata.MeshPart{}, meshA.Parts...), meshB.Parts...)
	for i, part := range parts {
		if part.VertexOffset != wantOffsets[i].vertexOffset {
			t.Errorf("part %d vertex offset = %d, want %d", i, part.VertexOffset, wantOffsets[i].vertexOffset)
		}
		if part.IndexOffset != wantOffsets[i].indexOffset {
			t.Errorf("part %d index offset = %d, want %d", i, part.IndexOffset, wantOffsets[i].indexOffset)
		}
		if part.IndexCount != wantOffsets[i].indexCount {
			t.Errorf("part %d index count = %d, want %d", i, part.IndexCount, wantOffsets[i].indexCount)
		}
	}
}

func TestAssignMergeOffsetsStableAcrossRebuilds(t *testing.T) {
	mesh := metadata.NewMesh("m")
	mesh.Parts = []*metadata.MeshPart{partWithCounts(5, 9), partWithCounts(2, 3)}
	meshes := []*metadata.Mesh{mesh}

	v1, i1 := assignMergeOffsets(meshes)
	v2, i2 := assignMergeOffsets(meshes)

	if v1 != v2 || i1 != i2 {
		t.Fatalf("totals changed across rebuilds: (%d,%d) vs (%d,%d)", v1, i1, v2, i2)
	}
	if mesh.Parts[1].VertexOffset != 5 || mesh.Parts[1].IndexOffset != 9 {
		t.Errorf("second part offsets drifted: vertex=%d index=%d", mesh.Parts[1].VertexOffset, mesh.Parts[1].IndexOffset)
	}
}

func TestMergeGeometryLayoutMatchesOffsets(t *testing.T) {
	mesh := metadata.NewMesh("m")
	first := partWithCounts(2, 3)
	second := partWithCounts(3, 3)
	first.Vertices[0].Position[0] = 1
	second.Vertices[0].Position[0] = 2
	mesh.Parts = []*metadata.MeshPart{first, second}

	meshes := []*metadata.Mesh{mesh}
	vertexTotal, indexTotal := assignMergeOffsets(meshes)
	vertices, indices := mergeGeometry(meshes, vertexTotal, indexTotal)

	if uint32(len(vertices)) != vertexTotal || uint32(len(indices)) != indexTotal {
		t.Fatalf("merged sizes %d/%d, want %d/%d", len(vertices), len(indices), vertexTotal, indexTotal)
	}
	if vertices[first.VertexOffset].Position[0] != 1 {
		t.Errorf("first part vertices not at stamped offset")
	}
	if vertices[second.VertexOffset].Position[0] != 2 {
		t.Errorf("second part vertices not at stamped offset")
	}
}
