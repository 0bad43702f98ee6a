package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

// GeometryStore keeps every loaded mesh in one coalesced vertex buffer and
// one coalesced index buffer. Importing a mesh rebuilds both; the previous
// buffers are handed back to the caller for deferred destruction since
// in-flight frames may still reference them.
type GeometryStore struct {
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	Meshes       []*metadata.Mesh
}

// assignMergeOffsets walks every part in order and stamps its position in
// the coalesced buffers. Indices remain part-relative; draws pass the vertex
// offset separately.
func assignMergeOffsets(meshes []*metadata.Mesh) (vertexTotal, indexTotal uint32) {
	for _, mesh := range meshes {
		for _, part := range mesh.Parts {
			part.VertexOffset = vertexTotal
			part.IndexOffset = indexTotal
			part.IndexCount = uint32(len(part.Indices))
			vertexTotal += uint32(len(part.Vertices))
			indexTotal += part.IndexCount
		}
	}
	return vertexTotal, indexTotal
}

// mergeGeometry flattens every part into contiguous vertex and index slices
// matching the offsets stamped by assignMergeOffsets.
func mergeGeometry(meshes []*metadata.Mesh, vertexTotal, indexTotal uint32) ([]metadata.Vertex, []uint32) {
	vertices := make([]metadata.Vertex, 0, vertexTotal)
	indices := make([]uint32, 0, indexTotal)
	for _, mesh := range meshes {
		for _, part := range mesh.Parts {
			vertices = append(vertices, part.Vertices...)
			indices = append(indices, part.Indices...)
		}
	}
	return vertices, indices
}

// Rebuild replaces the coalesced buffers with fresh uploads covering meshes.
// The retired buffers are returned instead of destroyed; frames still in
// flight may be reading them.
func (g *GeometryStore) Rebuild(context *VulkanContext, pool vk.CommandPool, meshes []*metadata.Mesh) ([]*VulkanBuffer, error) {
	vertexTotal, indexTotal := assignMergeOffsets(meshes)
	if vertexTotal == 0 || indexTotal == 0 {
		return nil, nil
	}

	vertices, indices := mergeGeometry(meshes, vertexTotal, indexTotal)

	vertexBuffer, err := CreateDeviceLocalBuffer(context, pool,
		metadata.VerticesBytes(vertices),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, err
	}

	indexBuffer, err := CreateDeviceLocalBuffer(context, pool,
		metadata.IndicesBytes(indices),
		vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}

	retired := make([]*VulkanBuffer, 0, 2)
	if g.VertexBuffer != nil {
		retired = append(retired, g.VertexBuffer)
	}
	if g.IndexBuffer != nil {
		retired = append(retired, g.IndexBuffer)
	}

	g.VertexBuffer = vertexBuffer
	g.IndexBuffer = indexBuffer
	g.Meshes = meshes

	return retired, nil
}

// Bind attaches the coalesced buffers for indexed drawing.
func (g *GeometryStore) Bind(cb *VulkanCommandBuffer) {
	vk.CmdBindVertexBuffers(cb.Handle, 0, 1, []vk.Buffer{g.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cb.Handle, g.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
}

func (g *GeometryStore) Destroy(context *VulkanContext) {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Destroy(context)
		g.VertexBuffer = nil
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Destroy(context)
		g.IndexBuffer = nil
	}
	g.Meshes = nil
}
